package loader

import (
	"fmt"
	"strings"
)

// Error codes for statement document loading.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeParse       = "E003" // YAML or CUE syntax/decoding error
	ErrCodeBuildFailed = "E004" // CUE value is not concrete or does not unify
	ErrCodeNoFiles     = "E005" // No statement files found
	ErrCodeUnsupported = "E006" // Unsupported file extension
	ErrCodeEmpty       = "E007" // File holds no statements

	ErrCodeSource  = "E101" // More than one of from / from_query / from_union
	ErrCodeKind    = "E102" // More than one of update / insert / upsert / delete
	ErrCodeColumns = "E103" // Malformed column mapping
	ErrCodeField   = "E104" // Unknown or mistyped field
)

// Position is a 1-based line and column inside a statement file.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether p points somewhere.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// LoadError describes a statement document that could not be read or
// turned into a builder.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Pos     Position
}

func (e *LoadError) Error() string {
	loc := e.Path
	if e.Pos.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d", loc, e.Pos.Line, e.Pos.Column)
		loc = strings.TrimPrefix(loc, ":")
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Message)
}

func loadErrorf(code string, pos Position, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}
