package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/fluentsql/internal/querydef"
)

// Error categories. Every *CompileError unwraps to exactly one of these.
var (
	// ErrMissingClause: FROM absent, WHERE absent on upsert, ORDER BY absent
	// with LIMIT, no columns for insert/update/upsert, join without alias.
	ErrMissingClause = errors.New("missing required clause")

	// ErrIllegalClause: a field is populated outside its kind's allow-list.
	ErrIllegalClause = errors.New("illegal clause combination")

	// ErrUnknownKind: the definition's kind is not a statement kind.
	ErrUnknownKind = errors.New("unknown statement kind")

	// ErrInvalidValue: a clause carries a value the dialect cannot express.
	ErrInvalidValue = errors.New("invalid clause value")
)

// CompileError reports why a definition could not be rendered.
// No text is produced when a CompileError is returned.
type CompileError struct {
	// Err is the error category (ErrMissingClause, ErrIllegalClause, ...).
	Err error

	// Kind is the statement kind being compiled.
	Kind querydef.Kind

	// Fields lists the offending fields in declaration order, if any.
	Fields []querydef.Field

	// Message is the human-readable description, safe to show verbatim.
	Message string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return e.Message
}

// Unwrap returns the error category so errors.Is works on sentinels.
func (e *CompileError) Unwrap() error {
	return e.Err
}

var upper = cases.Upper(language.Und)

// keyword renders a kind or field name the way error messages show it.
func keyword(s string) string {
	return upper.String(s)
}

func missingClause(kind querydef.Kind, format string, args ...any) *CompileError {
	return &CompileError{Err: ErrMissingClause, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidValue(kind querydef.Kind, field querydef.Field, format string, args ...any) *CompileError {
	return &CompileError{
		Err:     ErrInvalidValue,
		Kind:    kind,
		Fields:  []querydef.Field{field},
		Message: fmt.Sprintf(format, args...),
	}
}

func illegalClauses(kind querydef.Kind, fields []querydef.Field) *CompileError {
	names := lo.Map(fields, func(f querydef.Field, _ int) string { return keyword(f.String()) })
	return &CompileError{
		Err:     ErrIllegalClause,
		Kind:    kind,
		Fields:  fields,
		Message: fmt.Sprintf("'%s' cannot use '%s'", keyword(string(kind)), strings.Join(names, ", ")),
	}
}
