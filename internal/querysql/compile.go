package querysql

import (
	"strconv"
	"strings"

	"github.com/roach88/fluentsql/internal/querydef"
)

// indentUnit is the indentation used for column lists and nested statements.
const indentUnit = "  "

// Compile renders def as SQL text.
//
// FROM is checked first, then the kind is dispatched to its compiler, which
// validates the kind's allow-list before rendering anything. The result is
// trimmed of leading and trailing whitespace. On failure the returned error
// is a *CompileError and the text is empty.
//
// Compile is a pure function: the same definition always yields the same text.
func Compile(def querydef.Definition) (string, error) {
	if def.From == "" {
		return "", missingClause(def.Kind, "'FROM' must be set")
	}

	switch def.Kind {
	case querydef.KindSelect:
		return compileSelect(def)
	case querydef.KindUpdate:
		return compileUpdate(def)
	case querydef.KindDelete:
		return compileDelete(def)
	case querydef.KindInsert:
		return compileInsert(def)
	case querydef.KindUpsert:
		return compileUpsert(def)
	default:
		return "", &CompileError{
			Err:     ErrUnknownKind,
			Kind:    def.Kind,
			Message: "invalid statement kind (" + string(def.Kind) + ")",
		}
	}
}

// indent prefixes every line after the first with extra spaces.
// The caller writes the first line's indentation itself.
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n"+indentUnit)
}

// checkTop rejects a negative row cap.
func checkTop(def querydef.Definition) error {
	if def.Top != nil && *def.Top < 0 {
		return invalidValue(def.Kind, querydef.FieldTop, "'TOP' must be non-negative (%d)", *def.Top)
	}
	return nil
}

// checkColumns rejects an insert/update/upsert without any target column.
func checkColumns(def querydef.Definition, cols querydef.Columns) error {
	if len(cols) == 0 {
		return missingClause(def.Kind, "'%s' requires at least one column", keyword(string(def.Kind)))
	}
	return nil
}

func writeFrom(sb *strings.Builder, def querydef.Definition) {
	sb.WriteString("FROM ")
	sb.WriteString(def.From)
	if def.As != "" {
		sb.WriteString(" AS ")
		sb.WriteString(def.As)
	}
	sb.WriteString("\n")
}

func writeJoins(sb *strings.Builder, def querydef.Definition) {
	if len(def.Join) == 0 {
		return
	}
	sb.WriteString(strings.Join(def.Join, "\n"))
	sb.WriteString("\n")
}

// writeWhere writes the predicates with AND aligned under WHERE's paren.
func writeWhere(sb *strings.Builder, def querydef.Definition) {
	if len(def.Where) == 0 {
		return
	}
	sb.WriteString("WHERE (")
	sb.WriteString(strings.Join(def.Where, ")\nAND   ("))
	sb.WriteString(")\n")
}

func writeOutput(sb *strings.Builder, def querydef.Definition) {
	if len(def.Output) == 0 {
		return
	}
	sb.WriteString("OUTPUT ")
	sb.WriteString(strings.Join(def.Output, ", "))
	sb.WriteString("\n")
}

// writeTopParen writes " TOP (n)" for update and delete.
func writeTopParen(sb *strings.Builder, def querydef.Definition) {
	if def.Top == nil {
		return
	}
	sb.WriteString(" TOP (")
	sb.WriteString(strconv.Itoa(*def.Top))
	sb.WriteString(")")
}
