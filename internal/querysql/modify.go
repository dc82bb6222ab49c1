package querysql

import (
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/fluentsql/internal/querydef"
)

// compileUpdate renders the update-with-join form:
//
//	UPDATE [TOP (n)] <from> SET
//	  <col> = <expr>,
//	  ...
//	OUTPUT <exprs>
//	FROM <from> [AS <alias>]
//	<joins>
//	WHERE ...
func compileUpdate(def querydef.Definition) (string, error) {
	if err := checkKind(def); err != nil {
		return "", err
	}
	if err := checkColumns(def, def.Update); err != nil {
		return "", err
	}
	if err := checkTop(def); err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("UPDATE")
	writeTopParen(&sb, def)
	sb.WriteString(" ")
	sb.WriteString(def.From)
	sb.WriteString(" SET\n")

	sets := lo.Map(def.Update, func(c querydef.Column, _ int) string {
		return indentUnit + c.Name + " = " + c.Expr
	})
	sb.WriteString(strings.Join(sets, ",\n"))
	sb.WriteString("\n")

	writeOutput(&sb, def)
	writeFrom(&sb, def)
	writeJoins(&sb, def)
	writeWhere(&sb, def)

	return strings.TrimSpace(sb.String()), nil
}

// compileDelete renders:
//
//	DELETE [TOP (n)] FROM <from>
//	OUTPUT <exprs>
//	FROM <from> [AS <alias>]
//	<joins>
//	WHERE ...
func compileDelete(def querydef.Definition) (string, error) {
	if err := checkKind(def); err != nil {
		return "", err
	}
	if err := checkTop(def); err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("DELETE")
	writeTopParen(&sb, def)
	sb.WriteString(" FROM ")
	sb.WriteString(def.From)
	sb.WriteString("\n")

	writeOutput(&sb, def)
	writeFrom(&sb, def)
	writeJoins(&sb, def)
	writeWhere(&sb, def)

	return strings.TrimSpace(sb.String()), nil
}
