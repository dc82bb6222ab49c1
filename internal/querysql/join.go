package querysql

import (
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/fluentsql/internal/querydef"
)

// plainJoinFields are the only fields a definition may populate and still be
// rendered as a LEFT OUTER JOIN.
var plainJoinFields = []querydef.Field{querydef.FieldFrom, querydef.FieldAs, querydef.FieldWhere}

// NeedsApply reports whether j must be joined as a correlated subquery.
// Anything beyond a source, an alias and predicates (projection, grouping,
// ordering, paging, distinct, top, nested joins) cannot be expressed as a
// plain join condition.
func NeedsApply(j querydef.Definition) bool {
	return lo.SomeBy(j.Populated(), func(f querydef.Field) bool {
		return !lo.Contains(plainJoinFields, f)
	})
}

// RenderJoin renders j as one join clause for an enclosing statement:
//
//	OUTER APPLY (
//	  <j compiled, indented>
//	) AS <alias>
//
// when NeedsApply(j), otherwise
//
//	LEFT OUTER JOIN <from> AS <alias> ON (<w1>) AND (<w2>)
//
// The alias is required either way: the enclosing statement refers to the
// joined rows through it.
func RenderJoin(j querydef.Definition) (string, error) {
	if j.As == "" {
		return "", missingClause(j.Kind, "'JOIN' requires 'AS'")
	}

	if NeedsApply(j) {
		query, err := Compile(j)
		if err != nil {
			return "", err
		}
		return "OUTER APPLY (\n" + indentUnit + indent(query) + "\n) AS " + j.As, nil
	}

	if j.From == "" {
		return "", missingClause(j.Kind, "'FROM' must be set")
	}

	var sb strings.Builder
	sb.WriteString("LEFT OUTER JOIN ")
	sb.WriteString(j.From)
	sb.WriteString(" AS ")
	sb.WriteString(j.As)
	if len(j.Where) > 0 {
		sb.WriteString(" ON (")
		sb.WriteString(strings.Join(j.Where, ") AND ("))
		sb.WriteString(")")
	}
	return sb.String(), nil
}

// RenderSubquery compiles def and wraps it as a parenthesized source:
//
//	(
//	  <def compiled, indented>
//	)
func RenderSubquery(def querydef.Definition) (string, error) {
	query, err := Compile(def)
	if err != nil {
		return "", err
	}
	return "(\n" + indentUnit + indent(query) + "\n)", nil
}

// RenderUnion compiles every definition and combines them with UNION ALL into
// one parenthesized source. At least one definition is required.
func RenderUnion(defs []querydef.Definition) (string, error) {
	if len(defs) == 0 {
		return "", missingClause(querydef.KindSelect, "'UNION ALL' requires at least one query")
	}

	parts := make([]string, 0, len(defs))
	for _, def := range defs {
		query, err := Compile(def)
		if err != nil {
			return "", err
		}
		parts = append(parts, indent(query))
	}

	sep := "\n\n" + indentUnit + "UNION ALL\n\n" + indentUnit
	return "(\n\n" + indentUnit + strings.Join(parts, sep) + "\n\n)", nil
}
