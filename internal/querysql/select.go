package querysql

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/fluentsql/internal/querydef"
)

// compileSelect renders:
//
//	SELECT [DISTINCT] [TOP n]
//	  <expr> AS <name>,
//	  ...
//	FROM <from> [AS <alias>]
//	<joins>
//	WHERE (<p1>)
//	AND   (<p2>)
//	GROUP BY <exprs>
//	ORDER BY <exprs>
//	OFFSET <skip> ROWS FETCH NEXT <take> ROWS ONLY
func compileSelect(def querydef.Definition) (string, error) {
	if err := checkKind(def); err != nil {
		return "", err
	}
	if err := checkTop(def); err != nil {
		return "", err
	}
	if def.Limit != nil {
		if len(def.OrderBy) == 0 {
			return "", missingClause(def.Kind, "'LIMIT' requires 'ORDER BY'")
		}
		if def.Limit.Skip < 0 || def.Limit.Take <= 0 {
			return "", invalidValue(def.Kind, querydef.FieldLimit,
				"'LIMIT' needs a non-negative skip and a positive take (%d, %d)", def.Limit.Skip, def.Limit.Take)
		}
	}

	var sb strings.Builder

	sb.WriteString("SELECT")
	if def.Distinct {
		sb.WriteString(" DISTINCT")
	}
	if def.Top != nil {
		sb.WriteString(" TOP ")
		sb.WriteString(strconv.Itoa(*def.Top))
	}
	sb.WriteString("\n")

	if len(def.Select) > 0 {
		lines := lo.Map(def.Select, func(c querydef.Column, _ int) string {
			return indentUnit + c.Expr + " AS " + c.Name
		})
		sb.WriteString(strings.Join(lines, ",\n"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(indentUnit + "*\n")
	}

	writeFrom(&sb, def)
	writeJoins(&sb, def)
	writeWhere(&sb, def)

	if len(def.GroupBy) > 0 {
		sb.WriteString("GROUP BY ")
		sb.WriteString(strings.Join(def.GroupBy, ", "))
		sb.WriteString("\n")
	}

	if len(def.OrderBy) > 0 {
		sb.WriteString("ORDER BY ")
		sb.WriteString(strings.Join(def.OrderBy, ", "))
		sb.WriteString("\n")
	}

	if def.Limit != nil {
		sb.WriteString("OFFSET ")
		sb.WriteString(strconv.Itoa(def.Limit.Skip))
		sb.WriteString(" ROWS FETCH NEXT ")
		sb.WriteString(strconv.Itoa(def.Limit.Take))
		sb.WriteString(" ROWS ONLY\n")
	}

	return strings.TrimSpace(sb.String()), nil
}
