package querysql

import (
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/fluentsql/internal/querydef"
)

// mergeSource is the one-row driving table for the upsert MERGE.
const mergeSource = "USING (SELECT 0 as _using) AS _using"

// compileInsert renders:
//
//	INSERT INTO <from> (<col1>, <col2>)
//	OUTPUT <exprs>
//	VALUES (<expr1>, <expr2>)
func compileInsert(def querydef.Definition) (string, error) {
	if err := checkKind(def); err != nil {
		return "", err
	}
	if err := checkColumns(def, def.Insert); err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("INSERT INTO ")
	sb.WriteString(def.From)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(def.Insert.Names(), ", "))
	sb.WriteString(")\n")

	writeOutput(&sb, def)

	sb.WriteString("VALUES (")
	sb.WriteString(strings.Join(def.Insert.Exprs(), ", "))
	sb.WriteString(")\n")

	return strings.TrimSpace(sb.String()), nil
}

// compileUpsert emulates insert-or-update with a MERGE keyed on the where
// predicates:
//
//	MERGE <from> [AS <alias>]
//	USING (SELECT 0 as _using) AS _using
//	ON (<w1>)
//	  AND (<w2>)
//	WHEN MATCHED THEN
//	  UPDATE SET
//	    <col> = <expr>
//	WHEN NOT MATCHED THEN
//	  INSERT (<cols>)
//	  VALUES (<exprs>)
//	OUTPUT <exprs>;
//
// The where predicates are required; they are checked before the allow-list.
func compileUpsert(def querydef.Definition) (string, error) {
	if len(def.Where) == 0 {
		return "", missingClause(def.Kind, "'UPSERT' requires 'WHERE'")
	}
	if err := checkKind(def); err != nil {
		return "", err
	}
	if err := checkColumns(def, def.Upsert); err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("MERGE ")
	sb.WriteString(def.From)
	if def.As != "" {
		sb.WriteString(" AS ")
		sb.WriteString(def.As)
	}
	sb.WriteString("\n")
	sb.WriteString(mergeSource + "\n")

	sb.WriteString("ON (")
	sb.WriteString(strings.Join(def.Where, ")\n"+indentUnit+"AND ("))
	sb.WriteString(")\n")

	sb.WriteString("WHEN MATCHED THEN\n")
	sb.WriteString(indentUnit + "UPDATE SET\n")
	sets := lo.Map(def.Upsert, func(c querydef.Column, _ int) string {
		return indentUnit + indentUnit + c.Name + " = " + c.Expr
	})
	sb.WriteString(strings.Join(sets, ",\n"))
	sb.WriteString("\n")

	sb.WriteString("WHEN NOT MATCHED THEN\n")
	sb.WriteString(indentUnit + "INSERT (")
	sb.WriteString(strings.Join(def.Upsert.Names(), ", "))
	sb.WriteString(")\n")
	sb.WriteString(indentUnit + "VALUES (")
	sb.WriteString(strings.Join(def.Upsert.Exprs(), ", "))
	sb.WriteString(")\n")

	writeOutput(&sb, def)

	query := strings.TrimSuffix(sb.String(), "\n") + ";"
	return strings.TrimSpace(query), nil
}
