package querysql

import (
	"github.com/samber/lo"

	"github.com/roach88/fluentsql/internal/querydef"
)

// allowed lists, per kind, the fields that may be populated besides from.
var allowed = map[querydef.Kind][]querydef.Field{
	querydef.KindSelect: {
		querydef.FieldDistinct, querydef.FieldTop, querydef.FieldSelect, querydef.FieldAs,
		querydef.FieldJoin, querydef.FieldWhere, querydef.FieldGroupBy, querydef.FieldOrderBy,
		querydef.FieldLimit,
	},
	querydef.KindUpdate: {
		querydef.FieldTop, querydef.FieldSelect, querydef.FieldUpdate, querydef.FieldOutput,
		querydef.FieldAs, querydef.FieldJoin, querydef.FieldWhere,
	},
	querydef.KindDelete: {
		querydef.FieldTop, querydef.FieldSelect, querydef.FieldOutput, querydef.FieldAs,
		querydef.FieldJoin, querydef.FieldWhere,
	},
	querydef.KindInsert: {
		querydef.FieldSelect, querydef.FieldAs, querydef.FieldInsert, querydef.FieldOutput,
	},
	querydef.KindUpsert: {
		querydef.FieldSelect, querydef.FieldAs, querydef.FieldWhere, querydef.FieldUpsert,
		querydef.FieldOutput,
	},
}

// Allowed returns the fields a statement of the given kind may populate,
// besides from. It returns nil for an unknown kind.
func Allowed(kind querydef.Kind) []querydef.Field {
	fields, ok := allowed[kind]
	if !ok {
		return nil
	}
	return append([]querydef.Field(nil), fields...)
}

// CheckClauses returns an ErrIllegalClause *CompileError naming every
// populated field of def that is neither from nor in allowedFields.
// Offending fields are reported in declaration order.
func CheckClauses(def querydef.Definition, allowedFields ...querydef.Field) error {
	illegal := lo.Filter(def.Populated(), func(f querydef.Field, _ int) bool {
		return f != querydef.FieldFrom && !lo.Contains(allowedFields, f)
	})
	if len(illegal) > 0 {
		return illegalClauses(def.Kind, illegal)
	}
	return nil
}

// checkKind runs CheckClauses with the allow-list for def.Kind.
func checkKind(def querydef.Definition) error {
	return CheckClauses(def, allowed[def.Kind]...)
}
