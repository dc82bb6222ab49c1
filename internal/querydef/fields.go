package querydef

// Field identifies one optional Definition field. Kind is not a Field: it is
// always present.
type Field int

const (
	FieldFrom Field = iota
	FieldAs
	FieldSelect
	FieldWhere
	FieldDistinct
	FieldTop
	FieldGroupBy
	FieldJoin
	FieldLimit
	FieldOrderBy
	FieldUpdate
	FieldInsert
	FieldUpsert
	FieldOutput
)

var fieldNames = [...]string{
	FieldFrom:     "from",
	FieldAs:       "as",
	FieldSelect:   "select",
	FieldWhere:    "where",
	FieldDistinct: "distinct",
	FieldTop:      "top",
	FieldGroupBy:  "groupBy",
	FieldJoin:     "join",
	FieldLimit:    "limit",
	FieldOrderBy:  "orderBy",
	FieldUpdate:   "update",
	FieldInsert:   "insert",
	FieldUpsert:   "upsert",
	FieldOutput:   "output",
}

// Fields lists every Field in declaration order.
var Fields = []Field{
	FieldFrom, FieldAs, FieldSelect, FieldWhere, FieldDistinct, FieldTop,
	FieldGroupBy, FieldJoin, FieldLimit, FieldOrderBy, FieldUpdate,
	FieldInsert, FieldUpsert, FieldOutput,
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// Has reports whether field f carries a value in d.
func (d Definition) Has(f Field) bool {
	switch f {
	case FieldFrom:
		return d.From != ""
	case FieldAs:
		return d.As != ""
	case FieldSelect:
		return len(d.Select) > 0
	case FieldWhere:
		return len(d.Where) > 0
	case FieldDistinct:
		return d.Distinct
	case FieldTop:
		return d.Top != nil
	case FieldGroupBy:
		return len(d.GroupBy) > 0
	case FieldJoin:
		return len(d.Join) > 0
	case FieldLimit:
		return d.Limit != nil
	case FieldOrderBy:
		return len(d.OrderBy) > 0
	case FieldUpdate:
		return len(d.Update) > 0
	case FieldInsert:
		return len(d.Insert) > 0
	case FieldUpsert:
		return len(d.Upsert) > 0
	case FieldOutput:
		return len(d.Output) > 0
	default:
		return false
	}
}

// Populated returns the fields of d that carry a value, in declaration order.
func (d Definition) Populated() []Field {
	var out []Field
	for _, f := range Fields {
		if d.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
