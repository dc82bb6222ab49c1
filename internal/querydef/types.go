package querydef

import (
	"sort"

	"github.com/samber/lo"
)

// Kind is the statement discriminant.
type Kind string

const (
	KindSelect Kind = "select"
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindUpsert Kind = "upsert"
	KindDelete Kind = "delete"
)

// Kinds lists every statement kind in a stable order.
var Kinds = []Kind{KindSelect, KindInsert, KindUpdate, KindUpsert, KindDelete}

// Valid reports whether k is one of the known statement kinds.
func (k Kind) Valid() bool {
	return lo.Contains(Kinds, k)
}

// Direction is a sort direction for ORDER BY.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Valid reports whether d is ASC or DESC.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Column maps one destination or output column name to a SQL expression.
//
// For select the name is the output alias (rendered "<Expr> AS <Name>");
// for insert, update and upsert it is the target column.
type Column struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// Col is shorthand for Column{Name: name, Expr: expr}.
func Col(name, expr string) Column {
	return Column{Name: name, Expr: expr}
}

// Columns is an insertion-ordered column mapping.
type Columns []Column

// ColumnsOf converts a map into Columns sorted by column name.
// Use Col when the order matters.
func ColumnsOf(m map[string]string) Columns {
	if len(m) == 0 {
		return nil
	}
	names := lo.Keys(m)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) Column {
		return Column{Name: name, Expr: m[name]}
	})
}

// Names returns the column names in order.
func (c Columns) Names() []string {
	return lo.Map(c, func(col Column, _ int) string { return col.Name })
}

// Exprs returns the column expressions in order.
func (c Columns) Exprs() []string {
	return lo.Map(c, func(col Column, _ int) string { return col.Expr })
}

// Clone returns an independent copy. A nil or empty receiver yields nil.
func (c Columns) Clone() Columns {
	if len(c) == 0 {
		return nil
	}
	out := make(Columns, len(c))
	copy(out, c)
	return out
}

// Limit is an OFFSET/FETCH pair.
type Limit struct {
	Skip int `json:"skip"`
	Take int `json:"take"`
}

// Definition describes one SQL statement. See the package documentation for
// lifecycle rules; the field order here is the declaration order used when
// reporting populated fields.
type Definition struct {
	Kind     Kind
	From     string
	As       string
	Select   Columns
	Where    []string
	Distinct bool
	Top      *int
	GroupBy  []string
	Join     []string
	Limit    *Limit
	OrderBy  []string
	Update   Columns
	Insert   Columns
	Upsert   Columns
	Output   []string
}

// New returns an empty select definition.
func New() Definition {
	return Definition{Kind: KindSelect}
}

// Clone returns a deep copy of d. Slices and pointers are copied, never shared.
func (d Definition) Clone() Definition {
	out := Definition{
		Kind:     d.Kind,
		From:     d.From,
		As:       d.As,
		Select:   d.Select.Clone(),
		Where:    cloneStrings(d.Where),
		Distinct: d.Distinct,
		GroupBy:  cloneStrings(d.GroupBy),
		Join:     cloneStrings(d.Join),
		OrderBy:  cloneStrings(d.OrderBy),
		Update:   d.Update.Clone(),
		Insert:   d.Insert.Clone(),
		Upsert:   d.Upsert.Clone(),
		Output:   cloneStrings(d.Output),
	}
	if d.Top != nil {
		top := *d.Top
		out.Top = &top
	}
	if d.Limit != nil {
		limit := *d.Limit
		out.Limit = &limit
	}
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
