package loader

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fluentsql/internal/builder"
	"github.com/roach88/fluentsql/internal/querydef"
)

// Statement is one statement document. Field names match the builder
// operations; see Build for how they are applied.
type Statement struct {
	// Name labels the statement in CLI output. Defaults to the file name.
	Name string `yaml:"name"`

	// Exactly one source may be given.
	From      string      `yaml:"from"`
	FromQuery *Statement  `yaml:"from_query"`
	FromUnion []Statement `yaml:"from_union"`

	As       string    `yaml:"as"`
	Distinct bool      `yaml:"distinct"`
	Top      *int      `yaml:"top"`
	Select   ColumnMap `yaml:"select"`
	Where    []string  `yaml:"where"`
	GroupBy  []string  `yaml:"group_by"`
	OrderBy  []Order   `yaml:"order_by"`
	Limit    *Limit    `yaml:"limit"`

	// Join holds nested statements, joined in order.
	Join []Statement `yaml:"join"`

	// At most one of these may be given. Without any, the statement is a select.
	Update *ColumnMap `yaml:"update"`
	Insert *ColumnMap `yaml:"insert"`
	Upsert *ColumnMap `yaml:"upsert"`
	Delete bool       `yaml:"delete"`

	Output []string `yaml:"output"`

	// Pos is where the statement starts in its file, when known.
	Pos Position `yaml:"-"`
}

// Order is one order_by entry. An empty direction means ascending.
type Order struct {
	Expr string `yaml:"expr"`
	Dir  string `yaml:"dir"`
}

// Limit is the skip/take pair of a limit entry.
type Limit struct {
	Skip int `yaml:"skip"`
	Take int `yaml:"take"`
}

// ColumnMap is an ordered name -> expression mapping.
// Document order is kept, so it becomes column order in the rendered SQL.
type ColumnMap querydef.Columns

// UnmarshalYAML reads a mapping node pair by pair to keep key order.
func (m *ColumnMap) UnmarshalYAML(node *yaml.Node) error {
	pos := Position{Line: node.Line, Column: node.Column}
	if node.Kind != yaml.MappingNode {
		return loadErrorf(ErrCodeColumns, pos, "expected a mapping of column name to expression")
	}

	cols := make(ColumnMap, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return loadErrorf(ErrCodeColumns, Position{key.Line, key.Column}, "column name must be a non-empty string")
		}
		if seen[key.Value] {
			return loadErrorf(ErrCodeColumns, Position{key.Line, key.Column}, "duplicate column %q", key.Value)
		}
		if val.Kind != yaml.ScalarNode || val.ShortTag() == "!!null" {
			return loadErrorf(ErrCodeColumns, Position{val.Line, val.Column}, "column %q: expression must be a scalar", key.Value)
		}
		seen[key.Value] = true
		cols = append(cols, querydef.Col(key.Value, val.Value))
	}
	*m = cols
	return nil
}

// Columns returns the mapping as builder columns.
func (m ColumnMap) Columns() querydef.Columns {
	return querydef.Columns(m).Clone()
}

// Build turns the statement into a Builder by replaying its fields as builder
// operations: source, distinct, top, select, where, group_by, order_by,
// limit, join, then the write kind and output.
//
// Structural mistakes in the document (two sources, two write kinds) are
// returned as *LoadError. Everything else, including a missing source, is
// left to the builder and surfaces from Query as a compile error.
func (s Statement) Build() (builder.Builder, error) {
	b := builder.New()

	src, err := s.source()
	if err != nil {
		return b, err
	}
	if src != nil {
		b = b.From(src, s.As)
	} else if s.As != "" {
		b = b.As(s.As)
	}

	if s.Distinct {
		b = b.Distinct()
	}
	if s.Top != nil {
		b = b.Top(*s.Top)
	}
	if len(s.Select) > 0 {
		b = b.Select(s.Select.Columns()...)
	}
	for _, w := range s.Where {
		b = b.Where(w)
	}
	if len(s.GroupBy) > 0 {
		b = b.GroupBy(s.GroupBy...)
	}
	for _, o := range s.OrderBy {
		b = b.OrderBy(o.Expr, direction(o.Dir))
	}
	if s.Limit != nil {
		b = b.Limit(s.Limit.Skip, s.Limit.Take)
	}
	for i, j := range s.Join {
		jb, err := j.Build()
		if err != nil {
			return b, nest(err, fmt.Sprintf("join[%d]", i))
		}
		b = b.Join(jb)
	}

	if b, err = s.applyKind(b); err != nil {
		return b, err
	}
	if len(s.Output) > 0 {
		b = b.Output(s.Output...)
	}
	return b, nil
}

// source returns the single configured source, or nil when none is set.
func (s Statement) source() (builder.Source, error) {
	var sources []string
	if s.From != "" {
		sources = append(sources, "from")
	}
	if s.FromQuery != nil {
		sources = append(sources, "from_query")
	}
	if len(s.FromUnion) > 0 {
		sources = append(sources, "from_union")
	}
	if len(sources) > 1 {
		return nil, loadErrorf(ErrCodeSource, s.Pos, "only one source may be set, got %s", strings.Join(sources, ", "))
	}

	switch {
	case s.From != "":
		return builder.Table(s.From), nil
	case s.FromQuery != nil:
		sub, err := s.FromQuery.Build()
		if err != nil {
			return nil, nest(err, "from_query")
		}
		return sub, nil
	case len(s.FromUnion) > 0:
		union := make(builder.Union, 0, len(s.FromUnion))
		for i, member := range s.FromUnion {
			mb, err := member.Build()
			if err != nil {
				return nil, nest(err, fmt.Sprintf("from_union[%d]", i))
			}
			union = append(union, mb)
		}
		return union, nil
	}
	return nil, nil
}

func (s Statement) applyKind(b builder.Builder) (builder.Builder, error) {
	var kinds []string
	if s.Update != nil {
		kinds = append(kinds, "update")
	}
	if s.Insert != nil {
		kinds = append(kinds, "insert")
	}
	if s.Upsert != nil {
		kinds = append(kinds, "upsert")
	}
	if s.Delete {
		kinds = append(kinds, "delete")
	}
	if len(kinds) > 1 {
		return b, loadErrorf(ErrCodeKind, s.Pos, "only one statement kind may be set, got %s", strings.Join(kinds, ", "))
	}

	switch {
	case s.Update != nil:
		return b.Update(s.Update.Columns()...), nil
	case s.Insert != nil:
		return b.Insert(s.Insert.Columns()...), nil
	case s.Upsert != nil:
		return b.Upsert(s.Upsert.Columns()...), nil
	case s.Delete:
		return b.Delete(), nil
	}
	return b, nil
}

// Kind reports the statement kind the document describes.
func (s Statement) Kind() querydef.Kind {
	switch {
	case s.Update != nil:
		return querydef.KindUpdate
	case s.Insert != nil:
		return querydef.KindInsert
	case s.Upsert != nil:
		return querydef.KindUpsert
	case s.Delete:
		return querydef.KindDelete
	}
	return querydef.KindSelect
}

// direction maps a document direction to a querydef.Direction.
// Unrecognized values pass through and fail at compile time.
func direction(dir string) querydef.Direction {
	if dir == "" {
		return querydef.Asc
	}
	return querydef.Direction(strings.ToUpper(dir))
}

// nest prefixes a nested statement's load error with where it sits.
func nest(err error, at string) error {
	if le, ok := err.(*LoadError); ok {
		cp := *le
		cp.Message = at + ": " + le.Message
		return &cp
	}
	return fmt.Errorf("%s: %w", at, err)
}
