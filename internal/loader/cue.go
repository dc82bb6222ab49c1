package loader

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/fluentsql/internal/querydef"
)

// ParseCUE compiles a CUE statement file. The file is either a single
// statement struct or has a top-level statements field holding a list of
// statements or a struct of named statements:
//
//	statements: active_users: {
//		from: "Users"
//		as:   "U"
//		select: {id: "U.id", name: "U.name"}
//		where: ["U.active = 1"]
//	}
//
// For named statements the label is the default name. Struct field order is
// kept, so it becomes column order in the rendered SQL.
func ParseCUE(filename string, data []byte) ([]Statement, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueError(ErrCodeParse, err, v)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(ErrCodeBuildFailed, err, v)
	}

	list := v.LookupPath(cue.ParsePath("statements"))
	if !list.Exists() {
		if !hasFields(v) {
			return nil, loadErrorf(ErrCodeEmpty, Position{}, "no statements found")
		}
		stmt, err := decodeCUEStatement(v)
		if err != nil {
			return nil, err
		}
		return []Statement{stmt}, nil
	}

	var (
		stmts []Statement
		err   error
	)
	switch list.Kind() {
	case cue.ListKind:
		stmts, err = cueStatements(list)
	case cue.StructKind:
		stmts, err = cueNamedStatements(list)
	default:
		return nil, loadErrorf(ErrCodeField, cuePos(list.Pos()), "statements must be a list or a struct")
	}
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, loadErrorf(ErrCodeEmpty, cuePos(list.Pos()), "statements is empty")
	}
	return stmts, nil
}

func decodeCUEStatement(v cue.Value) (Statement, error) {
	s := Statement{Pos: cuePos(v.Pos())}
	if v.Kind() != cue.StructKind {
		return s, loadErrorf(ErrCodeField, s.Pos, "statement must be a struct")
	}

	iter, err := v.Fields()
	if err != nil {
		return s, cueError(ErrCodeField, err, v)
	}
	for iter.Next() {
		fv := iter.Value()
		var err error

		switch label := iter.Label(); label {
		case "name":
			s.Name, err = fv.String()
		case "from":
			s.From, err = fv.String()
		case "from_query":
			var sub Statement
			sub, err = decodeCUEStatement(fv)
			s.FromQuery = &sub
		case "from_union":
			s.FromUnion, err = cueStatements(fv)
		case "as":
			s.As, err = fv.String()
		case "distinct":
			s.Distinct, err = fv.Bool()
		case "top":
			var n int64
			n, err = fv.Int64()
			top := int(n)
			s.Top = &top
		case "select":
			s.Select, err = cueColumns(fv)
		case "where":
			s.Where, err = cueStrings(fv)
		case "group_by":
			s.GroupBy, err = cueStrings(fv)
		case "order_by":
			s.OrderBy, err = cueOrders(fv)
		case "limit":
			s.Limit, err = cueLimit(fv)
		case "join":
			s.Join, err = cueStatements(fv)
		case "update":
			s.Update, err = cueColumnsPtr(fv)
		case "insert":
			s.Insert, err = cueColumnsPtr(fv)
		case "upsert":
			s.Upsert, err = cueColumnsPtr(fv)
		case "delete":
			s.Delete, err = fv.Bool()
		case "output":
			s.Output, err = cueStrings(fv)
		default:
			return s, loadErrorf(ErrCodeField, cuePos(fv.Pos()), "unknown field %q", label)
		}

		if err != nil {
			return s, cueError(ErrCodeField, err, fv)
		}
	}
	return s, nil
}

func cueStatements(v cue.Value) ([]Statement, error) {
	iter, err := v.List()
	if err != nil {
		return nil, cueError(ErrCodeField, err, v)
	}
	var stmts []Statement
	for iter.Next() {
		stmt, err := decodeCUEStatement(iter.Value())
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func cueNamedStatements(v cue.Value) ([]Statement, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, cueError(ErrCodeField, err, v)
	}
	var stmts []Statement
	for iter.Next() {
		stmt, err := decodeCUEStatement(iter.Value())
		if err != nil {
			return nil, err
		}
		if stmt.Name == "" {
			stmt.Name = iter.Label()
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func cueColumns(v cue.Value) (ColumnMap, error) {
	if v.Kind() != cue.StructKind {
		return nil, loadErrorf(ErrCodeColumns, cuePos(v.Pos()), "expected a struct of column name to expression")
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, cueError(ErrCodeColumns, err, v)
	}
	cols := ColumnMap{}
	for iter.Next() {
		name := iter.Label()
		expr, err := cueScalar(iter.Value())
		if err != nil {
			return nil, loadErrorf(ErrCodeColumns, cuePos(iter.Value().Pos()), "column %q: %v", name, err)
		}
		cols = append(cols, querydef.Col(name, expr))
	}
	return cols, nil
}

func cueColumnsPtr(v cue.Value) (*ColumnMap, error) {
	cols, err := cueColumns(v)
	if err != nil {
		return nil, err
	}
	return &cols, nil
}

// cueScalar renders a concrete scalar as expression text. Numbers and
// booleans keep their CUE spelling.
func cueScalar(v cue.Value) (string, error) {
	switch v.Kind() {
	case cue.StringKind:
		return v.String()
	case cue.IntKind, cue.FloatKind, cue.NumberKind, cue.BoolKind:
		b, err := v.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("expression must be a scalar, got %v", v.Kind())
	}
}

func cueStrings(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func cueOrders(v cue.Value) ([]Order, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []Order
	for iter.Next() {
		item := iter.Value()
		var o Order
		if o.Expr, err = item.LookupPath(cue.ParsePath("expr")).String(); err != nil {
			return nil, err
		}
		if dir := item.LookupPath(cue.ParsePath("dir")); dir.Exists() {
			if o.Dir, err = dir.String(); err != nil {
				return nil, err
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func cueLimit(v cue.Value) (*Limit, error) {
	skip, err := v.LookupPath(cue.ParsePath("skip")).Int64()
	if err != nil {
		return nil, err
	}
	take, err := v.LookupPath(cue.ParsePath("take")).Int64()
	if err != nil {
		return nil, err
	}
	return &Limit{Skip: int(skip), Take: int(take)}, nil
}

func hasFields(v cue.Value) bool {
	iter, err := v.Fields()
	return err == nil && iter.Next()
}

func cuePos(p token.Pos) Position {
	if !p.IsValid() {
		return Position{}
	}
	return Position{Line: p.Line(), Column: p.Column()}
}

// cueError converts a CUE error to a LoadError, taking the position of the
// first reported error when there is one.
func cueError(code string, err error, at cue.Value) error {
	if le, ok := err.(*LoadError); ok {
		return le
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return loadErrorf(code, cuePos(at.Pos()), "%v", err)
	}
	first := errs[0]
	pos := cuePos(at.Pos())
	if positions := errors.Positions(first); len(positions) > 0 {
		pos = cuePos(positions[0])
	}
	return loadErrorf(code, pos, "%v", first)
}
