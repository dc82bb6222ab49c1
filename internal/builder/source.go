package builder

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/roach88/fluentsql/internal/querydef"
	"github.com/roach88/fluentsql/internal/querysql"
)

// Source is what a statement reads from: a Table, a Builder (subquery) or a
// Union of Builders.
//
// This is a sealed interface; only types in this package implement it.
type Source interface {
	render() (string, error)
}

// Table is a raw table or view reference, used verbatim.
type Table string

func (t Table) render() (string, error) {
	return string(t), nil
}

// render makes a Builder usable as a parenthesized subquery source.
func (b Builder) render() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return querysql.RenderSubquery(b.def)
}

// Union is a list of queries combined with UNION ALL. It must not be empty.
type Union []Builder

func (u Union) render() (string, error) {
	for i, b := range u {
		if b.err != nil {
			return "", fmt.Errorf("union member %d: %w", i, b.err)
		}
	}
	defs := lo.Map(u, func(b Builder, _ int) querydef.Definition { return b.def })
	return querysql.RenderUnion(defs)
}
