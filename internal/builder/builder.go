// Package builder provides the fluent, immutable query builder.
//
// Every method returns a new Builder and leaves its receiver untouched, so a
// Builder can serve as the shared base of many independent chains:
//
//	users := builder.New().From(builder.Table("Users"), "U")
//	active := users.Where("U.active = 1")
//	admins := users.Where("U.role = 'admin'")
//
// Transforms never fail. Problems found while rendering nested text (a
// subquery or join that does not compile, an empty union) are kept in the
// Builder and reported by Query.
package builder

import (
	"fmt"

	"github.com/roach88/fluentsql/internal/querydef"
	"github.com/roach88/fluentsql/internal/querysql"
)

// Builder wraps one immutable querydef.Definition.
// The zero value is not usable; start from New.
type Builder struct {
	def querydef.Definition
	err error
}

// New returns a Builder for an empty select statement.
func New() Builder {
	return Builder{def: querydef.New()}
}

// Clone returns an independent deep copy of b.
func (b Builder) Clone() Builder {
	return Builder{def: b.def.Clone(), err: b.err}
}

// Definition returns a copy of the underlying definition.
func (b Builder) Definition() querydef.Definition {
	return b.def.Clone()
}

// Err returns the first failure recorded by a transform, if any.
func (b Builder) Err() error {
	return b.err
}

// Query compiles the statement. Calling it repeatedly yields identical text.
func (b Builder) Query() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return querysql.Compile(b.def)
}

// MustQuery is like Query but panics on failure.
// It is intended for statically known statements and tests.
func (b Builder) MustQuery() string {
	query, err := b.Query()
	if err != nil {
		panic(fmt.Sprintf("builder: %v", err))
	}
	return query
}

// with clones b, applies fn to the copy's definition and returns the copy.
func (b Builder) with(fn func(def *querydef.Definition)) Builder {
	next := b.Clone()
	fn(&next.def)
	return next
}

// fail clones b and records err unless an earlier failure is already kept.
func (b Builder) fail(err error) Builder {
	next := b.Clone()
	if next.err == nil {
		next.err = err
	}
	return next
}

// From sets the statement source and its alias; an empty alias clears it.
// All other fields are preserved.
func (b Builder) From(src Source, alias string) Builder {
	from, err := src.render()
	if err != nil {
		return b.fail(fmt.Errorf("render FROM source: %w", err))
	}
	return b.with(func(def *querydef.Definition) {
		def.From = from
		def.As = alias
	})
}

// As sets the alias bound to the source.
func (b Builder) As(alias string) Builder {
	return b.with(func(def *querydef.Definition) { def.As = alias })
}

// Select replaces the projection. With no columns the statement selects *.
func (b Builder) Select(cols ...querydef.Column) Builder {
	return b.with(func(def *querydef.Definition) { def.Select = querydef.Columns(cols).Clone() })
}

// Where appends a predicate. Predicates are combined with AND.
func (b Builder) Where(predicate string) Builder {
	return b.with(func(def *querydef.Definition) { def.Where = append(def.Where, predicate) })
}

// Distinct marks the select as SELECT DISTINCT.
func (b Builder) Distinct() Builder {
	return b.with(func(def *querydef.Definition) { def.Distinct = true })
}

// Top caps the number of rows selected, updated or deleted.
func (b Builder) Top(n int) Builder {
	return b.with(func(def *querydef.Definition) { def.Top = &n })
}

// OrderBy appends one ordering term.
func (b Builder) OrderBy(expr string, dir querydef.Direction) Builder {
	if !dir.Valid() {
		return b.fail(&querysql.CompileError{
			Err:     querysql.ErrInvalidValue,
			Kind:    b.def.Kind,
			Fields:  []querydef.Field{querydef.FieldOrderBy},
			Message: fmt.Sprintf("invalid order direction %q for %s", dir, expr),
		})
	}
	return b.with(func(def *querydef.Definition) {
		def.OrderBy = append(def.OrderBy, expr+" "+string(dir))
	})
}

// Limit pages the result with OFFSET/FETCH. It requires OrderBy at compile time.
func (b Builder) Limit(skip, take int) Builder {
	return b.with(func(def *querydef.Definition) { def.Limit = &querydef.Limit{Skip: skip, Take: take} })
}

// GroupBy replaces the grouping expressions.
func (b Builder) GroupBy(exprs ...string) Builder {
	return b.with(func(def *querydef.Definition) { def.GroupBy = cloneStrings(exprs) })
}

// Output replaces the OUTPUT expressions of an insert, update, upsert or delete.
func (b Builder) Output(exprs ...string) Builder {
	return b.with(func(def *querydef.Definition) { def.Output = cloneStrings(exprs) })
}

// Join renders other as a join clause and appends it. Joins keep call order.
// See querysql.RenderJoin for how the join strategy is chosen.
func (b Builder) Join(other Builder) Builder {
	if other.err != nil {
		return b.fail(fmt.Errorf("render JOIN %s: %w", other.def.As, other.err))
	}
	clause, err := querysql.RenderJoin(other.def)
	if err != nil {
		return b.fail(fmt.Errorf("render JOIN %s: %w", other.def.As, err))
	}
	return b.with(func(def *querydef.Definition) { def.Join = append(def.Join, clause) })
}

// Update turns the statement into an UPDATE setting the given columns.
func (b Builder) Update(cols ...querydef.Column) Builder {
	return b.with(func(def *querydef.Definition) {
		def.Kind = querydef.KindUpdate
		def.Update = querydef.Columns(cols).Clone()
	})
}

// Insert turns the statement into an INSERT of the given columns.
func (b Builder) Insert(cols ...querydef.Column) Builder {
	return b.with(func(def *querydef.Definition) {
		def.Kind = querydef.KindInsert
		def.Insert = querydef.Columns(cols).Clone()
	})
}

// Upsert turns the statement into a MERGE that updates the given columns
// when the where predicates match a row and inserts them otherwise.
func (b Builder) Upsert(cols ...querydef.Column) Builder {
	return b.with(func(def *querydef.Definition) {
		def.Kind = querydef.KindUpsert
		def.Upsert = querydef.Columns(cols).Clone()
	})
}

// Delete turns the statement into a DELETE.
func (b Builder) Delete() Builder {
	return b.with(func(def *querydef.Definition) { def.Kind = querydef.KindDelete })
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}
