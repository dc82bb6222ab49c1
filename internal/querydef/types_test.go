package querydef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func fullDefinition() Definition {
	return Definition{
		Kind:     KindSelect,
		From:     "Users",
		As:       "U",
		Select:   Columns{Col("id", "U.id")},
		Where:    []string{"U.active = 1"},
		Distinct: true,
		Top:      intPtr(5),
		GroupBy:  []string{"U.id"},
		Join:     []string{"LEFT OUTER JOIN Orders AS O"},
		Limit:    &Limit{Skip: 1, Take: 2},
		OrderBy:  []string{"U.id ASC"},
		Update:   Columns{Col("a", "1")},
		Insert:   Columns{Col("b", "2")},
		Upsert:   Columns{Col("c", "3")},
		Output:   []string{"INSERTED.id"},
	}
}

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), "kind %s", k)
	}
	assert.False(t, Kind("merge").Valid())
	assert.False(t, Kind("").Valid())
}

func TestDirection_Valid(t *testing.T) {
	assert.True(t, Asc.Valid())
	assert.True(t, Desc.Valid())
	assert.False(t, Direction("asc").Valid())
}

func TestColumnsOf_SortsByName(t *testing.T) {
	cols := ColumnsOf(map[string]string{"b": "2", "a": "1", "c": "3"})
	assert.Equal(t, []string{"a", "b", "c"}, cols.Names())
	assert.Equal(t, []string{"1", "2", "3"}, cols.Exprs())

	assert.Nil(t, ColumnsOf(nil))
}

func TestColumns_ClonePreservesOrder(t *testing.T) {
	cols := Columns{Col("z", "1"), Col("a", "2")}
	clone := cols.Clone()
	assert.Equal(t, cols, clone)

	clone[0].Expr = "changed"
	assert.Equal(t, "1", cols[0].Expr)

	assert.Nil(t, Columns{}.Clone())
}

func TestDefinition_CloneIsDeep(t *testing.T) {
	orig := fullDefinition()
	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Select[0].Expr = "X"
	clone.Where[0] = "X"
	clone.GroupBy[0] = "X"
	clone.Join[0] = "X"
	clone.OrderBy[0] = "X"
	clone.Update[0].Expr = "X"
	clone.Insert[0].Expr = "X"
	clone.Upsert[0].Expr = "X"
	clone.Output[0] = "X"
	*clone.Top = 99
	clone.Limit.Take = 99

	assert.Equal(t, fullDefinition(), orig)
}

func TestDefinition_CloneAppendDoesNotAlias(t *testing.T) {
	base := New()
	base.Where = make([]string, 1, 8)
	base.Where[0] = "a"

	left := base.Clone()
	left.Where = append(left.Where, "left")
	right := base.Clone()
	right.Where = append(right.Where, "right")

	assert.Equal(t, []string{"a", "left"}, left.Where)
	assert.Equal(t, []string{"a", "right"}, right.Where)
	assert.Equal(t, []string{"a"}, base.Where)
}

func TestNew(t *testing.T) {
	d := New()
	assert.Equal(t, KindSelect, d.Kind)
	assert.Empty(t, d.Populated())
}
