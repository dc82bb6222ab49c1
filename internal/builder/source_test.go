package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fluentsql/internal/querydef"
	"github.com/roach88/fluentsql/internal/querysql"
	"github.com/roach88/fluentsql/internal/testutil"
)

func TestFrom_Subquery(t *testing.T) {
	active := New().From(Table("Users"), "").Where("active = 1")

	query, err := New().From(active, "A").Select(col("id", "A.id")).Query()
	require.NoError(t, err)
	testutil.AssertGoldenSQL(t, "from_subquery", query)
}

func TestFrom_Union(t *testing.T) {
	current := New().From(Table("Users"), "").Select(col("id", "id"), col("name", "name"))
	archived := New().From(Table("ArchivedUsers"), "").Select(col("id", "id"), col("name", "name"))

	query, err := New().
		From(Union{current, archived}, "AU").
		OrderBy("AU.name", querydef.Asc).
		Query()
	require.NoError(t, err)
	testutil.AssertGoldenSQL(t, "from_union", query)
}

func TestFrom_EmptyUnionIsDeferred(t *testing.T) {
	b := New().From(Union{}, "X")
	require.Error(t, b.Err())

	// Later transforms still succeed and keep the failure.
	b = b.Where("x = 1").Select(col("a", "1"))
	_, err := b.Query()
	assert.ErrorIs(t, err, querysql.ErrMissingClause)
}

func TestFrom_NestedFailurePropagates(t *testing.T) {
	broken := New().Where("x = 1") // no FROM

	_, err := New().From(broken, "B").Query()
	assert.ErrorIs(t, err, querysql.ErrMissingClause)

	_, err = New().From(Union{users(), broken}, "B").Query()
	assert.ErrorIs(t, err, querysql.ErrMissingClause)
}

func TestFrom_FirstFailureWins(t *testing.T) {
	b := New().
		From(Union{}, "X").
		OrderBy("x", querydef.Direction("sideways"))

	_, err := b.Query()
	assert.ErrorIs(t, err, querysql.ErrMissingClause)
	assert.NotErrorIs(t, err, querysql.ErrInvalidValue)
}

func TestOrderBy_InvalidDirection(t *testing.T) {
	_, err := users().OrderBy("U.id", querydef.Direction("up")).Query()
	assert.ErrorIs(t, err, querysql.ErrInvalidValue)
}

func TestSource_SealedImplementations(t *testing.T) {
	for _, src := range []Source{Table("T"), users(), Union{users()}} {
		_, err := src.render()
		assert.NoError(t, err)
	}
}
