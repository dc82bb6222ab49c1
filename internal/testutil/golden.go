package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGoldenSQL compares rendered SQL against testdata/golden/{name}.golden
// in the calling package's directory.
//
// Rendered text is a compatibility contract, so golden files hold the exact
// bytes, without a trailing newline. To regenerate them, run:
//
//	go test ./internal/... -update
func AssertGoldenSQL(t *testing.T, name, sql string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(sql))
}
