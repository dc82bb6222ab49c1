package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fluentsql/internal/builder"
	"github.com/roach88/fluentsql/internal/querydef"
	"github.com/roach88/fluentsql/internal/testutil"
)

const testTraceID = "trace-test"

const usersSQL = "SELECT\n  U.id AS id\nFROM Users AS U\nWHERE (U.active = 1)"

// response mirrors CLIResponse with a typed payload.
type response struct {
	Status  string            `json:"status"`
	Data    []StatementResult `json:"data"`
	Error   *CLIError         `json:"error"`
	TraceID string            `json:"trace_id"`
}

// fixture writes statement files into a temp dir and returns their paths by
// base name.
func fixture(t *testing.T) (string, map[string]string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"users.yaml": `
from: Users
as: U
select:
  id: U.id
where: [U.active = 1]
`,
		"broken.yaml": `
from: T
limit: {skip: 0, take: 1}
`,
		"writes.yaml": `
statements:
  - name: add_user
    from: Users
    insert:
      name: "'ann'"
  - name: purge
    from: Users
    where: [active = 0]
    delete: true
`,
		"typo.yaml": `
from: T
wehre: [x = 1]
`,
	}
	paths := make(map[string]string, len(files))
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		paths[name] = p
	}
	return dir, paths
}

// writeConfig writes a fluentsql.yaml and returns its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fluentsql.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// runCLI executes the root command with a hermetic config and fixed trace id.
func runCLI(t *testing.T, config string, args ...string) (string, string, error) {
	t.Helper()
	opts := &RootOptions{TraceIDs: testutil.NewFixedTraceIDs(testTraceID)}
	cmd := NewRootCommandWithOptions(opts)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config", writeConfig(t, config)}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decode(t *testing.T, out string) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestCompile_Text(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "compile", paths["users.yaml"])
	require.NoError(t, err)
	assert.Equal(t, "-- users\n"+usersSQL+"\n", out)
}

func TestCompile_TextMultipleStatements(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "compile", paths["writes.yaml"], paths["users.yaml"])
	require.NoError(t, err)
	assert.Equal(t, "-- add_user\n"+
		"INSERT INTO Users (name)\nVALUES ('ann')\n"+
		"\n"+
		"-- purge\n"+
		"DELETE FROM Users\nFROM Users\nWHERE (active = 0)\n"+
		"\n"+
		"-- users\n"+usersSQL+"\n", out)
}

func TestCompile_JSON(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "--format", "json", "compile", paths["users.yaml"], paths["writes.yaml"])
	require.NoError(t, err)

	resp := decode(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, testTraceID, resp.TraceID)
	assert.Nil(t, resp.Error)
	require.Len(t, resp.Data, 3)

	names := []string{resp.Data[0].Name, resp.Data[1].Name, resp.Data[2].Name}
	assert.Equal(t, []string{"users", "add_user", "purge"}, names)
	assert.Equal(t, usersSQL, resp.Data[0].SQL)
	assert.Equal(t, querydef.KindSelect, resp.Data[0].Kind)
	assert.Equal(t, querydef.KindInsert, resp.Data[1].Kind)
	assert.Equal(t, querydef.KindDelete, resp.Data[2].Kind)
	assert.Len(t, resp.Data[0].Fingerprint, 64)
	assert.Equal(t, paths["users.yaml"], resp.Data[0].File)
}

func TestCompile_FailureReportsAllStatements(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "compile", paths["broken.yaml"], paths["users.yaml"])
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "1 of 2 statement(s) failed", err.Error())

	assert.Contains(t, out, "-- broken\n-- ✗ [E201] 'LIMIT' requires 'ORDER BY'\n")
	assert.Contains(t, out, "-- users\n"+usersSQL)
}

func TestCompile_FailureJSON(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "--format", "json", "compile", paths["users.yaml"], paths["broken.yaml"])
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, testTraceID, resp.TraceID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMissingClause, resp.Error.Code)
	require.Len(t, resp.Data, 2)
	assert.False(t, resp.Data[0].Failed())
	assert.True(t, resp.Data[1].Failed())
	assert.Empty(t, resp.Data[1].SQL)
}

func TestCompile_LoadFailureIsStatementFailure(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "--format", "json", "compile", paths["typo.yaml"])
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode(t, out)
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].Error)
	assert.Equal(t, "E104", resp.Data[0].Error.Code)
	assert.Contains(t, resp.Data[0].Error.Message, "wehre")
}

func TestCompile_FailFastFlag(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "--format", "json", "compile", "--fail-fast", paths["broken.yaml"], paths["users.yaml"])
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode(t, out)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "broken", resp.Data[0].Name)
}

func TestCompile_FailFastWithinFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "many.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
statements:
  - {name: ok, from: A}
  - {name: bad, from: B, upsert: {a: "1"}}
  - {name: never, from: C}
`), 0o644))

	out, _, err := runCLI(t, "", "--format", "json", "compile", "--fail-fast", p)
	require.Error(t, err)

	resp := decode(t, out)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "bad", resp.Data[1].Name)
	assert.Equal(t, "'UPSERT' requires 'WHERE'", resp.Data[1].Error.Message)
}

func TestCompile_FailFastFromConfig(t *testing.T) {
	_, paths := fixture(t)
	config := "compile:\n  fail_fast: true\n"

	out, _, err := runCLI(t, config, "--format", "json", "compile", paths["broken.yaml"], paths["users.yaml"])
	require.Error(t, err)
	assert.Len(t, decode(t, out).Data, 1)

	// An explicit flag wins over the config file.
	out, _, err = runCLI(t, config, "--format", "json", "compile", "--fail-fast=false", paths["broken.yaml"], paths["users.yaml"])
	require.Error(t, err)
	assert.Len(t, decode(t, out).Data, 2)
}

func TestCompile_FormatFromConfig(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "format: json\n", "compile", paths["users.yaml"])
	require.NoError(t, err)
	assert.Equal(t, "ok", decode(t, out).Status)

	out, _, err = runCLI(t, "format: json\n", "--format", "text", "compile", paths["users.yaml"])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "-- users\n"))
}

func TestCompile_Directory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.cue", "c.yml"} {
		body := "from: \"" + strings.ToUpper(name[:1]) + "\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# x"), 0o644))

	out, _, err := runCLI(t, "", "--format", "json", "compile", dir)
	require.NoError(t, err)

	resp := decode(t, out)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "a", resp.Data[0].Name)
	assert.Equal(t, "b", resp.Data[1].Name)
	assert.Equal(t, "c", resp.Data[2].Name)
	assert.Equal(t, "SELECT\n  *\nFROM A", resp.Data[0].SQL)
}

func TestCompile_MissingPathIsCommandError(t *testing.T) {
	out, _, err := runCLI(t, "", "--format", "json", "compile", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decode(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E002", resp.Error.Code)
}

func TestCompile_RequiresArgs(t *testing.T) {
	_, _, err := runCLI(t, "", "compile")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompile_InvalidFormat(t *testing.T) {
	_, paths := fixture(t)

	_, _, err := runCLI(t, "", "--format", "xml", "compile", paths["users.yaml"])
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestCompile_VerboseLogsToStderr(t *testing.T) {
	_, paths := fixture(t)

	out, stderr, err := runCLI(t, "", "--verbose", "--format", "json", "compile", paths["users.yaml"])
	require.NoError(t, err)
	assert.Equal(t, "ok", decode(t, out).Status)
	assert.Contains(t, stderr, "loaded statement file")
	assert.Contains(t, stderr, "statement compiled")
}

func TestCompile_QuietByDefault(t *testing.T) {
	_, paths := fixture(t)

	_, stderr, err := runCLI(t, "", "compile", paths["users.yaml"])
	require.NoError(t, err)
	assert.Empty(t, stderr)

	_, stderr, err = runCLI(t, "", "compile", paths["broken.yaml"])
	require.Error(t, err)
	assert.Contains(t, stderr, "statement failed")
}

func TestCheck_Text(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "check", paths["users.yaml"], paths["writes.yaml"])
	require.NoError(t, err)
	assert.Equal(t, "✓ users (select)\n✓ add_user (insert)\n✓ purge (delete)\n\n3 of 3 statement(s) ok\n", out)
}

func TestCheck_Failure(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "check", paths["users.yaml"], paths["broken.yaml"])
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken: [E201] 'LIMIT' requires 'ORDER BY'\n")
	assert.Contains(t, out, "1 of 2 statement(s) ok\n")
}

func TestCheck_JSONOmitsSQL(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "--format", "json", "check", paths["users.yaml"])
	require.NoError(t, err)

	resp := decode(t, out)
	require.Len(t, resp.Data, 1)
	assert.Empty(t, resp.Data[0].SQL)
	assert.NotEmpty(t, resp.Data[0].Fingerprint)
}

func TestFingerprint_MatchesBuilder(t *testing.T) {
	_, paths := fixture(t)

	def := builder.New().
		From(builder.Table("Users"), "U").
		Select(querydef.Col("id", "U.id")).
		Where("U.active = 1").
		Definition()
	want, err := querydef.Fingerprint(def)
	require.NoError(t, err)

	out, _, err := runCLI(t, "", "fingerprint", paths["users.yaml"])
	require.NoError(t, err)
	assert.Equal(t, want+"  users\n", out)
}

func TestFingerprint_JSON(t *testing.T) {
	_, paths := fixture(t)

	out, _, err := runCLI(t, "", "--format", "json", "fingerprint", paths["writes.yaml"])
	require.NoError(t, err)

	resp := decode(t, out)
	require.Len(t, resp.Data, 2)
	assert.NotEqual(t, resp.Data[0].Fingerprint, resp.Data[1].Fingerprint)
	for _, r := range resp.Data {
		assert.Empty(t, r.SQL)
		assert.Len(t, r.Fingerprint, 64)
	}
}
