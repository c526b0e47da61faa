package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"arenad/internal/cli/commands"
	"arenad/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cliEnv is a config file pointing at a database in a temp directory
type cliEnv struct {
	dir        string
	configPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`[database]
driver = "sqlite3"
dsn = %q
auto_migrate = true

[logging]
level = "error"

[query]
default_page_size = 12
max_page_size = 50
`, filepath.Join(dir, "arena.db"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	return &cliEnv{dir: dir, configPath: configPath}
}

// run executes one command line with a fresh manager and returns its output
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	m := NewWithEnv(&commands.Env{ConfigPath: e.configPath})
	m.SetOutput(&out)
	err := m.ExecuteWithContext(context.Background(), args)
	return out.String(), err
}

func (e *cliEnv) writeFixtures(t *testing.T) string {
	t.Helper()

	path := filepath.Join(e.dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testutil.LeagueFixtures), 0644))
	return path
}

func TestRootCommandLayout(t *testing.T) {
	m := NewWithEnv(commands.NewEnv())

	for _, path := range [][]string{
		{"serve"},
		{"seed"},
		{"query"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"config", "init"},
		{"config", "show"},
		{"config", "validate"},
		{"config", "path"},
	} {
		cmd, _, err := m.rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	assert.NotNil(t, m.rootCmd.PersistentFlags().Lookup("config"))
}

func TestMigrateCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 1 (clean)")

	out, err = env.run(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 1 (clean)")

	out, err = env.run(t, "migrate", "down", "--steps", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 0")
}

func TestSeedAndQuery(t *testing.T) {
	env := newCLIEnv(t)
	fixtures := env.writeFixtures(t)

	out, err := env.run(t, "seed", fixtures)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded "+fixtures)
	assert.Regexp(t, `tournaments\s+3`, out)
	assert.Regexp(t, `stages\s+2`, out)
	assert.Regexp(t, `users\s+3`, out)

	out, err = env.run(t, "query", "tournaments", "--filter", "game=chess", "--sort", "name", "--order", "asc")
	require.NoError(t, err)

	var resp struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Page     int `json:"page"`
			PageSize int `json:"pageSize"`
			Total    int `json:"total"`
		} `json:"pagination"`
		Links struct {
			First string `json:"first"`
		} `json:"links"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Spring Open", resp.Data[0]["name"])
	assert.Equal(t, "Summer Open", resp.Data[1]["name"])
	assert.Equal(t, 2, resp.Pagination.Total)
	assert.Equal(t, 12, resp.Pagination.PageSize)
	assert.Contains(t, resp.Links.First, "/api/tournaments?")
	assert.Contains(t, resp.Links.First, "game=chess")
}

func TestQueryExplain(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "query", "tournaments", "--filter", "game=chess", "--page", "2", "--explain")
	require.NoError(t, err)
	assert.Contains(t, out, "FROM tournaments")
	assert.Contains(t, out, "tournaments.game = ?")
	assert.Contains(t, out, "LIMIT 12 OFFSET 12")
	assert.Contains(t, out, "$1 = chess")
	assert.NotContains(t, out, `"data"`)
}

func TestSeedIsAtomic(t *testing.T) {
	env := newCLIEnv(t)

	path := filepath.Join(env.dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - id: u-1
    username: dup
  - id: u-2
    username: dup
`), 0644))

	_, err := env.run(t, "seed", path)
	require.Error(t, err)

	out, err := env.run(t, "query", "users")
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 0`)
}

func TestQueryRejections(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "query", "teams")
	require.Error(t, err)
	assert.Equal(t, 2, commands.ExitCode(err))

	_, err = env.run(t, "query", "groups", "--page-size", "500")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pageSize")

	_, err = env.run(t, "query", "groups", "--filter", "page=2")
	require.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena", "config.toml")
	env := &cliEnv{dir: dir, configPath: path}

	out, err := env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = env.run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration")
	assert.FileExists(t, path)

	_, err = env.run(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = env.run(t, "config", "init", "--force")
	require.NoError(t, err)

	out, err = env.run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	out, err = env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[server]")
	assert.Contains(t, out, "[query]")
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 70000\n"), 0644))

	env := &cliEnv{dir: dir, configPath: path}
	_, err := env.run(t, "config", "validate")
	require.Error(t, err)
}
