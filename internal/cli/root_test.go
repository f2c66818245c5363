package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/marksync/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "marksync", cmd.Use)
	assert.NotNil(t, cmd.RunE, "root must default to serve")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "migrate", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.Version)
	assert.Contains(t, out, "commit=")
}

func TestMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marksync.db")

	out, err := execute(t, "migrate", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")

	// Re-running against a migrated database is a no-op.
	out, err = execute(t, "migrate", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")
}

func TestMigrateCommand_ConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("MARKSYNC_CONFIG_FILE", "")
	t.Setenv("MARKSYNC_DATABASE_PATH", path)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, path)
}

func TestMigrateCommand_InvalidConfig(t *testing.T) {
	t.Setenv("MARKSYNC_CONFIG_FILE", "")
	t.Setenv("MARKSYNC_MAX_CHANGES", "0")

	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MARKSYNC_MAX_CHANGES")
}

func TestRejectsArguments(t *testing.T) {
	_, err := execute(t, "version", "extra")
	require.Error(t, err)
}
