package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateAndList(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "--path", dir, "--log-level", "error", "create", "Add Sync Index", "speeds up run listing")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Contains(t, e.Name(), "add_sync_index")
	}
	up, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	require.NoError(t, err)
	require.Len(t, up, 1)
	content, err := os.ReadFile(up[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "speeds up run listing")

	out, err := run(t, "--path", dir, "--log-level", "error", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "add_sync_index")
}

func TestArgumentValidation(t *testing.T) {
	_, err := run(t, "--log-level", "error", "steps")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "error", "steps", "two")
	assert.ErrorContains(t, err, "integer")

	_, err = run(t, "--log-level", "error", "force", "x")
	assert.ErrorContains(t, err, "integer")

	_, err = run(t, "--log-level", "error", "create")
	assert.Error(t, err)
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "embedded", (&options{}).sourceName())
	assert.Equal(t, "/tmp/m", (&options{path: "/tmp/m"}).sourceName())
	assert.Equal(t, defaultMigrationsDir, (&options{}).dir())
}
