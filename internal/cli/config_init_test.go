// Package cli tests the config init command.
// Related: internal/cli/config.go
// Tags: cli, config, init

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit_WritesUserTemplate(t *testing.T) {
	lifecycleEnv(t)

	out, err := runCommand(t, "config", "init", "--user")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "awoc", "config.yml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "keep_count: 10")
	assert.Contains(t, string(data), "target_dir:")
}

func TestConfigInit_RefusesOverwriteWithoutForce(t *testing.T) {
	lifecycleEnv(t)

	_, err := runCommand(t, "config", "init", "--user")
	require.NoError(t, err)

	_, err = runCommand(t, "config", "init", "--user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCommand(t, "config", "init", "--user", "--force")
	require.NoError(t, err)
}
