// Package cli tests root command structure and global flags for awoc.
// Related: internal/cli/root.go
// Tags: cli, root, commands, global-flags

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "awoc", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		flagName string
	}{
		"config flag exists": {flagName: "config"},
		"target flag exists": {flagName: "target"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			assert.NotNil(t, flag, "Flag %s should exist", tt.flagName)
		})
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	t.Parallel()

	want := []string{"install", "uninstall", "restore", "backup", "config", "doctor", "version"}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range want {
		assert.True(t, registered[name], "Subcommand %s should be registered", name)
	}
}

func TestBackupCmd_HasSubcommands(t *testing.T) {
	t.Parallel()

	want := []string{"create", "list", "show", "clean"}

	registered := make(map[string]bool)
	for _, cmd := range backupCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range want {
		assert.True(t, registered[name], "Backup subcommand %s should be registered", name)
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 1, ExitOperationFailed)
	assert.Equal(t, 2, ExitInvalidArguments)
}
