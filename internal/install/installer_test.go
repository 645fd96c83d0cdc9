// Package install tests the install coordinator: fresh installs, upgrade
// safety backups, marker records, and the post-install smoke check.
// Related: internal/install/installer.go
// Tags: install, upgrade, marker

package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awoc-dev/awoc/internal/backup"
	"github.com/awoc-dev/awoc/internal/payload"
)

func newInstaller(t *testing.T, target string) *Installer {
	t.Helper()
	return &Installer{
		Store:      backup.NewStore(filepath.Join(t.TempDir(), "store")),
		TargetRoot: target,
		Version:    "1.0.0",
	}
}

func TestInstaller_FreshInstall(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), ".claude")
	installer := newInstaller(t, target)

	result, err := installer.Run()
	require.NoError(t, err)

	assert.False(t, result.Upgrade)
	assert.Nil(t, result.SafetyBackup, "a fresh install has nothing to back up")
	assert.NotEmpty(t, result.Deployed)

	// No backup appears in the store.
	refs, err := installer.Store.List()
	require.NoError(t, err)
	assert.Empty(t, refs)

	// Marker records version and the deployed file set.
	marker, err := LoadMarker(target)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, marker.SchemaVersion)
	assert.Equal(t, "1.0.0", marker.Version)
	assert.Equal(t, result.Deployed, marker.Files)
	assert.Empty(t, marker.BackupPath)

	// Entry point carries the executable bit.
	info, err := os.Stat(filepath.Join(target, filepath.FromSlash(payload.EntryPoint)))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o111)
}

func TestInstaller_UpgradeTakesSafetyBackup(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), ".claude")
	installer := newInstaller(t, target)

	_, err := installer.Run()
	require.NoError(t, err)

	installer.Version = "1.1.0"
	result, err := installer.Run()
	require.NoError(t, err)

	assert.True(t, result.Upgrade)
	require.NotNil(t, result.SafetyBackup)
	assert.Contains(t, result.SafetyBackup.Name, "pre-install-")
	assert.Equal(t, "1.0.0", result.SafetyBackup.Manifest.SourceVersion,
		"safety backup records the version it snapshotted")

	refs, err := installer.Store.List()
	require.NoError(t, err)
	assert.Len(t, refs, 1, "an upgrade creates exactly one backup")

	marker, err := LoadMarker(target)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", marker.Version)
	assert.Equal(t, result.SafetyBackup.Path, marker.BackupPath)
}

func TestInstaller_PreservesForeignFiles(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), ".claude")
	require.NoError(t, os.MkdirAll(target, 0o755))
	foreign := filepath.Join(target, "my-notes.md")
	require.NoError(t, os.WriteFile(foreign, []byte("keep me"), 0o644))

	installer := newInstaller(t, target)
	_, err := installer.Run()
	require.NoError(t, err)

	data, err := os.ReadFile(foreign)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestDiscoverInstallations(t *testing.T) {
	t.Parallel()

	installed := filepath.Join(t.TempDir(), ".claude")
	installer := newInstaller(t, installed)
	_, err := installer.Run()
	require.NoError(t, err)

	empty := t.TempDir()
	missing := filepath.Join(t.TempDir(), "nope")

	found := DiscoverInstallations([]string{installed, empty, missing})
	assert.Equal(t, []string{installed}, found)
}
