// Package install tests the uninstall coordinator: owned-file removal,
// foreign-file preservation, original-content restoration, and store purging.
// Related: internal/install/uninstaller.go
// Tags: uninstall, marker, store

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

// installedTarget runs a real install and returns the target and the store
// both coordinators share.
func installedTarget(t *testing.T) (string, *backup.Store) {
	t.Helper()

	target := filepath.Join(t.TempDir(), ".claude")
	installer := &Installer{
		Store:      backup.NewStore(filepath.Join(t.TempDir(), "store")),
		TargetRoot: target,
		Version:    "1.0.0",
	}
	_, err := installer.Run()
	require.NoError(t, err)
	return target, installer.Store
}

func TestUninstaller_RemovesOnlyOwnedFiles(t *testing.T) {
	t.Parallel()

	target, store := installedTarget(t)

	// Foreign content the uninstall must not touch, including inside a
	// directory AWOC also writes to.
	require.NoError(t, os.WriteFile(filepath.Join(target, "my-notes.md"), []byte("keep"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(target, "agents", "my-agent.md"), []byte("keep"), 0o644))

	uninstaller := &Uninstaller{Store: store, TargetRoot: target, PreserveBackups: true}
	result, err := uninstaller.Run()
	require.NoError(t, err)

	files, err := payload.Files()
	require.NoError(t, err)
	for _, rel := range files {
		_, statErr := os.Stat(filepath.Join(target, filepath.FromSlash(rel)))
		assert.True(t, os.IsNotExist(statErr), "owned file %s should be removed", rel)
	}
	assert.False(t, MarkerExists(target))
	assert.Contains(t, result.Removed, MarkerFileName)

	// Foreign files and the directories holding them survive.
	_, err = os.Stat(filepath.Join(target, "my-notes.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(target, "agents", "my-agent.md"))
	assert.NoError(t, err)

	// Directories that held only owned files are pruned.
	_, err = os.Stat(filepath.Join(target, "hooks"))
	assert.True(t, os.IsNotExist(err))
}

func TestUninstaller_PreservesStoreByDefault(t *testing.T) {
	t.Parallel()

	target, store := installedTarget(t)
	_, err := store.Create(target, backup.CreateOptions{Name: "keep-me"})
	require.NoError(t, err)

	uninstaller := &Uninstaller{Store: store, TargetRoot: target, PreserveBackups: true}
	result, err := uninstaller.Run()
	require.NoError(t, err)
	assert.False(t, result.StorePurged)

	refs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, refs, 1, "backup store must survive a default uninstall")
}

func TestUninstaller_PurgeDeletesStore(t *testing.T) {
	t.Parallel()

	target, store := installedTarget(t)
	_, err := store.Create(target, backup.CreateOptions{Name: "doomed"})
	require.NoError(t, err)

	uninstaller := &Uninstaller{Store: store, TargetRoot: target}
	result, err := uninstaller.Run()
	require.NoError(t, err)
	assert.True(t, result.StorePurged)

	_, err = os.Stat(store.Root)
	assert.True(t, os.IsNotExist(err))
}

func TestUninstaller_RestoreOriginal(t *testing.T) {
	t.Parallel()

	// Pre-AWOC content, then an install over it (which backs it up), then
	// an uninstall that asks for it back.
	target := filepath.Join(t.TempDir(), ".claude")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "prompts.md"),
		[]byte("my prompts"), 0o644))

	store := backup.NewStore(filepath.Join(t.TempDir(), "store"))
	installer := &Installer{Store: store, TargetRoot: target, Version: "1.0.0"}

	// First install sees no marker, so seed one to force the upgrade path
	// that records a backup of the original content.
	seed := &Marker{SchemaVersion: SchemaVersion, Version: "0.9.0"}
	require.NoError(t, seed.Save(target))

	result, err := installer.Run()
	require.NoError(t, err)
	require.NotNil(t, result.SafetyBackup)

	uninstaller := &Uninstaller{
		Store:           store,
		TargetRoot:      target,
		PreserveBackups: true,
		RestoreOriginal: true,
	}
	unResult, err := uninstaller.Run()
	require.NoError(t, err)
	assert.True(t, unResult.RestoredOriginal)

	// Non-owned original content is back; AWOC-owned paths are gone even
	// though the snapshot carried them.
	data, err := os.ReadFile(filepath.Join(target, "prompts.md"))
	require.NoError(t, err)
	assert.Equal(t, "my prompts", string(data))

	_, err = os.Stat(filepath.Join(target, payload.SettingsFile))
	assert.True(t, os.IsNotExist(err), "owned settings file must not survive uninstall")
	assert.False(t, MarkerExists(target))
}

func TestUninstaller_RestoreOriginalAfterUpgrade(t *testing.T) {
	t.Parallel()

	// After an upgrade the marker's backup pointer names a snapshot of a
	// full AWOC installation. Restoring it must not leave the target
	// installed: the owned-file removal is the final word.
	target := filepath.Join(t.TempDir(), ".claude")
	store := backup.NewStore(filepath.Join(t.TempDir(), "store"))

	installer := &Installer{Store: store, TargetRoot: target, Version: "1.0.0"}
	_, err := installer.Run()
	require.NoError(t, err)

	installer.Version = "1.1.0"
	result, err := installer.Run()
	require.NoError(t, err)
	require.NotNil(t, result.SafetyBackup)

	uninstaller := &Uninstaller{
		Store:           store,
		TargetRoot:      target,
		PreserveBackups: true,
		RestoreOriginal: true,
	}
	unResult, err := uninstaller.Run()
	require.NoError(t, err)
	assert.True(t, unResult.RestoredOriginal)

	assert.False(t, MarkerExists(target), "uninstall must not leave an installation marker behind")
	_, err = os.Stat(filepath.Join(target, filepath.FromSlash(payload.EntryPoint)))
	assert.True(t, os.IsNotExist(err), "payload must not survive uninstall")
}

func TestUninstaller_StaleBackupPointerDegrades(t *testing.T) {
	t.Parallel()

	target, store := installedTarget(t)

	// Point the marker at a backup that retention already deleted.
	marker, err := LoadMarker(target)
	require.NoError(t, err)
	marker.BackupPath = filepath.Join(store.Root, "gone-20260101-000000")
	require.NoError(t, marker.Save(target))

	uninstaller := &Uninstaller{
		Store:           store,
		TargetRoot:      target,
		PreserveBackups: true,
		RestoreOriginal: true,
	}
	result, err := uninstaller.Run()
	require.NoError(t, err, "a stale pointer is a warning, not a failure")
	assert.False(t, result.RestoredOriginal)
	assert.NotEmpty(t, result.Warnings)
}

func TestUninstaller_NoInstallation(t *testing.T) {
	t.Parallel()

	store := backup.NewStore(filepath.Join(t.TempDir(), "store"))
	uninstaller := &Uninstaller{Store: store, TargetRoot: t.TempDir(), PreserveBackups: true}

	_, err := uninstaller.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no AWOC installation")
}
