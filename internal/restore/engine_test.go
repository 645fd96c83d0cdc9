// Package restore tests the restore state machine: safety backups, content
// reproduction, partial-backup rejection, and the validation terminal states.
// Related: internal/restore/engine.go
// Tags: restore, safety-backup, state-machine

package restore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awoc-dev/awoc/internal/backup"
	"github.com/awoc-dev/awoc/internal/install"
	"github.com/awoc-dev/awoc/internal/payload"
)

// installedTarget deploys the real payload and writes a marker, producing a
// target that passes validation.
func installedTarget(t *testing.T) string {
	t.Helper()

	target := t.TempDir()
	deployed, err := payload.Deploy(target)
	require.NoError(t, err)

	marker := &install.Marker{
		SchemaVersion: install.SchemaVersion,
		Version:       "1.0.0",
		Files:         deployed,
	}
	require.NoError(t, marker.Save(target))
	return target
}

func newTestStore(t *testing.T) *backup.Store {
	t.Helper()
	return backup.NewStore(filepath.Join(t.TempDir(), "store"))
}

func TestRestore_UnknownRefCreatesNoBackup(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	target := installedTarget(t)
	engine := NewEngine(store, target)

	report, err := engine.Restore("20991231")
	require.ErrorIs(t, err, backup.ErrBackupNotFound)
	assert.Equal(t, PhaseAborted, report.Phase)
	assert.Nil(t, report.SafetyBackup, "resolution failure must not create a safety backup")

	refs, listErr := store.List()
	require.NoError(t, listErr)
	assert.Empty(t, refs, "store must be unchanged after a failed resolution")
}

func TestRestore_ReproducesBackupContent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	target := installedTarget(t)

	created, err := store.Create(target, backup.CreateOptions{Name: "known-good", SourceVersion: "1.0.0"})
	require.NoError(t, err)

	// Drift the installation after the backup.
	settingsPath := filepath.Join(target, payload.SettingsFile)
	original, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(settingsPath, []byte(`{"drifted":true}`), 0o644))

	engine := NewEngine(store, target, WithSourceVersion("1.0.0"))
	report, err := engine.Restore("known-good")
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, report.Phase)
	assert.Equal(t, created.Ref.Name, report.Backup.Name)

	restored, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, original, restored, "restored content must match the backup byte for byte")
}

func TestRestore_AlwaysTakesSafetyBackup(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	target := installedTarget(t)

	_, err := store.Create(target, backup.CreateOptions{Name: "known-good"})
	require.NoError(t, err)

	// Capture the drifted state that the safety backup must preserve.
	settingsPath := filepath.Join(target, payload.SettingsFile)
	drifted := []byte(`{"drifted":true}`)
	require.NoError(t, os.WriteFile(settingsPath, drifted, 0o644))

	engine := NewEngine(store, target)
	report, err := engine.Restore("known-good")
	require.NoError(t, err)

	require.NotNil(t, report.SafetyBackup)
	assert.Contains(t, report.SafetyBackup.Name, "pre-restore-")

	saved, err := os.ReadFile(filepath.Join(report.SafetyBackup.Path,
		backup.ContentDirName, payload.SettingsFile))
	require.NoError(t, err)
	assert.Equal(t, drifted, saved, "safety backup must hold the pre-restore state")
}

func TestRestore_ArchiveFormBackup(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	target := installedTarget(t)

	_, err := store.Create(target, backup.CreateOptions{Name: "compressed", Compress: true})
	require.NoError(t, err)

	settingsPath := filepath.Join(target, payload.SettingsFile)
	original, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(settingsPath, []byte(`{"drifted":true}`), 0o644))

	engine := NewEngine(store, target)
	report, err := engine.Restore("compressed")
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, report.Phase)

	restored, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestRestore_PartialBackupRejected(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	target := installedTarget(t)

	created, err := store.Create(target, backup.CreateOptions{Name: "truncated"})
	require.NoError(t, err)

	// Gut the backup's content while leaving the manifest in place, the
	// shape an interruption between copy and manifest write cannot produce
	// but disk corruption can.
	contentDir := filepath.Join(created.Ref.Path, backup.ContentDirName)
	require.NoError(t, os.RemoveAll(contentDir))
	require.NoError(t, os.MkdirAll(contentDir, 0o755))

	marker, err := install.LoadMarker(target)
	require.NoError(t, err)

	engine := NewEngine(store, target)
	report, restoreErr := engine.Restore("truncated")
	require.ErrorIs(t, restoreErr, backup.ErrApplyFailed)
	require.NotNil(t, report.SafetyBackup, "safety backup is taken before content staging")

	// The target was never touched.
	after, err := install.LoadMarker(target)
	require.NoError(t, err)
	assert.Equal(t, marker.Version, after.Version)
	_, err = os.Stat(filepath.Join(target, payload.SettingsFile))
	assert.NoError(t, err)
}

func TestRestore_ValidationFailureIsWarningNotRollback(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	// A backup of pre-AWOC content: applying it produces a target that
	// fails validation.
	foreign := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(foreign, "notes.txt"), []byte("mine"), 0o644))
	_, err := store.Create(foreign, backup.CreateOptions{Name: "pre-awoc"})
	require.NoError(t, err)

	// Restoring it onto a bare target leaves no AWOC payload behind.
	target := t.TempDir()
	engine := NewEngine(store, target)

	report, err := engine.Restore("pre-awoc")
	require.NoError(t, err, "validation failure is not an operation failure")
	assert.Equal(t, PhaseWarning, report.Phase)
	assert.NotEmpty(t, report.Warnings)

	// The applied content stays applied.
	data, err := os.ReadFile(filepath.Join(target, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestRestore_RefreshesMarkerBackupPointer(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	target := installedTarget(t)

	_, err := store.Create(target, backup.CreateOptions{Name: "known-good"})
	require.NoError(t, err)

	engine := NewEngine(store, target)
	report, err := engine.Restore("known-good")
	require.NoError(t, err)
	require.NotNil(t, report.SafetyBackup)

	marker, err := install.LoadMarker(target)
	require.NoError(t, err)
	assert.Equal(t, report.SafetyBackup.Path, marker.BackupPath,
		"marker should point at the restore's own safety backup")
}
