// Package backup tests the advisory store lock: acquisition, contention, and
// stale-lock cleanup.
// Related: internal/backup/lock.go
// Tags: backup, lock, concurrency

package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAcquireLock_AndRelease(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "store"))

	release, err := store.AcquireLock("install")
	require.NoError(t, err)

	_, err = os.Stat(store.lockPath())
	assert.NoError(t, err, "lock file should exist while held")

	release()

	_, err = os.Stat(store.lockPath())
	assert.True(t, os.IsNotExist(err), "lock file should be removed on release")
}

func TestAcquireLock_HeldByLiveProcess(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "store"))

	release, err := store.AcquireLock("restore")
	require.NoError(t, err)
	defer release()

	// Our own PID is alive, so the second acquisition must fail.
	_, err = store.AcquireLock("install")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked by restore")
}

func TestAcquireLock_StaleLockCleanedUp(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, os.MkdirAll(store.Root, 0o755))

	// A lock left behind by a process that no longer exists.
	stale := StoreLock{
		PID:        1 << 22, // beyond the default Linux pid_max
		Operation:  "install",
		AcquiredAt: time.Now().Add(-time.Hour),
	}
	data, err := yaml.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.lockPath(), data, 0o644))

	release, err := store.AcquireLock("restore")
	require.NoError(t, err, "stale lock should be cleaned up and re-acquired")
	release()
}

func TestAcquireLock_ReacquireAfterRelease(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "store"))

	release, err := store.AcquireLock("backup create")
	require.NoError(t, err)
	release()

	release, err = store.AcquireLock("backup clean")
	require.NoError(t, err)
	release()
}
