// Package backup tests retention cleanup: keep-N semantics, idempotence, and
// pinned-backup protection.
// Related: internal/backup/retention.go
// Tags: backup, retention, cleanup

package backup

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refNames(refs []Ref) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}

func TestEnforceRetention_KeepsMostRecent(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "store"))
	seedStore(t, store, "b1", "b2", "b3", "b4", "b5")

	result, err := store.EnforceRetention(3)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	assert.ElementsMatch(t, []string{"b1", "b2"}, refNames(result.Removed))
	assert.Equal(t, []string{"b5", "b4", "b3"}, refNames(result.Kept))

	refs, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b5", "b4", "b3"}, refNames(refs))
}

func TestEnforceRetention_Idempotent(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "store"))
	seedStore(t, store, "b1", "b2", "b3", "b4", "b5")

	_, err := store.EnforceRetention(3)
	require.NoError(t, err)

	second, err := store.EnforceRetention(3)
	require.NoError(t, err)
	assert.Empty(t, second.Removed, "re-running on a compliant store must remove nothing")
	assert.Len(t, second.Kept, 3)
}

func TestEnforceRetention_PinnedBackupSurvives(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "store"))
	seedStore(t, store, "b1", "b2", "b3", "b4", "b5")
	require.NoError(t, store.Pin("b1"))

	result, err := store.EnforceRetention(3)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"b2"}, refNames(result.Removed))
	assert.Contains(t, refNames(result.Kept), "b1", "pinned backup must survive retention")
}

func TestEnforceRetention_UnderLimit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "store"))
	seedStore(t, store, "b1", "b2")

	result, err := store.EnforceRetention(10)
	require.NoError(t, err)
	assert.Empty(t, result.Removed)
	assert.Len(t, result.Kept, 2)
}
