package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

// LockFileName is the advisory lock file at the store root.
const LockFileName = ".lock"

// StoreLock is the advisory lock preventing two mutating operations from
// corrupting the same store. Reads (list) do not require it.
type StoreLock struct {
	// PID is the process ID holding the lock.
	PID int `yaml:"pid"`
	// Operation names the mutating operation holding the lock.
	Operation string `yaml:"operation"`
	// AcquiredAt is when the lock was acquired.
	AcquiredAt time.Time `yaml:"acquired_at"`
}

// lockPath returns the store's lock file path.
func (s *Store) lockPath() string {
	return filepath.Join(s.Root, LockFileName)
}

// AcquireLock takes the store lock for a mutating operation and returns a
// release function. Release runs on all exit paths via defer. A live lock
// held by another process is an error; a stale lock (holder no longer
// running) is cleaned up and re-acquired.
func (s *Store) AcquireLock(operation string) (func(), error) {
	if err := s.ensureRoot(); err != nil {
		return nil, err
	}

	if existing, err := s.loadLock(); err != nil {
		return nil, err
	} else if existing != nil {
		if isProcessRunning(existing.PID) {
			return nil, fmt.Errorf("store is locked by %s (PID %d) since %s",
				existing.Operation, existing.PID, existing.AcquiredAt.Format(time.RFC3339))
		}
		// Stale lock from a dead process.
		if err := os.Remove(s.lockPath()); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale lock: %w", err)
		}
	}

	lock := &StoreLock{
		PID:        os.Getpid(),
		Operation:  operation,
		AcquiredAt: time.Now(),
	}
	if err := s.writeLock(lock); err != nil {
		return nil, err
	}

	return func() {
		_ = os.Remove(s.lockPath())
	}, nil
}

// loadLock reads the lock file. Returns nil with no error if absent.
func (s *Store) loadLock() (*StoreLock, error) {
	data, err := os.ReadFile(s.lockPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading lock file: %w", err)
	}

	var lock StoreLock
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}
	return &lock, nil
}

// writeLock writes the lock file atomically.
func (s *Store) writeLock(lock *StoreLock) error {
	data, err := yaml.Marshal(lock)
	if err != nil {
		return fmt.Errorf("marshaling lock: %w", err)
	}

	lockPath := s.lockPath()
	tmpPath := lockPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp lock file: %w", err)
	}
	if err := os.Rename(tmpPath, lockPath); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp lock file: %w", err)
	}
	return nil
}

// isProcessRunning checks if a process with the given PID exists.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds. Send signal 0 to check existence.
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
