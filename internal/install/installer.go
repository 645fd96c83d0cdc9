package install

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/awoc-dev/awoc/internal/backup"
	"github.com/awoc-dev/awoc/internal/payload"
)

// Result reports an install or upgrade run. It is returned non-nil even on
// failure so callers can always surface the safety backup identifier.
type Result struct {
	// TargetRoot is the installation root that was written.
	TargetRoot string
	// Upgrade is true when an existing installation was detected.
	Upgrade bool
	// SafetyBackup is the pre-install snapshot, taken unconditionally
	// whenever an existing installation is overwritten.
	SafetyBackup *backup.Ref
	// Deployed lists the payload paths written, relative to the target.
	Deployed []string
	// Marker is the marker record written on success.
	Marker *Marker
	// Warnings lists non-fatal degradations (safety-backup compression).
	Warnings []string
}

// Installer deploys the embedded payload into a target root, taking a
// safety backup first when an installation is already present.
type Installer struct {
	// Store is the backup store used for safety backups.
	Store *backup.Store
	// TargetRoot is the installation root.
	TargetRoot string
	// Version is recorded in the marker and backup manifests.
	Version string
	// Compress controls safety-backup compression.
	Compress bool
}

// Run installs or upgrades the AWOC payload at TargetRoot.
//
// When a marker is present the current state is backed up before any file is
// overwritten. There is no automatic rollback: if the post-install smoke
// check fails, the operation is reported as failed and the safety backup is
// the recovery path.
func (i *Installer) Run() (*Result, error) {
	result := &Result{
		TargetRoot: i.TargetRoot,
		Upgrade:    MarkerExists(i.TargetRoot),
	}

	release, err := i.Store.AcquireLock("install")
	if err != nil {
		return result, err
	}
	defer release()

	if result.Upgrade {
		if err := i.safetyBackup(result); err != nil {
			return result, err
		}
	}

	if err := os.MkdirAll(i.TargetRoot, 0o755); err != nil {
		return result, fmt.Errorf("creating target root: %w", err)
	}

	deployed, err := payload.Deploy(i.TargetRoot)
	result.Deployed = deployed
	if err != nil {
		return result, i.failWithRecovery(result, fmt.Errorf("deploying payload: %w", err))
	}

	marker := &Marker{
		SchemaVersion: SchemaVersion,
		Version:       i.Version,
		InstalledAt:   time.Now().UTC(),
		Files:         deployed,
	}
	if result.SafetyBackup != nil {
		marker.BackupPath = result.SafetyBackup.Path
	}
	if err := marker.Save(i.TargetRoot); err != nil {
		return result, i.failWithRecovery(result, fmt.Errorf("writing marker: %w", err))
	}
	result.Marker = marker

	if err := i.smokeCheck(); err != nil {
		return result, i.failWithRecovery(result, err)
	}

	return result, nil
}

// safetyBackup snapshots the existing installation before the upgrade
// overwrites it.
func (i *Installer) safetyBackup(result *Result) error {
	version := ""
	if m, err := LoadMarker(i.TargetRoot); err == nil {
		version = m.Version
	}

	baseName := "pre-install-" + backup.GenerateName(time.Now())
	created, err := i.Store.CreateUnique(i.TargetRoot, baseName, backup.CreateOptions{
		Compress:      i.Compress,
		SourceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("creating safety backup: %w", err)
	}

	result.SafetyBackup = &created.Ref
	result.Warnings = append(result.Warnings, created.Warnings...)
	return nil
}

// smokeCheck confirms the marker exists and the designated entry point is
// executable after the copy. Anything less means the whole operation failed.
func (i *Installer) smokeCheck() error {
	if !MarkerExists(i.TargetRoot) {
		return fmt.Errorf("smoke check failed: marker missing after install")
	}

	entry := filepath.Join(i.TargetRoot, filepath.FromSlash(payload.EntryPoint))
	info, err := os.Stat(entry)
	if err != nil {
		return fmt.Errorf("smoke check failed: entry point %s missing", payload.EntryPoint)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("smoke check failed: entry point %s is not executable", payload.EntryPoint)
	}
	return nil
}

// failWithRecovery decorates a fatal install error with the retained safety
// backup, so the user-visible remedy is always self-describing.
func (i *Installer) failWithRecovery(result *Result, err error) error {
	if result.SafetyBackup != nil {
		return fmt.Errorf("%w (recover with: awoc restore %s)", err, result.SafetyBackup.Name)
	}
	return err
}
