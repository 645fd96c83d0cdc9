// Package restore implements the restore engine: it resolves a backup
// reference, takes an unconditional safety backup of the current target,
// stages archive-form backups, applies the backup content over the
// installation, and runs post-restore validation.
//
// There is no automatic rollback. Restore is the highest-risk operation in
// the system, so recovery is always a second explicit operation: restore
// again, pointing at the safety backup this run created.
package restore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/awoc-dev/awoc/internal/backup"
	"github.com/awoc-dev/awoc/internal/install"
	"github.com/awoc-dev/awoc/internal/validate"
)

// Phase is a state of the restore state machine.
type Phase string

const (
	PhaseResolving     Phase = "resolving"
	PhaseSafetyBackup  Phase = "safety-backup"
	PhaseDecompressing Phase = "decompressing"
	PhaseApplying      Phase = "applying"
	PhaseValidating    Phase = "validating"
	PhaseDone          Phase = "done"
	// PhaseAborted is the terminal state for failures before any
	// destructive write. The installation and store are unchanged except
	// for the safety backup, once taken.
	PhaseAborted Phase = "aborted"
	// PhaseWarning is the terminal state when the restore applied but
	// post-restore validation reported issues.
	PhaseWarning Phase = "warning"
)

// Report is the outcome of a restore run.
type Report struct {
	// Backup is the resolved source backup.
	Backup backup.Ref
	// SafetyBackup is the pre-restore snapshot of the target, once taken.
	SafetyBackup *backup.Ref
	// Phase is the terminal phase the run reached.
	Phase Phase
	// Validation is the post-restore validator report, when reached.
	Validation *validate.Report
	// Warnings lists non-fatal issues (validation messages, degraded
	// safety-backup compression).
	Warnings []string
}

// Engine performs restore transactions against one target installation.
type Engine struct {
	store         *backup.Store
	targetRoot    string
	sourceVersion string
	compress      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCompression controls whether the safety backup is compressed.
func WithCompression(compress bool) Option {
	return func(e *Engine) {
		e.compress = compress
	}
}

// WithSourceVersion sets the version recorded in the safety backup manifest.
func WithSourceVersion(version string) Option {
	return func(e *Engine) {
		e.sourceVersion = version
	}
}

// NewEngine creates an Engine restoring into targetRoot from store.
func NewEngine(store *backup.Store, targetRoot string, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		targetRoot: targetRoot,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore runs the restore state machine for the given backup reference.
// The returned report is non-nil even on failure, so callers can always
// surface the safety backup identifier.
func (e *Engine) Restore(refStr string) (*Report, error) {
	report := &Report{Phase: PhaseResolving}

	// Resolving: failure here is the only exit that creates no backup.
	ref, err := e.store.Resolve(refStr)
	if err != nil {
		report.Phase = PhaseAborted
		return report, err
	}
	report.Backup = ref

	release, err := e.store.AcquireLock("restore")
	if err != nil {
		report.Phase = PhaseAborted
		return report, err
	}
	defer release()

	// Pin the source so retention cleanup cannot delete it mid-restore.
	if err := e.store.Pin(ref.Name); err != nil {
		report.Phase = PhaseAborted
		return report, err
	}
	defer e.store.Unpin(ref.Name)

	if err := e.safetyBackup(report); err != nil {
		report.Phase = PhaseAborted
		return report, err
	}

	contentDir, cleanup, err := e.stageContent(report, ref)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return report, err
	}

	if err := e.apply(report, contentDir); err != nil {
		return report, err
	}

	e.validateTarget(report)
	return report, nil
}

// safetyBackup captures the current target state before any destructive
// write. Unconditional and not skippable.
func (e *Engine) safetyBackup(report *Report) error {
	report.Phase = PhaseSafetyBackup

	// The target may not exist yet (restore onto a fresh machine); an
	// empty snapshot is still a valid recovery point.
	if err := os.MkdirAll(e.targetRoot, 0o755); err != nil {
		return fmt.Errorf("preparing target root: %w", err)
	}

	version := e.sourceVersion
	if m, err := install.LoadMarker(e.targetRoot); err == nil && m.Version != "" {
		version = m.Version
	}

	baseName := "pre-restore-" + backup.GenerateName(time.Now())
	result, err := e.store.CreateUnique(e.targetRoot, baseName, backup.CreateOptions{
		Compress:      e.compress,
		SourceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("creating safety backup: %w", err)
	}

	report.SafetyBackup = &result.Ref
	report.Warnings = append(report.Warnings, result.Warnings...)
	return nil
}

// stageContent locates the backup's content directory, extracting
// archive-form backups into a temporary staging directory first. Extraction
// failure aborts before the target is touched. A backup whose manifest
// claims files that are not present is reported as partial.
func (e *Engine) stageContent(report *Report, ref backup.Ref) (string, func(), error) {
	cleanup := func() {}
	root := ref.Path

	if ref.Form == backup.FormArchive {
		report.Phase = PhaseDecompressing

		staging, err := os.MkdirTemp("", "awoc-restore-")
		if err != nil {
			report.Phase = PhaseAborted
			return "", cleanup, fmt.Errorf("creating staging directory: %w", err)
		}
		cleanup = func() { os.RemoveAll(staging) }

		if err := backup.Extract(ref.Path, staging); err != nil {
			report.Phase = PhaseAborted
			return "", cleanup, fmt.Errorf("extracting backup %s: %w", ref.Name, err)
		}
		root = staging
	}

	contentDir := filepath.Join(root, backup.ContentDirName)
	if err := verifyContent(ref, contentDir); err != nil {
		report.Phase = PhaseApplying
		return "", cleanup, err
	}
	return contentDir, cleanup, nil
}

// verifyContent rejects partial backups: a manifest listing files whose
// content directory is missing or empty must never apply as an empty target.
func verifyContent(ref backup.Ref, contentDir string) error {
	if len(ref.Manifest.Files) == 0 {
		return nil
	}
	entries, err := os.ReadDir(contentDir)
	if err != nil || len(entries) == 0 {
		return fmt.Errorf("%w: backup %s has a manifest listing %d files but no content",
			backup.ErrApplyFailed, ref.Name, len(ref.Manifest.Files))
	}
	return nil
}

// apply overwrites the target with the staged content. This is the only
// step permitted to mutate the installation.
func (e *Engine) apply(report *Report, contentDir string) error {
	report.Phase = PhaseApplying

	if _, err := backup.CopyTree(contentDir, e.targetRoot); err != nil {
		return fmt.Errorf("%w: %v", backup.ErrApplyFailed, err)
	}

	e.refreshMarker(report)
	return nil
}

// refreshMarker updates the restored marker's timestamp and backup pointer.
// A backup of pre-AWOC content has no marker; none is invented for it.
func (e *Engine) refreshMarker(report *Report) {
	if !install.MarkerExists(e.targetRoot) {
		return
	}
	m, err := install.LoadMarker(e.targetRoot)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("restored marker unreadable, left as-is: %v", err))
		return
	}
	m.InstalledAt = time.Now().UTC()
	if report.SafetyBackup != nil {
		m.BackupPath = report.SafetyBackup.Path
	}
	if err := m.Save(e.targetRoot); err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("refreshing marker: %v", err))
	}
}

// validateTarget runs the external validator. Its result is attached to the
// report, never used to trigger automatic rollback.
func (e *Engine) validateTarget(report *Report) {
	report.Phase = PhaseValidating

	v, err := validate.Run(e.targetRoot)
	if err != nil {
		report.Phase = PhaseWarning
		report.Warnings = append(report.Warnings, fmt.Sprintf("validation did not run: %v", err))
		return
	}

	report.Validation = v
	if !v.Passed {
		report.Phase = PhaseWarning
		report.Warnings = append(report.Warnings, v.Messages()...)
		return
	}
	report.Phase = PhaseDone
}
