package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// NameTimeFormat is the layout for generated backup names. Second-level
// resolution; same-second collisions are resolved by the caller retrying
// with a disambiguating suffix.
const NameTimeFormat = "20060102-150405"

// maxNameRetries bounds the suffix retry loop in CreateUnique.
const maxNameRetries = 9

// CreateOptions configures a backup creation.
type CreateOptions struct {
	// Name is the backup name. Empty generates one from the current
	// timestamp.
	Name string
	// Compress converts the backup to archive form after the copy.
	Compress bool
	// SourceVersion is recorded in the manifest (the installed awoc
	// version the backup was taken from).
	SourceVersion string
}

// CreateResult reports a successful backup creation.
type CreateResult struct {
	// Ref is the created backup.
	Ref Ref
	// Warnings lists non-fatal degradations (compression failure).
	Warnings []string
}

// GenerateName derives a backup name from a timestamp.
func GenerateName(t time.Time) string {
	return t.Format(NameTimeFormat)
}

// Create captures a new backup of sourceRoot in the store.
//
// Ordering: create the backup directory, copy all source files, then write
// the manifest, then optionally compress. The manifest is written only after
// the content copy succeeds, so an interrupted backup is manifest-less and
// invisible to resolution. On any copy failure the partial backup directory
// is removed so the store never holds partial backups.
func (s *Store) Create(sourceRoot string, opts CreateOptions) (*CreateResult, error) {
	info, err := os.Stat(sourceRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, sourceRoot)
	}

	if err := s.ensureRoot(); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = GenerateName(time.Now())
	}
	if s.exists(name) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateBackupName, name)
	}

	backupDir := filepath.Join(s.Root, name)
	contentDir := filepath.Join(backupDir, ContentDirName)
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnwritable, err)
	}

	files, err := CopyTree(sourceRoot, contentDir)
	if err != nil {
		os.RemoveAll(backupDir)
		return nil, classifyCopyError(sourceRoot, backupDir, err)
	}

	manifest := NewManifest(name, opts.SourceVersion)
	manifest.Files = files
	if err := manifest.Write(filepath.Join(backupDir, ManifestFileName)); err != nil {
		os.RemoveAll(backupDir)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnwritable, err)
	}

	result := &CreateResult{
		Ref: Ref{
			Name:      name,
			Form:      FormDirectory,
			Path:      backupDir,
			CreatedAt: manifest.CreatedAt,
			Manifest:  manifest,
		},
	}

	if opts.Compress {
		if ref, err := s.compressBackup(backupDir, name, manifest); err != nil {
			// Non-fatal: the backup stays valid in directory form.
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("compression failed, backup kept uncompressed: %v", err))
		} else {
			result.Ref = ref
		}
	}

	return result, nil
}

// compressBackup converts a directory-form backup to archive form. The
// uncompressed directory is removed only after the archive and its sidecar
// manifest are in place.
func (s *Store) compressBackup(backupDir, name string, manifest *Manifest) (Ref, error) {
	archivePath := filepath.Join(s.Root, name+ArchiveExt)

	if err := Compress(backupDir, archivePath); err != nil {
		return Ref{}, err
	}

	if err := manifest.Write(sidecarManifestPath(s.Root, name)); err != nil {
		// Without a sidecar the archive would be invisible to listing.
		os.Remove(archivePath)
		return Ref{}, fmt.Errorf("%w: writing sidecar manifest: %v", ErrCompressionFailed, err)
	}

	if err := os.RemoveAll(backupDir); err != nil {
		return Ref{}, fmt.Errorf("%w: removing staging directory: %v", ErrCompressionFailed, err)
	}

	return Ref{
		Name:      name,
		Form:      FormArchive,
		Path:      archivePath,
		CreatedAt: manifest.CreatedAt,
		Manifest:  manifest,
	}, nil
}

// CreateUnique creates a backup named baseName, retrying with -2..-9
// suffixes on a name collision. Used for safety backups where two operations
// within the same second must both succeed.
func (s *Store) CreateUnique(sourceRoot, baseName string, opts CreateOptions) (*CreateResult, error) {
	opts.Name = baseName
	result, err := s.Create(sourceRoot, opts)
	if err == nil || !isDuplicate(err) {
		return result, err
	}

	for i := 2; i <= maxNameRetries; i++ {
		opts.Name = fmt.Sprintf("%s-%d", baseName, i)
		result, err = s.Create(sourceRoot, opts)
		if err == nil || !isDuplicate(err) {
			return result, err
		}
	}
	return nil, err
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateBackupName)
}

// classifyCopyError maps a content-copy failure onto the store sentinels. An
// unwritable store (full disk, bad permissions under the root) and an
// unreadable source are different failures with different remedies.
func classifyCopyError(sourceRoot, backupDir string, err error) error {
	if errors.Is(err, errDestWrite) {
		return fmt.Errorf("%w: copying into %s: %v", ErrStoreUnwritable, backupDir, err)
	}
	return fmt.Errorf("%w: copying %s: %v", ErrSourceUnavailable, sourceRoot, err)
}
