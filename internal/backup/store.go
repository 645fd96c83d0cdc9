// Package backup implements the awoc backup store: immutable-once-written
// snapshots of an installation, stored as directories or tar.gz archives
// under a single store root, with YAML manifests, retention cleanup, and an
// advisory store lock.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Form is the storage form of a backup.
type Form string

const (
	// FormDirectory is an uncompressed backup directory.
	FormDirectory Form = "directory"
	// FormArchive is a compressed tar.gz backup.
	FormArchive Form = "compressed-archive"
)

// ContentDirName is the subdirectory holding the copied files inside a
// backup (and inside an extracted archive).
const ContentDirName = "files"

// Ref identifies a concrete backup in a store.
type Ref struct {
	// Name is the backup's unique name within the store.
	Name string
	// Form is directory or compressed-archive.
	Form Form
	// Path is the backup directory or archive file.
	Path string
	// CreatedAt is the creation time recorded in the manifest.
	CreatedAt time.Time
	// Manifest is the parsed backup manifest.
	Manifest *Manifest
}

// Store is the collection of all backups under a root directory.
// Invariant: the store never contains two backups with the same name.
type Store struct {
	// Root is the store's root directory.
	Root string
}

// NewStore returns a Store rooted at root. The root is created lazily on the
// first backup operation.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// List enumerates all backups in the store, newest first. Partial backups
// (a directory without a manifest, an archive without a sidecar manifest)
// are invisible: they never completed and must not resolve.
func (s *Store) List() ([]Ref, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading store root: %w", err)
	}

	var refs []Ref
	for _, entry := range entries {
		ref, ok := s.refFromEntry(entry.Name(), entry.IsDir())
		if ok {
			refs = append(refs, ref)
		}
	}

	// Newest first; name breaks creation-time ties deterministically.
	sort.Slice(refs, func(i, j int) bool {
		if !refs[i].CreatedAt.Equal(refs[j].CreatedAt) {
			return refs[i].CreatedAt.After(refs[j].CreatedAt)
		}
		return refs[i].Name > refs[j].Name
	})
	return refs, nil
}

// refFromEntry builds a Ref from a store directory entry, if it is a
// complete backup.
func (s *Store) refFromEntry(name string, isDir bool) (Ref, bool) {
	if strings.HasPrefix(name, ".") {
		return Ref{}, false
	}

	if isDir {
		manifestPath := filepath.Join(s.Root, name, ManifestFileName)
		m, err := LoadManifest(manifestPath)
		if err != nil {
			return Ref{}, false
		}
		return Ref{
			Name:      name,
			Form:      FormDirectory,
			Path:      filepath.Join(s.Root, name),
			CreatedAt: m.CreatedAt,
			Manifest:  m,
		}, true
	}

	if !strings.HasSuffix(name, ArchiveExt) {
		return Ref{}, false
	}
	backupName := strings.TrimSuffix(name, ArchiveExt)
	m, err := LoadManifest(sidecarManifestPath(s.Root, backupName))
	if err != nil {
		return Ref{}, false
	}
	return Ref{
		Name:      backupName,
		Form:      FormArchive,
		Path:      filepath.Join(s.Root, name),
		CreatedAt: m.CreatedAt,
		Manifest:  m,
	}, true
}

// Resolve locates a backup by reference: exact name first, then unique name
// prefix, then unique substring (date-only references). More than one
// candidate is an error rather than a guess.
func (s *Store) Resolve(ref string) (Ref, error) {
	refs, err := s.List()
	if err != nil {
		return Ref{}, err
	}

	for _, r := range refs {
		if r.Name == ref {
			return r, nil
		}
	}

	if match, err := matchOne(refs, ref, strings.HasPrefix); err != nil || match != nil {
		if err != nil {
			return Ref{}, err
		}
		return *match, nil
	}

	if match, err := matchOne(refs, ref, strings.Contains); err != nil || match != nil {
		if err != nil {
			return Ref{}, err
		}
		return *match, nil
	}

	return Ref{}, fmt.Errorf("%w: %q", ErrBackupNotFound, ref)
}

// matchOne applies a match predicate and enforces uniqueness.
func matchOne(refs []Ref, ref string, match func(name, ref string) bool) (*Ref, error) {
	var candidates []Ref
	for _, r := range refs {
		if match(r.Name, ref) {
			candidates = append(candidates, r)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return &candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Name
		}
		return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguousBackupReference,
			ref, strings.Join(names, ", "))
	}
}

// Delete removes a backup and its auxiliary files (sidecar manifest, pin)
// from the store.
func (s *Store) Delete(ref Ref) error {
	if err := os.RemoveAll(ref.Path); err != nil {
		return fmt.Errorf("deleting backup %s: %w", ref.Name, err)
	}
	if ref.Form == FormArchive {
		if err := os.Remove(sidecarManifestPath(s.Root, ref.Name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting sidecar manifest for %s: %w", ref.Name, err)
		}
	}
	if err := os.Remove(s.pinPath(ref.Name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting pin for %s: %w", ref.Name, err)
	}
	return nil
}

// Purge removes the entire store directory. Used by uninstall --purge-backups.
func (s *Store) Purge() error {
	if err := os.RemoveAll(s.Root); err != nil {
		return fmt.Errorf("purging store: %w", err)
	}
	return nil
}

// Pin marks a backup as in use by an in-flight restore so retention cleanup
// will not delete it. The marker is transient; Unpin removes it.
func (s *Store) Pin(name string) error {
	if err := os.WriteFile(s.pinPath(name), nil, 0o644); err != nil {
		return fmt.Errorf("pinning backup %s: %w", name, err)
	}
	return nil
}

// Unpin removes a backup's pin marker.
func (s *Store) Unpin(name string) {
	_ = os.Remove(s.pinPath(name))
}

// IsPinned reports whether a backup carries a pin marker.
func (s *Store) IsPinned(name string) bool {
	_, err := os.Stat(s.pinPath(name))
	return err == nil
}

func (s *Store) pinPath(name string) string {
	return filepath.Join(s.Root, "."+name+".pin")
}

// ensureRoot creates the store root if needed.
func (s *Store) ensureRoot() error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnwritable, err)
	}
	return nil
}

// exists reports whether a backup with the given name already exists in any
// form, including partial ones that never completed.
func (s *Store) exists(name string) bool {
	if _, err := os.Stat(filepath.Join(s.Root, name)); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(s.Root, name+ArchiveExt)); err == nil {
		return true
	}
	return false
}
