package install

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/awoc-dev/awoc/internal/backup"
	"github.com/awoc-dev/awoc/internal/payload"
)

// UninstallResult reports an uninstall run.
type UninstallResult struct {
	// TargetRoot is the installation root that was cleaned.
	TargetRoot string
	// Removed lists the AWOC-owned paths that were deleted, relative to
	// the target root.
	Removed []string
	// RestoredOriginal is true when pre-AWOC content was restored from
	// the marker's recorded backup.
	RestoredOriginal bool
	// StorePurged is true when the backup store was deleted.
	StorePurged bool
	// Warnings lists non-fatal issues (stale backup pointer, leftover dirs).
	Warnings []string
}

// Uninstaller removes an AWOC installation. It deletes only files it can
// positively identify as AWOC-owned, never a recursive wipe of the target.
type Uninstaller struct {
	// Store is the backup store; purged when PreserveBackups is false.
	Store *backup.Store
	// TargetRoot is the installation root.
	TargetRoot string
	// PreserveBackups keeps the backup store for future reinstallation.
	PreserveBackups bool
	// RestoreOriginal restores pre-AWOC content from the marker's
	// recorded backup before deletion, when the pointer still resolves.
	RestoreOriginal bool
}

// DiscoverInstallations returns the candidate roots that carry a marker
// record. Used to find installations across home-level and project-level
// locations.
func DiscoverInstallations(candidates []string) []string {
	var found []string
	for _, root := range candidates {
		if MarkerExists(root) {
			found = append(found, root)
		}
	}
	return found
}

// Run removes the installation at TargetRoot.
func (u *Uninstaller) Run() (*UninstallResult, error) {
	result := &UninstallResult{TargetRoot: u.TargetRoot}

	if !MarkerExists(u.TargetRoot) {
		return result, fmt.Errorf("no AWOC installation found at %s", u.TargetRoot)
	}

	marker, err := LoadMarker(u.TargetRoot)
	if err != nil {
		return result, err
	}

	release, err := u.Store.AcquireLock("uninstall")
	if err != nil {
		return result, err
	}
	defer release()

	owned := marker.Files
	if len(owned) == 0 {
		// Marker predates file tracking; fall back to the embedded
		// payload's enumeration.
		owned, err = payload.Files()
		if err != nil {
			return result, err
		}
	}

	// Original content is restored before the removal pass, so the
	// owned-file removal is the final word: even when the recorded backup
	// is a snapshot of an earlier AWOC installation, its payload and
	// marker are swept away below and the target ends uninstalled.
	if u.RestoreOriginal {
		u.restoreOriginal(result, marker)
	}

	u.removeOwned(result, owned)

	if !u.PreserveBackups {
		if err := u.Store.Purge(); err != nil {
			return result, err
		}
		result.StorePurged = true
	}

	return result, nil
}

// removeOwned deletes the enumerated AWOC-owned files plus the marker, then
// prunes directories the removal emptied.
func (u *Uninstaller) removeOwned(result *UninstallResult, owned []string) {
	for _, rel := range owned {
		path := filepath.Join(u.TargetRoot, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("removing %s: %v", rel, err))
			}
			continue
		}
		result.Removed = append(result.Removed, rel)
	}

	if err := os.Remove(MarkerPath(u.TargetRoot)); err == nil {
		result.Removed = append(result.Removed, MarkerFileName)
	}

	u.pruneEmptyDirs(owned)
	sort.Strings(result.Removed)
}

// pruneEmptyDirs removes directories that held only AWOC-owned files.
// Deepest first so nested empties collapse; non-empty dirs are left alone.
func (u *Uninstaller) pruneEmptyDirs(owned []string) {
	dirSet := make(map[string]struct{})
	for _, rel := range owned {
		dir := filepath.Dir(filepath.FromSlash(rel))
		for dir != "." && dir != string(filepath.Separator) {
			dirSet[dir] = struct{}{}
			dir = filepath.Dir(dir)
		}
	}

	dirs := make([]string, 0, len(dirSet))
	for dir := range dirSet {
		dirs = append(dirs, dir)
	}
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) >
			strings.Count(dirs[j], string(filepath.Separator))
	})

	for _, dir := range dirs {
		// Remove fails on non-empty directories, which is exactly the
		// safety property wanted here.
		_ = os.Remove(filepath.Join(u.TargetRoot, dir))
	}
}

// restoreOriginal applies the pre-AWOC content recorded in the marker. Runs
// before the owned-file removal, which then deletes any AWOC-owned paths the
// snapshot brought back. The pointer is advisory: when it no longer resolves
// in the store (deleted by retention), this degrades to a warning.
func (u *Uninstaller) restoreOriginal(result *UninstallResult, marker *Marker) {
	if marker.BackupPath == "" {
		return
	}

	name := strings.TrimSuffix(filepath.Base(marker.BackupPath), backup.ArchiveExt)
	ref, err := u.Store.Resolve(name)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("recorded backup %s no longer exists, original content not restored", name))
		return
	}

	if err := u.applyBackup(ref); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("restoring original content from %s: %v", ref.Name, err))
		return
	}
	result.RestoredOriginal = true
}

// applyBackup copies a backup's content into the target, extracting
// archive-form backups through a temporary staging directory.
func (u *Uninstaller) applyBackup(ref backup.Ref) error {
	root := ref.Path
	if ref.Form == backup.FormArchive {
		staging, err := os.MkdirTemp("", "awoc-uninstall-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(staging)

		if err := backup.Extract(ref.Path, staging); err != nil {
			return err
		}
		root = staging
	}

	_, err := backup.CopyTree(filepath.Join(root, backup.ContentDirName), u.TargetRoot)
	return err
}
