package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// errDestWrite marks copy failures on the destination side (full disk,
// unwritable store), as opposed to an unreadable source. Callers classify
// with errors.Is.
var errDestWrite = errors.New("writing to copy destination")

// CopyTree copies the file tree rooted at srcDir into destDir, preserving
// file modes and creating directories as needed. Returns the sorted list of
// copied file paths relative to srcDir. Symlinks and special files are
// skipped; backup payloads contain only regular files.
func CopyTree(srcDir, destDir string) ([]string, error) {
	var copied []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		dest := filepath.Join(destDir, rel)
		if d.IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("%w: %v", errDestWrite, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if err := copyFile(path, dest); err != nil {
			return err
		}
		copied = append(copied, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("copying tree: %w", err)
	}
	sort.Strings(copied)
	return copied, nil
}

// copyFile copies a single regular file, preserving its mode. Source-side
// failures pass through untouched; destination-side failures carry the
// errDestWrite mark.
func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: %v", errDestWrite, err)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: %v", errDestWrite, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: %v", errDestWrite, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", errDestWrite, err)
	}
	// OpenFile does not update the mode of a pre-existing file.
	if err := os.Chmod(dest, info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: %v", errDestWrite, err)
	}
	return nil
}
