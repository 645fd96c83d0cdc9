// Package payload holds the embedded AWOC configuration payload: agent
// prompts, slash-command templates, the session hook script, and the settings
// file. The embedded file set is the authoritative enumeration of AWOC-owned
// paths inside an installation; install and uninstall operate only on it.
package payload

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// assetsFS embeds the deployable payload. Paths inside the installation
// target mirror the layout under assets/.
//
//go:embed all:assets
var assetsFS embed.FS

const assetsRoot = "assets"

// EntryPoint is the hook script whose executable bit the post-install smoke
// check verifies.
const EntryPoint = "hooks/awoc-prime.sh"

// SettingsFile is the opaque JSON settings blob; the validator only checks
// that it parses.
const SettingsFile = "settings.json"

// Files returns the sorted list of payload paths, relative to the
// installation target root.
func Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(assetsFS, assetsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(path, assetsRoot+"/")
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking embedded payload: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile returns the content of a payload file by its target-relative path.
func ReadFile(rel string) ([]byte, error) {
	return assetsFS.ReadFile(assetsRoot + "/" + rel)
}

// Deploy copies the embedded payload into targetRoot, creating directories as
// needed. Hook scripts are written 0755, everything else 0644. Returns the
// list of deployed target-relative paths.
func Deploy(targetRoot string) ([]string, error) {
	files, err := Files()
	if err != nil {
		return nil, err
	}

	var deployed []string
	for _, rel := range files {
		data, err := ReadFile(rel)
		if err != nil {
			return deployed, fmt.Errorf("reading embedded %s: %w", rel, err)
		}

		dest := filepath.Join(targetRoot, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return deployed, fmt.Errorf("creating directory for %s: %w", rel, err)
		}

		mode := os.FileMode(0o644)
		if isExecutable(rel) {
			mode = 0o755
		}
		if err := os.WriteFile(dest, data, mode); err != nil {
			return deployed, fmt.Errorf("writing %s: %w", rel, err)
		}
		// WriteFile does not update the mode of a pre-existing file.
		if err := os.Chmod(dest, mode); err != nil {
			return deployed, fmt.Errorf("setting mode on %s: %w", rel, err)
		}
		deployed = append(deployed, rel)
	}
	return deployed, nil
}

// isExecutable reports whether a payload path must carry the executable bit.
func isExecutable(rel string) bool {
	return strings.HasPrefix(rel, "hooks/") && strings.HasSuffix(rel, ".sh")
}
