// Package install implements the AWOC install, upgrade, and uninstall
// coordinators, plus the per-installation marker record they maintain.
package install

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the current version of the marker schema.
// Increment this when making breaking changes to the schema.
const SchemaVersion = "1.0.0"

// MarkerFileName is the marker record written at the installation root.
// Its presence is what identifies a directory as an AWOC installation.
const MarkerFileName = ".awoc.yml"

// Marker is the per-installation metadata record. It is read and rewritten
// on every install, upgrade, and restore.
//
// BackupPath is a weak back-reference: the backup store's own listing is the
// source of truth for what exists, and the pointer can go stale when
// retention deletes the referenced backup. Consumers treat it as advisory.
type Marker struct {
	// SchemaVersion is the marker schema version for future compatibility.
	SchemaVersion string `yaml:"schema_version"`

	// Version is the awoc version that produced the installation.
	Version string `yaml:"version"`

	// InstalledAt is when the installation was last written.
	InstalledAt time.Time `yaml:"installed_at"`

	// BackupPath points at the safety backup taken before the last
	// overwrite, if one was made. Advisory; may be stale.
	BackupPath string `yaml:"backup_path,omitempty"`

	// Files lists the AWOC-owned paths inside the installation, relative
	// to its root. Uninstall removes exactly this set, never more.
	Files []string `yaml:"files"`
}

// MarkerPath returns the marker path for an installation root.
func MarkerPath(targetRoot string) string {
	return filepath.Join(targetRoot, MarkerFileName)
}

// MarkerExists checks whether targetRoot carries a marker record.
func MarkerExists(targetRoot string) bool {
	_, err := os.Stat(MarkerPath(targetRoot))
	return err == nil
}

// LoadMarker reads and parses the marker at targetRoot.
// Returns an error if the file doesn't exist or is invalid YAML.
func LoadMarker(targetRoot string) (*Marker, error) {
	data, err := os.ReadFile(MarkerPath(targetRoot))
	if err != nil {
		return nil, fmt.Errorf("reading marker: %w", err)
	}

	var m Marker
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing marker YAML: %w", err)
	}
	return &m, nil
}

// Save writes the marker to targetRoot atomically.
func (m *Marker) Save(targetRoot string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling marker: %w", err)
	}

	path := MarkerPath(targetRoot)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp marker: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp marker: %w", err)
	}
	return nil
}
