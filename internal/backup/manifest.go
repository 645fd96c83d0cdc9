package backup

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"time"

	git "github.com/go-git/go-git/v5"
	"gopkg.in/yaml.v3"
)

// ManifestFileName is the metadata file written inside every backup.
const ManifestFileName = "manifest.yml"

// Manifest is the metadata record written for every backup. Once written it
// is never mutated in place.
type Manifest struct {
	// Name is the backup's unique name within its store.
	Name string `yaml:"name"`

	// CreatedAt is when the backup was created.
	CreatedAt time.Time `yaml:"created_at"`

	// SourceVersion is the awoc version that produced the backup.
	SourceVersion string `yaml:"source_version"`

	// System identifies the host (GOOS/hostname).
	System string `yaml:"system"`

	// User is the invoking OS user.
	User string `yaml:"user"`

	// WorkingDirectory is where the backup was requested from.
	WorkingDirectory string `yaml:"working_directory"`

	// Commit is the HEAD short hash of the working directory, when it is
	// inside a git work tree. Provenance only; empty otherwise.
	Commit string `yaml:"commit,omitempty"`

	// Files lists the copied paths, relative to the backup's content root.
	Files []string `yaml:"files"`
}

// NewManifest builds a manifest for a backup created now, capturing host,
// user, and working-directory provenance.
func NewManifest(name, sourceVersion string) *Manifest {
	m := &Manifest{
		Name:          name,
		CreatedAt:     time.Now().UTC(),
		SourceVersion: sourceVersion,
		System:        hostSystem(),
		User:          currentUser(),
	}
	if wd, err := os.Getwd(); err == nil {
		m.WorkingDirectory = wd
		m.Commit = headCommit(wd)
	}
	return m
}

// Write saves the manifest to path atomically (tmp + rename). The manifest is
// written only after the backup's content copy has succeeded, so a manifest
// never claims content that isn't there.
func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp manifest: %w", err)
	}
	return nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// hostSystem returns a GOOS/hostname identifier for the manifest.
func hostSystem() string {
	host, err := os.Hostname()
	if err != nil {
		return runtime.GOOS
	}
	return runtime.GOOS + "/" + host
}

// currentUser returns the invoking username, falling back to $USER.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// headCommit returns the short HEAD hash when dir is inside a git work tree,
// or empty when it is not. Uses go-git so no git CLI is required.
func headCommit(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	hash := head.Hash().String()
	if len(hash) > 7 {
		hash = hash[:7]
	}
	return hash
}

// sidecarManifestPath returns the sidecar manifest path for an archive-form
// backup, so listing never has to decompress.
func sidecarManifestPath(storeRoot, name string) string {
	return filepath.Join(storeRoot, name+".manifest.yml")
}
