// Package config provides hierarchical configuration management for awoc using koanf.
// Configuration is loaded with priority: environment variables > project config (.awoc/config.yml)
// > user config (~/.config/awoc/config.yml) > defaults. The legacy JSON config written by the
// shell-based installer (~/.awoc/config.json) still loads, with a deprecation warning.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration represents the awoc CLI tool configuration
type Configuration struct {
	// TargetDir is the installation directory for the AWOC payload.
	// Empty means the home-level default (~/.claude).
	// Can be set via AWOC_TARGET_DIR env var.
	TargetDir string `koanf:"target_dir"`

	// BackupDir is the root directory of the backup store.
	// Empty means ~/.awoc/backups. Can be set via AWOC_BACKUP_DIR env var.
	BackupDir string `koanf:"backup_dir"`

	// KeepCount is the number of most-recent backups retained by retention
	// cleanup. Can be set via AWOC_KEEP_COUNT env var.
	KeepCount int `koanf:"keep_count"`

	// Compress controls whether new backups are compressed into tar.gz
	// archives. Compression failure degrades to directory form.
	Compress bool `koanf:"compress"`

	// SkipConfirmations skips confirmation prompts (can also be set via
	// the AWOC_YES env var).
	SkipConfirmations bool `koanf:"skip_confirmations"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .awoc/config.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if err := loadUserConfig(k, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}
}

// loadUserConfig loads user-level config (YAML preferred, legacy JSON supported).
// Priority: YAML (~/.config/awoc/config.yml) > JSON (~/.awoc/config.json).
// Warns if only the legacy JSON written by the shell installer exists.
func loadUserConfig(k *koanf.Koanf, warningWriter io.Writer, skipWarnings bool) error {
	userYAMLPath, _ := UserConfigPath()
	legacyUserPath, _ := LegacyUserConfigPath()

	if fileExists(userYAMLPath) {
		if err := k.Load(file.Provider(userYAMLPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading user config %s: %w", userYAMLPath, err)
		}
		return nil
	}

	if fileExists(legacyUserPath) {
		if err := k.Load(file.Provider(legacyUserPath), json.Parser()); err != nil {
			return fmt.Errorf("loading legacy user config %s: %w", legacyUserPath, err)
		}
		if !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", legacyUserPath)
			fmt.Fprintf(warningWriter, "  Move settings to %s to silence this warning.\n\n", userYAMLPath)
		}
	}
	return nil
}

// loadProjectConfig loads project-level config.
// Supports custom path override (for testing).
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	projectPath := ProjectConfigPath()
	if customPath != "" {
		projectPath = customPath
	}

	if !fileExists(projectPath) {
		return nil
	}

	if err := k.Load(file.Provider(projectPath), yaml.Parser()); err != nil {
		return fmt.Errorf("loading project config %s: %w", projectPath, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("AWOC_", ".", envTransform), nil); err != nil {
		return fmt.Errorf("loading environment config: %w", err)
	}
	return nil
}

// envTransform maps AWOC_TARGET_DIR to target_dir and so on.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "AWOC_"))
}

// finalizeConfig unmarshals and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.KeepCount < 1 {
		return nil, fmt.Errorf("keep_count must be at least 1, got %d", cfg.KeepCount)
	}

	cfg.TargetDir = expandHomePath(cfg.TargetDir)
	cfg.BackupDir = expandHomePath(cfg.BackupDir)

	if os.Getenv("AWOC_YES") != "" {
		cfg.SkipConfirmations = true
	}

	return &cfg, nil
}

// ResolveTargetDir returns the configured target directory, falling back to
// the home-level default.
func (c *Configuration) ResolveTargetDir() (string, error) {
	if c.TargetDir != "" {
		return c.TargetDir, nil
	}
	return DefaultTargetDir()
}

// ResolveBackupDir returns the configured backup store root, falling back to
// the default store location.
func (c *Configuration) ResolveBackupDir() (string, error) {
	if c.BackupDir != "" {
		return c.BackupDir, nil
	}
	return DefaultStoreDir()
}

// expandHomePath expands a leading ~ to the user home directory.
func expandHomePath(path string) string {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
