package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/awoc/config.yml
// - macOS: ~/Library/Application Support/awoc/config.yml
// - Windows: %APPDATA%\awoc\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "awoc", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file.
// This is always .awoc/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".awoc", "config.yml")
}

// LegacyUserConfigPath returns the path to the legacy user-level JSON config
// file written by the shell-based installer: ~/.awoc/config.json
func LegacyUserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".awoc", "config.json"), nil
}

// DefaultStoreDir returns the default backup store root: ~/.awoc/backups
func DefaultStoreDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".awoc", "backups"), nil
}

// DefaultTargetDir returns the default installation target: ~/.claude
func DefaultTargetDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".claude"), nil
}
