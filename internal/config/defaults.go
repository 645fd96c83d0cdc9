package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# AWOC Configuration
# Priority: environment variables (AWOC_*) > project config (.awoc/config.yml)
# > user config (~/.config/awoc/config.yml) > defaults

# Installation settings
target_dir: ""                # Installation directory (empty = ~/.claude)

# Backup settings
backup_dir: ""                # Backup store root (empty = ~/.awoc/backups)
keep_count: 10                # Backups retained by 'awoc backup clean' (newest first)
compress: true                # Compress backups into .tar.gz archives

# Prompt settings
skip_confirmations: false     # Skip confirmation prompts (also AWOC_YES env var)
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		// target_dir: Installation directory for the AWOC payload.
		// Empty means the home-level default (~/.claude).
		"target_dir": "",
		// backup_dir: Root directory of the backup store.
		// Empty means ~/.awoc/backups.
		"backup_dir": "",
		// keep_count: Number of most-recent backups retained by retention
		// cleanup. One consistent policy everywhere: keep N newest.
		"keep_count": 10,
		// compress: Whether new backups are compressed into tar.gz archives.
		// Compression failure is non-fatal; the backup stays in directory form.
		"compress":           true,
		"skip_confirmations": false,
	}
}
