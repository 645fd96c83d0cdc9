package backup

import "errors"

// Sentinel errors for backup store operations. Callers match with errors.Is;
// all failures propagate as typed results, never silently swallowed. The only
// locally recovered case is ErrCompressionFailed, which degrades a backup to
// directory form and continues.
var (
	// ErrSourceUnavailable indicates the backup source root is missing or unreadable.
	ErrSourceUnavailable = errors.New("backup source unavailable")

	// ErrStoreUnwritable indicates the store root cannot be created or written.
	ErrStoreUnwritable = errors.New("backup store unwritable")

	// ErrDuplicateBackupName indicates a backup with the requested name already
	// exists. The store never silently overwrites; callers retry with a
	// disambiguating suffix.
	ErrDuplicateBackupName = errors.New("duplicate backup name")

	// ErrCompressionFailed indicates the archive step failed. Non-fatal: the
	// backup remains valid in uncompressed directory form.
	ErrCompressionFailed = errors.New("backup compression failed")

	// ErrAmbiguousBackupReference indicates a reference matched more than one backup.
	ErrAmbiguousBackupReference = errors.New("ambiguous backup reference")

	// ErrBackupNotFound indicates no backup matched a reference.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrApplyFailed indicates a partial or failed file copy while applying
	// backup content. The safety backup taken immediately prior is the remedy.
	ErrApplyFailed = errors.New("applying backup content failed")
)
