package backup

// RetentionResult contains the outcome of a retention cleanup.
type RetentionResult struct {
	// Removed is the list of backups that were deleted, oldest last.
	Removed []Ref
	// Kept is the list of backups that survived, newest first.
	Kept []Ref
	// Errors maps backup name to error message for any deletion failures.
	Errors map[string]string
}

// EnforceRetention keeps the keep most recently created backups and deletes
// the rest. Pinned backups (a restore holds them in flight) are never
// deleted, regardless of age. Re-running on an already-compliant store
// removes nothing.
func (s *Store) EnforceRetention(keep int) (*RetentionResult, error) {
	refs, err := s.List()
	if err != nil {
		return nil, err
	}

	result := &RetentionResult{
		Removed: make([]Ref, 0),
		Kept:    make([]Ref, 0),
		Errors:  make(map[string]string),
	}

	for i, ref := range refs {
		if i < keep || s.IsPinned(ref.Name) {
			result.Kept = append(result.Kept, ref)
			continue
		}
		if err := s.Delete(ref); err != nil {
			result.Errors[ref.Name] = err.Error()
			result.Kept = append(result.Kept, ref)
			continue
		}
		result.Removed = append(result.Removed, ref)
	}

	return result, nil
}
