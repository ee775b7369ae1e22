package reorg

import (
	"fmt"
	"strings"
)

// ValidationError rejects a plan before anything is touched.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reorganization plan: %s", strings.Join(e.Issues, "; "))
}

// StagingError reports a failure while copying sources out. Staged copies
// have been removed and the registry is untouched.
type StagingError struct {
	RunID string
	Err   error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("reorganization %s: staging: %v", e.RunID, e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }

// CommitError reports a failure while writing destinations or swapping the
// registry. Destinations have been rolled back and the registry is untouched.
// Rollback failures are joined into Err.
type CommitError struct {
	RunID string
	Phase string
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("reorganization %s: %s: %v", e.RunID, e.Phase, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
