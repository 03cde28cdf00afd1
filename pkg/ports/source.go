package ports

import "context"

// TreeSource defines how the service retrieves raw log-tree payloads.
type TreeSource interface {
	// Fetch returns the raw JSON payload of the run's log tree.
	// Returns domain.ErrRunNotFound if the source has no tree for the run.
	Fetch(ctx context.Context, runID int64) ([]byte, error)
}
