package analyses

import "context"

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

// Repo defines persistence operations for analyses.
type Repo interface {
	// Create assigns an ID and creation time and stores the record.
	Create(ctx context.Context, analysis NewAnalysis) (Analysis, error)
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	// ListRecent returns up to limit analyses, newest first.
	ListRecent(ctx context.Context, limit int) ([]Analysis, error)
}

// ClampRecentLimit maps non-positive limits to the default and caps the rest.
func ClampRecentLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	}
	return limit
}
