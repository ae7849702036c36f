package secondary

import (
	"context"
	"time"

	"gitlab.com/agfdbk.net/internal/domain"
)

// FeedbackCache stores serialized feedback keyed by (project, submission, category)
type FeedbackCache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, projectID, submissionID int64, category domain.FdbkCategory) ([]byte, bool, error)

	Set(ctx context.Context, projectID, submissionID int64, category domain.FdbkCategory, value []byte, ttl time.Duration) error

	// Delete drops every cached category of one submission
	Delete(ctx context.Context, projectID, submissionID int64) error

	// ClearProject drops every entry of one project and leaves other projects untouched
	ClearProject(ctx context.Context, projectID int64) error
}
