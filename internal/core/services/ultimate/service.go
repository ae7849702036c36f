package ultimate

import (
	"context"

	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/domain"
)

// UltimateSubmission pairs a group with the view of the submission that
// counts for it. View is nil when the group has no finished submission.
type UltimateSubmission struct {
	Group *domain.Group
	View  *feedback.SubmissionView
}

type IUltimateService interface {
	// GetUltimateSubmission returns the submission that counts for a group,
	// or for one member of it when username is set. Nil means none.
	GetUltimateSubmission(ctx context.Context, groupID int64, username string) (*feedback.SubmissionView, error)

	// GetUltimateSubmissions resolves many groups of a project at once, in
	// input order. No group ids means every group of the project.
	GetUltimateSubmissions(ctx context.Context, projectID int64, groupIDs ...int64) ([]UltimateSubmission, error)
}

// Evaluator builds feedback views of many submissions at once
type Evaluator interface {
	EvaluateMany(ctx context.Context, projectID int64, subs []*domain.Submission, category domain.FdbkCategory) ([]*feedback.SubmissionView, error)
}
