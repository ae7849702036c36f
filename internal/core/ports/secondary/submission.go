package secondary

import (
	"context"

	"gitlab.com/agfdbk.net/internal/domain"
)

type SubmissionRepository interface {
	// GetSubmission retrieves a submission including its denormalized snapshot.
	// Returns errs.ErrNotFound when it does not exist.
	GetSubmission(ctx context.Context, submissionID int64) (*domain.Submission, error)

	GetProject(ctx context.Context, projectID int64) (*domain.Project, error)

	GetGroup(ctx context.Context, groupID int64) (*domain.Group, error)

	// GetGroups retrieves groups by id in the given order.
	// If no ids are given, every group of the project is returned.
	GetGroups(ctx context.Context, projectID int64, groupIDs ...int64) ([]*domain.Group, error)

	// ListFinishedByGroups retrieves the finished_grading submissions of all
	// given groups in a single round trip, keyed by group id.
	ListFinishedByGroups(ctx context.Context, groupIDs []int64) (map[int64][]*domain.Submission, error)

	UpdateStatus(ctx context.Context, submissionID int64, status domain.SubmissionStatus) error

	// RebuildSnapshot recaptures the denormalized snapshot from live result
	// rows while holding a write lock on the submission row.
	RebuildSnapshot(ctx context.Context, submissionID int64) (*domain.Submission, error)
}
