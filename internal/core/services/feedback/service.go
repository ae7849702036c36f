package feedback

import (
	"context"
	"io"

	"gitlab.com/agfdbk.net/internal/domain"
)

// IFeedbackService is the entry point the web layer evaluates feedback through
type IFeedbackService interface {
	// Evaluate builds the feedback tree of a submission from its snapshot
	Evaluate(ctx context.Context, submissionID int64, category domain.FdbkCategory) (*SubmissionView, error)

	// EvaluateLive builds the feedback tree from live result rows
	EvaluateLive(ctx context.Context, submissionID int64, category domain.FdbkCategory) (*SubmissionView, error)

	// EvaluateMany builds the trees of many submissions of one project with
	// one definition prefetch and one mutation result batch.
	EvaluateMany(ctx context.Context, projectID int64, subs []*domain.Submission, category domain.FdbkCategory) ([]*SubmissionView, error)

	// FeedbackJSON returns the wire form, cached for normal feedback when
	// the submission can no longer change.
	FeedbackJSON(ctx context.Context, submissionID int64, category domain.FdbkCategory) ([]byte, error)

	RebuildSnapshot(ctx context.Context, submissionID int64) (*domain.Submission, error)

	// TransitionStatus updates a submission's status and invalidates its cached feedback
	TransitionStatus(ctx context.Context, submissionID int64, status domain.SubmissionStatus) error
	FinishGrading(ctx context.Context, submissionID int64) error
	ClearProjectCache(ctx context.Context, projectID int64) error

	CommandOutput(ctx context.Context, submissionID int64, category domain.FdbkCategory, cmdResultID int64, stream domain.OutputStream) (io.ReadCloser, error)
	CommandDiff(ctx context.Context, submissionID int64, category domain.FdbkCategory, cmdResultID int64, stream domain.OutputStream) (domain.DiffResult, error)
	SuiteSetupOutput(ctx context.Context, submissionID int64, category domain.FdbkCategory, suiteResultID int64, stream domain.OutputStream) (io.ReadCloser, error)
	MutationSuiteSetupOutput(ctx context.Context, submissionID int64, category domain.FdbkCategory, suiteResultID int64, stream domain.OutputStream) (io.ReadCloser, error)
}
