package receipt

import (
	"context"

	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/domain"
)

// IReceiptService produces submission summaries whose text can later be
// proven to be what was sent.
type IReceiptService interface {
	// RenderSummary lists the scores of non-deferred suites
	RenderSummary(view *feedback.SubmissionView) string

	// RenderAndSign returns the text with a nonce and token appended, plus
	// the token on its own.
	RenderAndSign(text string) (string, string, error)

	// Verify recovers the signed text. Any tampering reports false.
	Verify(token string) (bool, string)

	// SubmissionReceipt evaluates a submission under normal feedback and signs its summary
	SubmissionReceipt(ctx context.Context, submissionID int64) (string, string, error)
}

// Evaluator is the slice of the feedback service receipts need
type Evaluator interface {
	Evaluate(ctx context.Context, submissionID int64, category domain.FdbkCategory) (*feedback.SubmissionView, error)
}
