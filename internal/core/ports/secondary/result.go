package secondary

import (
	"context"

	"gitlab.com/agfdbk.net/internal/domain"
)

// ResultRepository reads live result rows written by the execution subsystem
type ResultRepository interface {
	// LoadSuiteResults retrieves the live suite -> case -> command result tree of a submission
	LoadSuiteResults(ctx context.Context, submissionID int64) ([]*domain.AGTestSuiteResultTree, error)

	// LoadMutationSuiteResults retrieves the mutation suite results of every
	// given submission in one round trip, keyed by submission id.
	LoadMutationSuiteResults(ctx context.Context, submissionIDs ...int64) (map[int64][]*domain.MutationTestSuiteResult, error)
}
