package secondary

import (
	"context"

	"gitlab.com/agfdbk.net/internal/domain"
)

// TestDefRepository loads test definitions
type TestDefRepository interface {
	// LoadProjectTests loads every suite (with cases and commands) and
	// mutation suite of a project in one batch.
	LoadProjectTests(ctx context.Context, projectID int64) (*domain.ProjectTests, error)
}
