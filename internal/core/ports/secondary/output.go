package secondary

import (
	"context"
	"io"

	"gitlab.com/agfdbk.net/internal/domain"
)

// OutputStore opens captured output and instructor files by name
type OutputStore interface {
	// Open returns errs.ErrOutputUnavailable when the file cannot be read.
	// A captured stream that is empty opens successfully with no content.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
}

// Differ compares expected output with actual output
type Differ interface {
	Diff(expected, actual []byte, opts domain.DiffOptions) (domain.DiffResult, error)
}
