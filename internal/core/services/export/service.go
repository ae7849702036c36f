package export

import (
	"context"
	"io"
)

// ProgressFunc is told how many of total rows have been written
type ProgressFunc func(done, total int)

type IExportService interface {
	// WriteUltimateScoresCSV writes one row per group that has an ultimate
	// submission, scored under max feedback.
	WriteUltimateScoresCSV(ctx context.Context, w io.Writer, projectID int64, progress ProgressFunc) error
}

// Progress is a completion percentage. Nothing to do counts as done.
func Progress(done, total int) int {
	if total <= 0 {
		return 100
	}
	if done >= total {
		return 100
	}
	return done * 100 / total
}
