package ultimate

import (
	"gitlab.com/agfdbk.net/internal/domain"
)

// SelectMostRecent picks the latest submission, the highest id on equal
// timestamps. It returns nil for no submissions.
func SelectMostRecent(subs []*domain.Submission) *domain.Submission {
	var best *domain.Submission
	for _, s := range subs {
		if best == nil || s.Timestamp.After(best.Timestamp) ||
			(s.Timestamp.Equal(best.Timestamp) && s.ID > best.ID) {
			best = s
		}
	}
	return best
}

// SelectBest picks the submission with the most points. Ties go to the
// earliest created submission: earliest timestamp, then lowest id.
func SelectBest(subs []*domain.Submission, points map[int64]int) *domain.Submission {
	var best *domain.Submission
	for _, s := range subs {
		if best == nil || points[s.ID] > points[best.ID] ||
			(points[s.ID] == points[best.ID] && createdBefore(s, best)) {
			best = s
		}
	}
	return best
}

func createdBefore(a, b *domain.Submission) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

// CountingFor returns the submissions that may count for username.
// The input slice is left untouched.
func CountingFor(subs []*domain.Submission, username string) []*domain.Submission {
	out := make([]*domain.Submission, 0, len(subs))
	for _, s := range subs {
		if s.CountsFor(username) {
			out = append(out, s)
		}
	}
	return out
}
