package domain

import (
	"fmt"

	"gitlab.com/agfdbk.net/internal/static/errs"
)

// UltimateSubmissionPolicy decides which finished submission of a group counts
type UltimateSubmissionPolicy string

const (
	UltimatePolicyMostRecent UltimateSubmissionPolicy = "most_recent"
	UltimatePolicyBest       UltimateSubmissionPolicy = "best"

	// Deprecated: scheduled for removal, kept for projects still configured with it.
	UltimatePolicyBestWithNormalFdbk UltimateSubmissionPolicy = "best_with_normal_fdbk"
)

// ScoringCategory is the feedback category a best-style policy maximises
func (p UltimateSubmissionPolicy) ScoringCategory() (FdbkCategory, error) {
	switch p {
	case UltimatePolicyBest:
		return FdbkCategoryMax, nil
	case UltimatePolicyBestWithNormalFdbk:
		return FdbkCategoryNormal, nil
	default:
		return "", fmt.Errorf("%w: %q has no scoring category", errs.ErrUnknownUltimatePolicy, p)
	}
}

// Project owns test definitions and groups
type Project struct {
	ID             int64                    `db:"id"`
	Name           string                   `db:"name"`
	MaxGroupSize   int                      `db:"max_group_size"`
	UltimatePolicy UltimateSubmissionPolicy `db:"ultimate_submission_policy"`
}

// Group is a set of students submitting together
type Group struct {
	ID          int64    `db:"id"`
	ProjectID   int64    `db:"project_id"`
	MemberNames []string `db:"-"`
}
