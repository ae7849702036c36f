package domain

import (
	"fmt"

	"gitlab.com/agfdbk.net/internal/static/errs"
)

// FdbkCategory is the viewer context a feedback request is evaluated under
type FdbkCategory string

const (
	FdbkCategoryNormal              FdbkCategory = "normal"
	FdbkCategoryUltimateSubmission  FdbkCategory = "ultimate_submission"
	FdbkCategoryPastLimitSubmission FdbkCategory = "past_limit_submission"
	FdbkCategoryStaffViewer         FdbkCategory = "staff_viewer"
	FdbkCategoryMax                 FdbkCategory = "max"
)

// ParseFdbkCategory converts a raw string into a FdbkCategory.
// Anything outside the closed set of five values is rejected.
func ParseFdbkCategory(raw string) (FdbkCategory, error) {
	c := FdbkCategory(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", errs.ErrUnknownFeedbackCategory, raw)
	}
	return c, nil
}

func (c FdbkCategory) Valid() bool {
	switch c {
	case FdbkCategoryNormal,
		FdbkCategoryUltimateSubmission,
		FdbkCategoryPastLimitSubmission,
		FdbkCategoryStaffViewer,
		FdbkCategoryMax:
		return true
	default:
		return false
	}
}

func (c FdbkCategory) String() string {
	return string(c)
}
