package feedback

import (
	"fmt"
	"sort"

	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

// Deps are the collaborators a feedback tree reads through
type Deps struct {
	Lookup *TestLookup
	Store  secondary.OutputStore
	Differ secondary.Differ
}

// SubmissionView is the whole feedback tree of one submission under one category
type SubmissionView struct {
	submission *domain.Submission
	category   domain.FdbkCategory

	suites         []*SuiteView
	mutationSuites []*MutationSuiteView
}

// NewSubmissionView evaluates suite result nodes and mutation suite results
// under category. Results whose definitions no longer exist are skipped;
// configuration errors abort the whole evaluation.
func NewSubmissionView(
	submission *domain.Submission,
	suiteResults []SuiteResultNode,
	mutationResults []*domain.MutationTestSuiteResult,
	category domain.FdbkCategory,
	deps Deps,
) (*SubmissionView, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownFeedbackCategory, category)
	}
	if deps.Lookup == nil {
		return nil, fmt.Errorf("feedback evaluation needs a test lookup")
	}

	view := &SubmissionView{submission: submission, category: category}
	d := &deps

	for _, sr := range suiteResults {
		def, ok := d.Lookup.Suite(sr.SuiteID())
		if !ok {
			continue
		}
		suiteView, err := newSuiteView(d, sr, def, category)
		if err != nil {
			return nil, fmt.Errorf("suite result %d: %w", sr.PK(), err)
		}
		if suiteView.Visible() {
			view.suites = append(view.suites, suiteView)
		}
	}
	sort.SliceStable(view.suites, func(i, j int) bool {
		a, b := view.suites[i], view.suites[j]
		return lessByOrder(a.Order(), a.SuiteID(), b.Order(), b.SuiteID())
	})

	for _, mr := range mutationResults {
		def, ok := d.Lookup.MutationSuite(mr.SuiteID)
		if !ok {
			continue
		}
		msView, err := newMutationSuiteView(d, mr, def, category)
		if err != nil {
			return nil, fmt.Errorf("mutation suite result %d: %w", mr.ID, err)
		}
		if msView.Visible() {
			view.mutationSuites = append(view.mutationSuites, msView)
		}
	}
	sort.SliceStable(view.mutationSuites, func(i, j int) bool {
		a, b := view.mutationSuites[i], view.mutationSuites[j]
		return lessByOrder(a.Order(), a.SuiteID(), b.Order(), b.SuiteID())
	})

	return view, nil
}

// SuiteNodes returns the nodes to evaluate a submission from: the
// denormalized snapshot when one was captured, otherwise live rows.
func SuiteNodes(sub *domain.Submission, live []*domain.AGTestSuiteResultTree) []SuiteResultNode {
	if sub.DenormalizedAGTestResults != nil {
		return SnapshotSuiteNodes(sub.DenormalizedAGTestResults)
	}
	return LiveSuiteNodes(live)
}

func (v *SubmissionView) PK() int64 {
	return v.submission.ID
}

func (v *SubmissionView) Submission() *domain.Submission {
	return v.submission
}

func (v *SubmissionView) Category() domain.FdbkCategory {
	return v.category
}

// SuiteResults are the visible suites by order
func (v *SubmissionView) SuiteResults() []*SuiteView {
	return v.suites
}

// MutationSuiteResults are the visible mutation suites by order
func (v *SubmissionView) MutationSuiteResults() []*MutationSuiteView {
	return v.mutationSuites
}

func (v *SubmissionView) TotalPoints() int {
	total := 0
	for _, s := range v.suites {
		total += s.TotalPoints()
	}
	for _, ms := range v.mutationSuites {
		total += ms.TotalPoints()
	}
	return total
}

func (v *SubmissionView) TotalPointsPossible() int {
	total := 0
	for _, s := range v.suites {
		total += s.TotalPointsPossible()
	}
	for _, ms := range v.mutationSuites {
		total += ms.TotalPointsPossible()
	}
	return total
}

// SuiteResult finds a visible suite by result pk
func (v *SubmissionView) SuiteResult(pk int64) (*SuiteView, bool) {
	for _, s := range v.suites {
		if s.PK() == pk {
			return s, true
		}
	}
	return nil, false
}

func (v *SubmissionView) MutationSuiteResult(pk int64) (*MutationSuiteView, bool) {
	for _, ms := range v.mutationSuites {
		if ms.PK() == pk {
			return ms, true
		}
	}
	return nil, false
}

// CommandResult finds a command result by pk among the commands this viewer
// is shown individually.
func (v *SubmissionView) CommandResult(pk int64) (*CommandView, bool) {
	for _, s := range v.suites {
		for _, c := range s.CaseResults() {
			for _, cmd := range c.CommandResults() {
				if cmd.PK() == pk {
					return cmd, true
				}
			}
		}
	}
	return nil, false
}
