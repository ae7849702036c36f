package feedback

import (
	"context"
	"fmt"
	"io"
	"sort"

	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

// SuiteView is what one viewer may see of a test suite result
type SuiteView struct {
	deps   *Deps
	result SuiteResultNode
	def    *domain.AGTestSuite
	config domain.AGTestSuiteFdbkConfig

	// visible case views ordered by case order
	cases []*CaseView
}

func newSuiteView(
	deps *Deps,
	result SuiteResultNode,
	def *domain.AGTestSuite,
	category domain.FdbkCategory,
) (*SuiteView, error) {
	config, err := def.FdbkConfig(category)
	if err != nil {
		return nil, err
	}

	type resolved struct {
		result CaseResultNode
		def    *domain.AGTestCase
	}
	var caseResults []resolved
	for _, cr := range result.CaseResults() {
		caseDef, ok := deps.Lookup.Case(cr.CaseID())
		if !ok || caseDef.SuiteID != def.ID {
			continue
		}
		caseResults = append(caseResults, resolved{cr, caseDef})
	}
	sort.SliceStable(caseResults, func(i, j int) bool {
		a, b := caseResults[i].def, caseResults[j].def
		return lessByOrder(a.Order, a.ID, b.Order, b.ID)
	})

	view := &SuiteView{
		deps:   deps,
		result: result,
		def:    def,
		config: config,
	}
	for _, cr := range caseResults {
		caseView, err := newCaseView(deps, cr.result, cr.def, category, false)
		if err != nil {
			return nil, err
		}
		if caseView.Visible() {
			view.cases = append(view.cases, caseView)
		}
	}

	if category != domain.FdbkCategoryNormal {
		return view, nil
	}

	// Only the first failed case is rebuilt; the flag never changes a
	// case's own visibility, so the visible set stays the same.
	for i, first := range firstFailureFlags(view.cases) {
		if !first {
			continue
		}
		c := view.cases[i]
		rebuilt, err := newCaseView(deps, c.result, c.def, category, true)
		if err != nil {
			return nil, err
		}
		view.cases[i] = rebuilt
	}
	return view, nil
}

// firstFailureFlags marks the first case in order whose points fall short
// of its possible points. At most one flag is set.
func firstFailureFlags(cases []*CaseView) []bool {
	flags := make([]bool, len(cases))
	found := false
	for i, c := range cases {
		if !found && c.failed() {
			flags[i] = true
			found = true
		}
	}
	return flags
}

func (v *SuiteView) PK() int64 {
	return v.result.PK()
}

func (v *SuiteView) SuiteID() int64 {
	return v.def.ID
}

func (v *SuiteView) Name() string {
	return v.def.Name
}

func (v *SuiteView) Order() int {
	return v.def.Order
}

func (v *SuiteView) Deferred() bool {
	return v.def.Deferred
}

func (v *SuiteView) Visible() bool {
	return v.config.Visible
}

func (v *SuiteView) FdbkConfig() domain.AGTestSuiteFdbkConfig {
	return v.config
}

// SetupName is shown when any setup field is shown
func (v *SuiteView) SetupName() *string {
	if !v.config.ShowSetupReturnCode && !v.config.ShowSetupTimedOut &&
		!v.config.ShowSetupStdout && !v.config.ShowSetupStderr {
		return nil
	}
	name := v.def.SetupCmdName
	return &name
}

func (v *SuiteView) SetupReturnCode() *int {
	if !v.config.ShowSetupReturnCode {
		return nil
	}
	return v.result.SetupReturnCode()
}

func (v *SuiteView) SetupTimedOut() *bool {
	if !v.config.ShowSetupTimedOut {
		return nil
	}
	timedOut := v.result.SetupTimedOut()
	return &timedOut
}

func (v *SuiteView) showSetupOutput(stream domain.OutputStream) bool {
	if stream == domain.OutputStderr {
		return v.config.ShowSetupStderr
	}
	return v.config.ShowSetupStdout
}

// SetupOutput opens the captured setup stream, if this viewer may read it
func (v *SuiteView) SetupOutput(ctx context.Context, stream domain.OutputStream) (io.ReadCloser, error) {
	if !v.showSetupOutput(stream) {
		return nil, fmt.Errorf("%w: setup %s of suite result %d", errs.ErrNotVisible, stream, v.PK())
	}
	return openOutput(ctx, v.deps, v.result.SetupOutput(stream).Filename)
}

// CaseResults is empty when individual tests are hidden
func (v *SuiteView) CaseResults() []*CaseView {
	if !v.config.ShowIndividualTests {
		return []*CaseView{}
	}
	return v.cases
}

func (v *SuiteView) TotalPoints() int {
	total := 0
	for _, c := range v.cases {
		total += c.TotalPoints()
	}
	return total
}

func (v *SuiteView) TotalPointsPossible() int {
	total := 0
	for _, c := range v.cases {
		total += c.TotalPointsPossible()
	}
	return total
}
