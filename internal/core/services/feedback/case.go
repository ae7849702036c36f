package feedback

import (
	"sort"

	"gitlab.com/agfdbk.net/internal/domain"
)

// CaseView is what one viewer may see of a test case result
type CaseView struct {
	result         CaseResultNode
	def            *domain.AGTestCase
	config         domain.AGTestCaseFdbkConfig
	isFirstFailure bool

	// visible command views ordered by command order
	commands []*CommandView
}

func newCaseView(
	deps *Deps,
	result CaseResultNode,
	def *domain.AGTestCase,
	category domain.FdbkCategory,
	isFirstFailure bool,
) (*CaseView, error) {
	config, err := def.FdbkConfig(category)
	if err != nil {
		return nil, err
	}

	view := &CaseView{
		result:         result,
		def:            def,
		config:         config,
		isFirstFailure: isFirstFailure,
	}

	for _, cmdResult := range result.CommandResults() {
		cmd, ok := deps.Lookup.Command(cmdResult.CommandID())
		if !ok || cmd.CaseID != def.ID {
			// definition removed since the result was recorded
			continue
		}
		cmdView, err := newCommandView(deps, cmdResult, cmd, category, isFirstFailure)
		if err != nil {
			return nil, err
		}
		if cmdView.Visible() {
			view.commands = append(view.commands, cmdView)
		}
	}

	sort.SliceStable(view.commands, func(i, j int) bool {
		a, b := view.commands[i], view.commands[j]
		return lessByOrder(a.Order(), a.CommandID(), b.Order(), b.CommandID())
	})

	return view, nil
}

func (v *CaseView) PK() int64 {
	return v.result.PK()
}

func (v *CaseView) CaseID() int64 {
	return v.def.ID
}

func (v *CaseView) Name() string {
	return v.def.Name
}

func (v *CaseView) Order() int {
	return v.def.Order
}

func (v *CaseView) Visible() bool {
	return v.config.Visible
}

func (v *CaseView) FdbkConfig() domain.AGTestCaseFdbkConfig {
	return v.config
}

// IsFirstFailure reports whether this case was evaluated as the first
// failed case of its suite under normal feedback.
func (v *CaseView) IsFirstFailure() bool {
	return v.isFirstFailure
}

// CommandResults is empty when individual commands are hidden
func (v *CaseView) CommandResults() []*CommandView {
	if !v.config.ShowIndividualCommands {
		return []*CommandView{}
	}
	return v.commands
}

// TotalPoints never goes below zero
func (v *CaseView) TotalPoints() int {
	total := 0
	for _, cmd := range v.commands {
		total += cmd.TotalPoints()
	}
	if total < 0 {
		return 0
	}
	return total
}

func (v *CaseView) TotalPointsPossible() int {
	total := 0
	for _, cmd := range v.commands {
		total += cmd.TotalPointsPossible()
	}
	return total
}

func (v *CaseView) failed() bool {
	return v.TotalPoints() < v.TotalPointsPossible()
}
