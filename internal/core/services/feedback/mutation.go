package feedback

import (
	"context"
	"fmt"
	"io"

	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

// MutationSuiteView is what one viewer may see of a mutation test suite result
type MutationSuiteView struct {
	deps   *Deps
	result *domain.MutationTestSuiteResult
	def    *domain.MutationTestSuite
	config domain.MutationTestSuiteFdbkConfig
}

func newMutationSuiteView(
	deps *Deps,
	result *domain.MutationTestSuiteResult,
	def *domain.MutationTestSuite,
	category domain.FdbkCategory,
) (*MutationSuiteView, error) {
	config, err := def.FdbkConfig(category)
	if err != nil {
		return nil, err
	}
	return &MutationSuiteView{deps: deps, result: result, def: def, config: config}, nil
}

func (v *MutationSuiteView) PK() int64 {
	return v.result.ID
}

func (v *MutationSuiteView) SuiteID() int64 {
	return v.def.ID
}

func (v *MutationSuiteView) Name() string {
	return v.def.Name
}

func (v *MutationSuiteView) Order() int {
	return v.def.Order
}

func (v *MutationSuiteView) Deferred() bool {
	return v.def.Deferred
}

func (v *MutationSuiteView) Visible() bool {
	return v.config.Visible
}

func (v *MutationSuiteView) FdbkConfig() domain.MutationTestSuiteFdbkConfig {
	return v.config
}

func (v *MutationSuiteView) HasSetupCommand() bool {
	return v.def.SetupCmdName != ""
}

func (v *MutationSuiteView) showAnySetup() bool {
	return v.config.ShowSetupReturnCode || v.config.ShowSetupStdout || v.config.ShowSetupStderr
}

func (v *MutationSuiteView) SetupCommandName() *string {
	if !v.HasSetupCommand() || !v.showAnySetup() {
		return nil
	}
	name := v.def.SetupCmdName
	return &name
}

func (v *MutationSuiteView) SetupReturnCode() *int {
	if !v.config.ShowSetupReturnCode {
		return nil
	}
	return v.result.SetupReturnCode
}

// SetupTimedOut follows the return code setting
func (v *MutationSuiteView) SetupTimedOut() *bool {
	if !v.config.ShowSetupReturnCode {
		return nil
	}
	timedOut := v.result.SetupTimedOut
	return &timedOut
}

func (v *MutationSuiteView) SetupOutput(ctx context.Context, stream domain.OutputStream) (io.ReadCloser, error) {
	show, filename := v.config.ShowSetupStdout, v.result.SetupStdoutFilename
	if stream == domain.OutputStderr {
		show, filename = v.config.ShowSetupStderr, v.result.SetupStderrFilename
	}
	if !show {
		return nil, fmt.Errorf("%w: setup %s of mutation suite result %d", errs.ErrNotVisible, stream, v.PK())
	}
	return openOutput(ctx, v.deps, filename)
}

func (v *MutationSuiteView) InvalidTests() []string {
	if !v.config.ShowInvalidTestNames {
		return nil
	}
	return v.result.InvalidTests
}

func (v *MutationSuiteView) TimedOutTests() []string {
	if !v.config.ShowInvalidTestNames {
		return nil
	}
	return v.result.TimedOutTests
}

func (v *MutationSuiteView) NumBugsExposed() *int {
	if !v.config.BugsExposedFdbkLevel.AtLeast(domain.BugsExposedNumBugsExposed) {
		return nil
	}
	n := len(v.result.BugsExposed)
	return &n
}

func (v *MutationSuiteView) BugsExposed() []string {
	if !v.config.BugsExposedFdbkLevel.AtLeast(domain.BugsExposedExposedBugNames) {
		return nil
	}
	return v.result.BugsExposed
}

// AllBugNames lists every buggy implementation at the all_bug_names level
func (v *MutationSuiteView) AllBugNames() []string {
	if !v.config.BugsExposedFdbkLevel.AtLeast(domain.BugsExposedAllBugNames) {
		return nil
	}
	return v.def.BuggyImplNames
}

func (v *MutationSuiteView) showPoints() bool {
	return v.config.ShowPoints && v.config.BugsExposedFdbkLevel.AtLeast(domain.BugsExposedNumBugsExposed)
}

func (v *MutationSuiteView) TotalPoints() int {
	if !v.showPoints() {
		return 0
	}
	points := len(v.result.BugsExposed) * v.def.PointsPerExposedBug
	if v.def.MaxPoints != nil && points > *v.def.MaxPoints {
		return *v.def.MaxPoints
	}
	return points
}

func (v *MutationSuiteView) TotalPointsPossible() int {
	if !v.showPoints() {
		return 0
	}
	if v.def.MaxPoints != nil {
		return *v.def.MaxPoints
	}
	return len(v.def.BuggyImplNames) * v.def.PointsPerExposedBug
}
