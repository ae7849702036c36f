package feedback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

var allCategories = []domain.FdbkCategory{
	domain.FdbkCategoryNormal,
	domain.FdbkCategoryUltimateSubmission,
	domain.FdbkCategoryPastLimitSubmission,
	domain.FdbkCategoryStaffViewer,
	domain.FdbkCategoryMax,
}

func TestCaseTotalNeverNegative(t *testing.T) {
	b := newBuilder(1)
	s := b.suite("suite", 0)
	c := b.testCase(s, "case", 0)
	for i, deduction := range []int{-4, -2, -1} {
		cmd := b.command(c, "cmd", i, false)
		cmd.def.ExpectedReturnCode = domain.ExpectedReturnCodeNone
		cmd.def.PointsForCorrectStdout = 0
		cmd.def.DeductionForWrongStdout = deduction
	}

	view, err := b.evaluate(domain.FdbkCategoryMax)
	require.NoError(t, err)

	caseView := view.SuiteResults()[0].CaseResults()[0]
	cmds := caseView.CommandResults()
	require.Len(t, cmds, 3)
	assert.Equal(t, -4, cmds[0].TotalPoints())
	assert.Equal(t, -2, cmds[1].TotalPoints())
	assert.Equal(t, -1, cmds[2].TotalPoints())

	assert.Equal(t, 0, caseView.TotalPoints())
	assert.Equal(t, 0, caseView.TotalPointsPossible())
	assert.Equal(t, 0, view.TotalPoints())
}

func TestCommandOrderFollowsOrderField(t *testing.T) {
	b := newBuilder(1)
	s := b.suite("suite", 0)
	c := b.testCase(s, "case", 0)
	a := b.command(c, "a", 0, true)
	bb := b.command(c, "b", 1, true)

	pks := func() []int64 {
		view, err := b.evaluate(domain.FdbkCategoryMax)
		require.NoError(t, err)
		return commandPKs(view.SuiteResults()[0].CaseResults()[0])
	}

	assert.Equal(t, []int64{a.result.ID, bb.result.ID}, pks())

	a.def.Order, bb.def.Order = 1, 0
	assert.Equal(t, []int64{bb.result.ID, a.result.ID}, pks())
	assert.Equal(t, []int64{bb.result.ID, a.result.ID}, pks())

	a.def.Order, bb.def.Order = 0, 1
	assert.Equal(t, []int64{a.result.ID, bb.result.ID}, pks())
}

func TestSuitesAndCasesOrderedByOrderField(t *testing.T) {
	b := newBuilder(1)
	second := b.suite("second", 5)
	first := b.suite("first", 1)
	c2 := b.testCase(first, "c2", 2)
	c1 := b.testCase(first, "c1", 1)
	b.command(c1, "x", 0, true)
	b.command(c2, "y", 0, true)
	b.command(b.testCase(second, "c", 0), "z", 0, true)

	view, err := b.evaluate(domain.FdbkCategoryMax)
	require.NoError(t, err)

	suites := view.SuiteResults()
	require.Len(t, suites, 2)
	assert.Equal(t, "first", suites[0].Name())
	assert.Equal(t, "second", suites[1].Name())

	cases := suites[0].CaseResults()
	require.Len(t, cases, 2)
	assert.Equal(t, c1.result.ID, cases[0].PK())
	assert.Equal(t, c2.result.ID, cases[1].PK())
}

func threeCaseSuite(b *builder, passes ...bool) (suitePair, []commandPair) {
	s := b.suite("suite", 0)
	var cmds []commandPair
	for i, passed := range passes {
		c := b.testCase(s, "case", i)
		cmds = append(cmds, b.command(c, "cmd", 0, passed))
	}
	return s, cmds
}

func firstFailureMask(v *SuiteView) []bool {
	var mask []bool
	for _, c := range v.CaseResults() {
		mask = append(mask, c.IsFirstFailure())
	}
	return mask
}

func TestFirstFailureMarksExactlyOneCase(t *testing.T) {
	b := newBuilder(1)
	threeCaseSuite(b, true, false, true)

	for i := 0; i < 3; i++ {
		view, err := b.evaluate(domain.FdbkCategoryNormal)
		require.NoError(t, err)
		assert.Equal(t, []bool{false, true, false}, firstFailureMask(view.SuiteResults()[0]))
	}
}

func TestFirstFailureOnlyFirstOfSeveralFailures(t *testing.T) {
	b := newBuilder(1)
	threeCaseSuite(b, true, false, false)

	view, err := b.evaluate(domain.FdbkCategoryNormal)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, firstFailureMask(view.SuiteResults()[0]))
}

func TestFirstFailureOverrideConfig(t *testing.T) {
	b := newBuilder(1)
	_, cmds := threeCaseSuite(b, true, false, false)

	override := normalCommandConfig
	override.StdoutFdbkLevel = domain.ValueFdbkExpectedAndActual
	override.ShowActualStdout = true
	for _, cmd := range cmds {
		cmd.def.FirstFailedTestNormalFdbkConfig = &override
	}

	view, err := b.evaluate(domain.FdbkCategoryNormal)
	require.NoError(t, err)

	cases := view.SuiteResults()[0].CaseResults()
	require.Len(t, cases, 3)

	_, shown := cases[1].CommandResults()[0].OutputFile(domain.OutputStdout)
	assert.True(t, shown)
	for _, i := range []int{0, 2} {
		_, shown := cases[i].CommandResults()[0].OutputFile(domain.OutputStdout)
		assert.False(t, shown, "case %d", i)
	}
}

func TestFirstFailureNeverOutsideNormal(t *testing.T) {
	b := newBuilder(1)
	threeCaseSuite(b, true, false, true)

	for _, cat := range allCategories {
		if cat == domain.FdbkCategoryNormal {
			continue
		}
		view, err := b.evaluate(cat)
		require.NoError(t, err)
		assert.Equal(t, []bool{false, false, false}, firstFailureMask(view.SuiteResults()[0]), cat)
	}
}

func TestFirstFailureFlags(t *testing.T) {
	b := newBuilder(1)
	threeCaseSuite(b, false, false, true)
	view, err := b.evaluate(domain.FdbkCategoryMax)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false, false}, firstFailureFlags(view.SuiteResults()[0].CaseResults()))
	assert.Empty(t, firstFailureFlags(nil))
}

func TestHiddenListsKeepTotals(t *testing.T) {
	b := newBuilder(1)
	s, _ := threeCaseSuite(b, true, false, true)

	s.def.NormalFdbkConfig.ShowIndividualTests = false
	view, err := b.evaluate(domain.FdbkCategoryNormal)
	require.NoError(t, err)

	suite := view.SuiteResults()[0]
	assert.Empty(t, suite.CaseResults())
	assert.Equal(t, 7, suite.TotalPoints())
	assert.Equal(t, 9, suite.TotalPointsPossible())

	s.def.NormalFdbkConfig.ShowIndividualTests = true
	for _, c := range s.def.Cases {
		c.NormalFdbkConfig.ShowIndividualCommands = false
	}
	view, err = b.evaluate(domain.FdbkCategoryNormal)
	require.NoError(t, err)

	for _, c := range view.SuiteResults()[0].CaseResults() {
		assert.Empty(t, c.CommandResults())
	}
	assert.Equal(t, 7, view.TotalPoints())
	assert.Equal(t, 9, view.TotalPointsPossible())
}

func TestHiddenNodesDropOutOfTotals(t *testing.T) {
	b := newBuilder(1)
	visible, _ := threeCaseSuite(b, true, true, true)
	hidden := b.suite("hidden", 1)
	b.command(b.testCase(hidden, "case", 0), "cmd", 0, true)
	hidden.def.NormalFdbkConfig.Visible = false

	view, err := b.evaluate(domain.FdbkCategoryNormal)
	require.NoError(t, err)
	require.Len(t, view.SuiteResults(), 1)
	assert.Equal(t, visible.def.ID, view.SuiteResults()[0].SuiteID())
	assert.Equal(t, 9, view.TotalPoints())

	maxView, err := b.evaluate(domain.FdbkCategoryMax)
	require.NoError(t, err)
	assert.Len(t, maxView.SuiteResults(), 2)
	assert.Equal(t, 12, maxView.TotalPoints())
}

func TestTotalsNeverExceedMax(t *testing.T) {
	b := newBuilder(1)
	s, cmds := threeCaseSuite(b, true, false, true)
	b.mutationSuite("mutants", 0, []string{"bug1"}, []string{"bug1", "bug2"}, 3)

	s.def.StaffViewerFdbkConfig.Visible = false
	cmds[0].def.UltimateSubmissionFdbkConfig.ShowPoints = false
	cmds[1].def.PastLimitSubmissionFdbkConfig.StdoutFdbkLevel = domain.ValueFdbkNoFeedback
	s.def.Cases[2].NormalFdbkConfig.Visible = false

	maxView, err := b.evaluate(domain.FdbkCategoryMax)
	require.NoError(t, err)

	for _, cat := range allCategories {
		view, err := b.evaluate(cat)
		require.NoError(t, err)
		assert.LessOrEqual(t, view.TotalPoints(), maxView.TotalPoints(), cat)
		assert.LessOrEqual(t, view.TotalPointsPossible(), maxView.TotalPointsPossible(), cat)
	}
}

func TestStaleDefinitionsAreSkipped(t *testing.T) {
	b := newBuilder(1)
	s, _ := threeCaseSuite(b, true, true, true)

	// a command and a suite deleted after grading
	orphanCmd := &domain.AGTestCommandResult{ID: 9001, CommandID: 8001, ReturnCodeCorrect: boolPtr(true)}
	s.result.CaseResults[0].CommandResults = append(s.result.CaseResults[0].CommandResults, orphanCmd)
	b.results = append(b.results, &domain.AGTestSuiteResultTree{
		AGTestSuiteResult: domain.AGTestSuiteResult{ID: 9002, SuiteID: 8002},
	})
	b.mutation = append(b.mutation, &domain.MutationTestSuiteResult{ID: 9003, SuiteID: 8003})

	view, err := b.evaluate(domain.FdbkCategoryMax)
	require.NoError(t, err)
	require.Len(t, view.SuiteResults(), 1)
	assert.Len(t, view.SuiteResults()[0].CaseResults()[0].CommandResults(), 1)
	assert.Empty(t, view.MutationSuiteResults())
	assert.Equal(t, 9, view.TotalPoints())
}

func TestUnknownCategoryIsRejected(t *testing.T) {
	b := newBuilder(1)
	threeCaseSuite(b, true)

	view, err := b.evaluate(domain.FdbkCategory("everything"))
	assert.Nil(t, view)
	assert.True(t, errors.Is(err, errs.ErrUnknownFeedbackCategory))
}

func TestConfigurationErrorsAbortEvaluation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cmd *domain.AGTestCommand)
		want   error
	}{
		{
			name:   "unknown stdout source",
			mutate: func(cmd *domain.AGTestCommand) { cmd.ExpectedStdoutSource = "url" },
			want:   errs.ErrUnknownExpectedOutputSource,
		},
		{
			name: "instructor file missing",
			mutate: func(cmd *domain.AGTestCommand) {
				cmd.ExpectedStderrSource = domain.ExpectedOutputSourceInstructorFile
			},
			want: errs.ErrMissingExpectedOutputSource,
		},
		{
			name:   "unknown return code expectation",
			mutate: func(cmd *domain.AGTestCommand) { cmd.ExpectedReturnCode = "negative" },
			want:   errs.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(1)
			_, cmds := threeCaseSuite(b, true, true)
			tt.mutate(cmds[1].def)

			view, err := b.evaluate(domain.FdbkCategoryMax)
			assert.Nil(t, view)
			assert.True(t, errors.Is(err, tt.want), err)
			assert.True(t, errors.Is(err, errs.ErrConfiguration), err)
		})
	}
}

func TestSnapshotAndLiveRowsAgree(t *testing.T) {
	b := newBuilder(1)
	threeCaseSuite(b, true, false, true)
	other := b.suite("other", 1)
	b.command(b.testCase(other, "c", 0), "cmd", 0, false)

	snap := domain.NewDenormalizedSnapshot(b.results)
	for _, cat := range allCategories {
		live, err := b.evaluate(cat)
		require.NoError(t, err)

		fromSnapshot, err := NewSubmissionView(b.submission(), SnapshotSuiteNodes(snap), b.mutation, cat, b.deps(nil, nil))
		require.NoError(t, err)

		assert.Equal(t, ToMap(live), ToMap(fromSnapshot), cat)
	}
}

func TestSuiteNodesPrefersSnapshot(t *testing.T) {
	b := newBuilder(1)
	_, cmds := threeCaseSuite(b, true)

	sub := b.submission()
	sub.DenormalizedAGTestResults = domain.NewDenormalizedSnapshot(b.results)
	cmds[0].result.StdoutCorrect = boolPtr(false)

	view, err := NewSubmissionView(sub, SuiteNodes(sub, b.results), nil, domain.FdbkCategoryMax, b.deps(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalPoints())

	sub.DenormalizedAGTestResults = nil
	view, err = NewSubmissionView(sub, SuiteNodes(sub, b.results), nil, domain.FdbkCategoryMax, b.deps(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalPoints())
}

func TestSuiteSetupFields(t *testing.T) {
	b := newBuilder(1)
	s, _ := threeCaseSuite(b, true)

	view, err := b.evaluate(domain.FdbkCategoryNormal)
	require.NoError(t, err)
	suite := view.SuiteResults()[0]
	assert.Nil(t, suite.SetupName())
	assert.Nil(t, suite.SetupReturnCode())
	assert.Nil(t, suite.SetupTimedOut())

	s.def.NormalFdbkConfig.ShowSetupTimedOut = true
	view, err = b.evaluate(domain.FdbkCategoryNormal)
	require.NoError(t, err)
	suite = view.SuiteResults()[0]
	require.NotNil(t, suite.SetupName())
	assert.Equal(t, "make", *suite.SetupName())
	assert.Nil(t, suite.SetupReturnCode())
	require.NotNil(t, suite.SetupTimedOut())
	assert.False(t, *suite.SetupTimedOut())

	maxView, err := b.evaluate(domain.FdbkCategoryMax)
	require.NoError(t, err)
	require.NotNil(t, maxView.SuiteResults()[0].SetupReturnCode())
	assert.Equal(t, 0, *maxView.SuiteResults()[0].SetupReturnCode())
}

func TestSubmissionLocatesNodes(t *testing.T) {
	b := newBuilder(1)
	s, cmds := threeCaseSuite(b, true, true)

	view, err := b.evaluate(domain.FdbkCategoryMax)
	require.NoError(t, err)

	suite, ok := view.SuiteResult(s.result.ID)
	require.True(t, ok)
	assert.Equal(t, s.def.ID, suite.SuiteID())

	cmd, ok := view.CommandResult(cmds[1].result.ID)
	require.True(t, ok)
	assert.Equal(t, cmds[1].def.ID, cmd.CommandID())

	_, ok = view.CommandResult(424242)
	assert.False(t, ok)

	s.def.Cases[1].NormalFdbkConfig.ShowIndividualCommands = false
	normal, err := b.evaluate(domain.FdbkCategoryNormal)
	require.NoError(t, err)
	_, ok = normal.CommandResult(cmds[1].result.ID)
	assert.False(t, ok)
}
