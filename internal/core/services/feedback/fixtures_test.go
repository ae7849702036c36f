package feedback

import (
	"bytes"
	"fmt"

	"gitlab.com/agfdbk.net/internal/adapter/memory"
	"gitlab.com/agfdbk.net/internal/domain"
)

const testProjectID = int64(1)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// normalCommandConfig shows correctness and points but no output
var normalCommandConfig = domain.AGTestCommandFdbkConfig{
	Visible:             true,
	ReturnCodeFdbkLevel: domain.ValueFdbkCorrectOrIncorrect,
	StdoutFdbkLevel:     domain.ValueFdbkCorrectOrIncorrect,
	StderrFdbkLevel:     domain.ValueFdbkCorrectOrIncorrect,
	ShowPoints:          true,
}

type suitePair struct {
	def    *domain.AGTestSuite
	result *domain.AGTestSuiteResultTree
}

type casePair struct {
	def    *domain.AGTestCase
	result *domain.AGTestCaseResultTree
}

type commandPair struct {
	def    *domain.AGTestCommand
	result *domain.AGTestCommandResult
}

// builder assembles definitions and matching live results of one submission
type builder struct {
	submissionID int64
	tests        *domain.ProjectTests
	results      []*domain.AGTestSuiteResultTree
	mutation     []*domain.MutationTestSuiteResult
	nextID       int64
}

func newBuilder(submissionID int64) *builder {
	return &builder{
		submissionID: submissionID,
		tests:        &domain.ProjectTests{ProjectID: testProjectID},
		nextID:       100,
	}
}

func (b *builder) id() int64 {
	b.nextID++
	return b.nextID
}

func (b *builder) suite(name string, order int) suitePair {
	def := &domain.AGTestSuite{
		ID:                            b.id(),
		ProjectID:                     testProjectID,
		Name:                          name,
		Order:                         order,
		SetupCmdName:                  "make",
		NormalFdbkConfig:              domain.AGTestSuiteFdbkConfig{Visible: true, ShowIndividualTests: true},
		UltimateSubmissionFdbkConfig:  domain.MaxAGTestSuiteFdbkConfig,
		PastLimitSubmissionFdbkConfig: domain.MaxAGTestSuiteFdbkConfig,
		StaffViewerFdbkConfig:         domain.MaxAGTestSuiteFdbkConfig,
	}
	result := &domain.AGTestSuiteResultTree{
		AGTestSuiteResult: domain.AGTestSuiteResult{
			ID:                  b.id(),
			SuiteID:             def.ID,
			SubmissionID:        b.submissionID,
			SetupReturnCode:     intPtr(0),
			SetupStdoutFilename: fmt.Sprintf("setup-%d.out", def.ID),
		},
	}
	b.tests.Suites = append(b.tests.Suites, def)
	b.results = append(b.results, result)
	return suitePair{def, result}
}

func (b *builder) testCase(s suitePair, name string, order int) casePair {
	def := &domain.AGTestCase{
		ID:                            b.id(),
		SuiteID:                       s.def.ID,
		Name:                          name,
		Order:                         order,
		NormalFdbkConfig:              domain.AGTestCaseFdbkConfig{Visible: true, ShowIndividualCommands: true},
		UltimateSubmissionFdbkConfig:  domain.MaxAGTestCaseFdbkConfig,
		PastLimitSubmissionFdbkConfig: domain.MaxAGTestCaseFdbkConfig,
		StaffViewerFdbkConfig:         domain.MaxAGTestCaseFdbkConfig,
	}
	result := &domain.AGTestCaseResultTree{
		AGTestCaseResult: domain.AGTestCaseResult{
			ID:            b.id(),
			CaseID:        def.ID,
			SuiteResultID: s.result.ID,
		},
	}
	s.def.Cases = append(s.def.Cases, def)
	s.result.CaseResults = append(s.result.CaseResults, result)
	return casePair{def, result}
}

// command adds a command checking return code (1 point) and stdout (2 points)
func (b *builder) command(c casePair, name string, order int, passed bool) commandPair {
	def := &domain.AGTestCommand{
		ID:                            b.id(),
		CaseID:                        c.def.ID,
		Name:                          name,
		Cmd:                           "./" + name,
		Order:                         order,
		ExpectedReturnCode:            domain.ExpectedReturnCodeZero,
		ExpectedStdoutSource:          domain.ExpectedOutputSourceText,
		ExpectedStdoutText:            "hello\n",
		ExpectedStderrSource:          domain.ExpectedOutputSourceNone,
		PointsForCorrectReturnCode:    1,
		PointsForCorrectStdout:        2,
		NormalFdbkConfig:              normalCommandConfig,
		UltimateSubmissionFdbkConfig:  domain.MaxAGTestCommandFdbkConfig,
		PastLimitSubmissionFdbkConfig: domain.MaxAGTestCommandFdbkConfig,
		StaffViewerFdbkConfig:         domain.MaxAGTestCommandFdbkConfig,
	}
	result := &domain.AGTestCommandResult{
		ID:                b.id(),
		CommandID:         def.ID,
		CaseResultID:      c.result.ID,
		ReturnCode:        intPtr(0),
		ReturnCodeCorrect: boolPtr(true),
		StdoutCorrect:     boolPtr(passed),
		StdoutFilename:    fmt.Sprintf("cmd-%d.out", def.ID),
	}
	c.def.Commands = append(c.def.Commands, def)
	c.result.CommandResults = append(c.result.CommandResults, result)
	return commandPair{def, result}
}

func (b *builder) mutationSuite(name string, order int, exposed []string, impls []string, ppb int) (*domain.MutationTestSuite, *domain.MutationTestSuiteResult) {
	def := &domain.MutationTestSuite{
		ID:                            b.id(),
		ProjectID:                     testProjectID,
		Name:                          name,
		Order:                         order,
		BuggyImplNames:                impls,
		PointsPerExposedBug:           ppb,
		NormalFdbkConfig:              domain.MaxMutationTestSuiteFdbkConfig,
		UltimateSubmissionFdbkConfig:  domain.MaxMutationTestSuiteFdbkConfig,
		PastLimitSubmissionFdbkConfig: domain.MaxMutationTestSuiteFdbkConfig,
		StaffViewerFdbkConfig:         domain.MaxMutationTestSuiteFdbkConfig,
	}
	result := &domain.MutationTestSuiteResult{
		ID:           b.id(),
		SuiteID:      def.ID,
		SubmissionID: b.submissionID,
		BugsExposed:  exposed,
	}
	b.tests.MutationSuites = append(b.tests.MutationSuites, def)
	b.mutation = append(b.mutation, result)
	return def, result
}

func (b *builder) submission() *domain.Submission {
	return &domain.Submission{
		ID:        b.submissionID,
		GroupID:   1,
		ProjectID: testProjectID,
		Status:    domain.SubmissionStatusFinishedGrading,
	}
}

func (b *builder) deps(store *memory.OutputStore, differ *stubDiffer) Deps {
	d := Deps{Lookup: NewTestLookup(b.tests)}
	if store != nil {
		d.Store = store
	}
	if differ != nil {
		d.Differ = differ
	}
	return d
}

// evaluate builds a view from live rows
func (b *builder) evaluate(category domain.FdbkCategory) (*SubmissionView, error) {
	return NewSubmissionView(b.submission(), LiveSuiteNodes(b.results), b.mutation, category, b.deps(nil, nil))
}

type stubDiffer struct {
	expected, actual []byte
	opts             domain.DiffOptions
}

func (d *stubDiffer) Diff(expected, actual []byte, opts domain.DiffOptions) (domain.DiffResult, error) {
	d.expected, d.actual, d.opts = expected, actual, opts
	if bytes.Equal(expected, actual) {
		return domain.DiffResult{DiffContent: []string{"  " + string(actual)}}, nil
	}
	return domain.DiffResult{DiffContent: []string{"- " + string(expected), "+ " + string(actual)}}, nil
}

func commandPKs(c *CaseView) []int64 {
	var pks []int64
	for _, cmd := range c.CommandResults() {
		pks = append(pks, cmd.PK())
	}
	return pks
}
