package domain

import (
	"fmt"

	"gitlab.com/agfdbk.net/internal/static/errs"
)

// ExpectedReturnCode is what a test command checks the return code against
type ExpectedReturnCode string

const (
	ExpectedReturnCodeNone    ExpectedReturnCode = "none"
	ExpectedReturnCodeZero    ExpectedReturnCode = "zero"
	ExpectedReturnCodeNonzero ExpectedReturnCode = "nonzero"
)

// ExpectedOutputSource names where the expected stdout/stderr of a command comes from
type ExpectedOutputSource string

const (
	ExpectedOutputSourceNone           ExpectedOutputSource = "none"
	ExpectedOutputSourceText           ExpectedOutputSource = "text"
	ExpectedOutputSourceInstructorFile ExpectedOutputSource = "instructor_file"
)

// AGTestSuite is an instructor-defined group of test cases sharing a setup command
type AGTestSuite struct {
	ID           int64  `db:"id"`
	ProjectID    int64  `db:"project_id"`
	Name         string `db:"name"`
	Order        int    `db:"_order"`
	Deferred     bool   `db:"deferred"`
	SetupCmdName string `db:"setup_suite_cmd_name"`

	NormalFdbkConfig              AGTestSuiteFdbkConfig
	UltimateSubmissionFdbkConfig  AGTestSuiteFdbkConfig
	PastLimitSubmissionFdbkConfig AGTestSuiteFdbkConfig
	StaffViewerFdbkConfig         AGTestSuiteFdbkConfig

	Cases []*AGTestCase
}

// AGTestCase is an instructor-defined group of commands inside a suite
type AGTestCase struct {
	ID      int64  `db:"id"`
	SuiteID int64  `db:"ag_test_suite_id"`
	Name    string `db:"name"`
	Order   int    `db:"_order"`

	NormalFdbkConfig              AGTestCaseFdbkConfig
	UltimateSubmissionFdbkConfig  AGTestCaseFdbkConfig
	PastLimitSubmissionFdbkConfig AGTestCaseFdbkConfig
	StaffViewerFdbkConfig         AGTestCaseFdbkConfig

	Commands []*AGTestCommand
}

// AGTestCommand is a single scored command. It owns the scoring rules for
// the three checked dimensions and the per-category feedback configuration.
type AGTestCommand struct {
	ID     int64  `db:"id"`
	CaseID int64  `db:"ag_test_case_id"`
	Name   string `db:"name"`
	Cmd    string `db:"cmd"`
	Order  int    `db:"_order"`

	ExpectedReturnCode ExpectedReturnCode `db:"expected_return_code"`

	ExpectedStdoutSource         ExpectedOutputSource `db:"expected_stdout_source"`
	ExpectedStdoutText           string               `db:"expected_stdout_text"`
	ExpectedStdoutInstructorFile *string              `db:"expected_stdout_instructor_file"`

	ExpectedStderrSource         ExpectedOutputSource `db:"expected_stderr_source"`
	ExpectedStderrText           string               `db:"expected_stderr_text"`
	ExpectedStderrInstructorFile *string              `db:"expected_stderr_instructor_file"`

	IgnoreCase              bool `db:"ignore_case"`
	IgnoreWhitespace        bool `db:"ignore_whitespace"`
	IgnoreWhitespaceChanges bool `db:"ignore_whitespace_changes"`
	IgnoreBlankLines        bool `db:"ignore_blank_lines"`

	PointsForCorrectReturnCode int `db:"points_for_correct_return_code"`
	PointsForCorrectStdout     int `db:"points_for_correct_stdout"`
	PointsForCorrectStderr     int `db:"points_for_correct_stderr"`

	DeductionForWrongReturnCode int `db:"deduction_for_wrong_return_code"`
	DeductionForWrongStdout     int `db:"deduction_for_wrong_stdout"`
	DeductionForWrongStderr     int `db:"deduction_for_wrong_stderr"`

	NormalFdbkConfig                AGTestCommandFdbkConfig
	FirstFailedTestNormalFdbkConfig *AGTestCommandFdbkConfig
	UltimateSubmissionFdbkConfig    AGTestCommandFdbkConfig
	PastLimitSubmissionFdbkConfig   AGTestCommandFdbkConfig
	StaffViewerFdbkConfig           AGTestCommandFdbkConfig
}

// MutationTestSuite scores student-written tests by the number of buggy
// instructor implementations they expose.
type MutationTestSuite struct {
	ID                  int64    `db:"id"`
	ProjectID           int64    `db:"project_id"`
	Name                string   `db:"name"`
	Order               int      `db:"_order"`
	Deferred            bool     `db:"deferred"`
	SetupCmdName        string   `db:"setup_cmd_name"`
	BuggyImplNames      []string `db:"-"`
	PointsPerExposedBug int      `db:"points_per_exposed_bug"`
	MaxPoints           *int     `db:"max_points"`

	NormalFdbkConfig              MutationTestSuiteFdbkConfig
	UltimateSubmissionFdbkConfig  MutationTestSuiteFdbkConfig
	PastLimitSubmissionFdbkConfig MutationTestSuiteFdbkConfig
	StaffViewerFdbkConfig         MutationTestSuiteFdbkConfig
}

var suiteFdbkConfigs = map[FdbkCategory]func(*AGTestSuite) AGTestSuiteFdbkConfig{
	FdbkCategoryNormal:              func(s *AGTestSuite) AGTestSuiteFdbkConfig { return s.NormalFdbkConfig },
	FdbkCategoryUltimateSubmission:  func(s *AGTestSuite) AGTestSuiteFdbkConfig { return s.UltimateSubmissionFdbkConfig },
	FdbkCategoryPastLimitSubmission: func(s *AGTestSuite) AGTestSuiteFdbkConfig { return s.PastLimitSubmissionFdbkConfig },
	FdbkCategoryStaffViewer:         func(s *AGTestSuite) AGTestSuiteFdbkConfig { return s.StaffViewerFdbkConfig },
	FdbkCategoryMax:                 func(*AGTestSuite) AGTestSuiteFdbkConfig { return MaxAGTestSuiteFdbkConfig },
}

var caseFdbkConfigs = map[FdbkCategory]func(*AGTestCase) AGTestCaseFdbkConfig{
	FdbkCategoryNormal:              func(c *AGTestCase) AGTestCaseFdbkConfig { return c.NormalFdbkConfig },
	FdbkCategoryUltimateSubmission:  func(c *AGTestCase) AGTestCaseFdbkConfig { return c.UltimateSubmissionFdbkConfig },
	FdbkCategoryPastLimitSubmission: func(c *AGTestCase) AGTestCaseFdbkConfig { return c.PastLimitSubmissionFdbkConfig },
	FdbkCategoryStaffViewer:         func(c *AGTestCase) AGTestCaseFdbkConfig { return c.StaffViewerFdbkConfig },
	FdbkCategoryMax:                 func(*AGTestCase) AGTestCaseFdbkConfig { return MaxAGTestCaseFdbkConfig },
}

var commandFdbkConfigs = map[FdbkCategory]func(*AGTestCommand) AGTestCommandFdbkConfig{
	FdbkCategoryNormal:              func(c *AGTestCommand) AGTestCommandFdbkConfig { return c.NormalFdbkConfig },
	FdbkCategoryUltimateSubmission:  func(c *AGTestCommand) AGTestCommandFdbkConfig { return c.UltimateSubmissionFdbkConfig },
	FdbkCategoryPastLimitSubmission: func(c *AGTestCommand) AGTestCommandFdbkConfig { return c.PastLimitSubmissionFdbkConfig },
	FdbkCategoryStaffViewer:         func(c *AGTestCommand) AGTestCommandFdbkConfig { return c.StaffViewerFdbkConfig },
	FdbkCategoryMax:                 func(*AGTestCommand) AGTestCommandFdbkConfig { return MaxAGTestCommandFdbkConfig },
}

var mutationSuiteFdbkConfigs = map[FdbkCategory]func(*MutationTestSuite) MutationTestSuiteFdbkConfig{
	FdbkCategoryNormal:              func(s *MutationTestSuite) MutationTestSuiteFdbkConfig { return s.NormalFdbkConfig },
	FdbkCategoryUltimateSubmission:  func(s *MutationTestSuite) MutationTestSuiteFdbkConfig { return s.UltimateSubmissionFdbkConfig },
	FdbkCategoryPastLimitSubmission: func(s *MutationTestSuite) MutationTestSuiteFdbkConfig { return s.PastLimitSubmissionFdbkConfig },
	FdbkCategoryStaffViewer:         func(s *MutationTestSuite) MutationTestSuiteFdbkConfig { return s.StaffViewerFdbkConfig },
	FdbkCategoryMax:                 func(*MutationTestSuite) MutationTestSuiteFdbkConfig { return MaxMutationTestSuiteFdbkConfig },
}

// FdbkConfig returns the suite configuration that applies under cat
func (s *AGTestSuite) FdbkConfig(cat FdbkCategory) (AGTestSuiteFdbkConfig, error) {
	get, ok := suiteFdbkConfigs[cat]
	if !ok {
		return AGTestSuiteFdbkConfig{}, fmt.Errorf("%w: %q", errs.ErrUnknownFeedbackCategory, cat)
	}
	return get(s), nil
}

// FdbkConfig returns the case configuration that applies under cat
func (c *AGTestCase) FdbkConfig(cat FdbkCategory) (AGTestCaseFdbkConfig, error) {
	get, ok := caseFdbkConfigs[cat]
	if !ok {
		return AGTestCaseFdbkConfig{}, fmt.Errorf("%w: %q", errs.ErrUnknownFeedbackCategory, cat)
	}
	return get(c), nil
}

// FdbkConfig returns the command configuration that applies under cat.
// Under normal feedback, a command in the first failed case of its suite
// uses FirstFailedTestNormalFdbkConfig when one is set.
func (c *AGTestCommand) FdbkConfig(cat FdbkCategory, isFirstFailure bool) (AGTestCommandFdbkConfig, error) {
	if cat == FdbkCategoryNormal && isFirstFailure && c.FirstFailedTestNormalFdbkConfig != nil {
		return *c.FirstFailedTestNormalFdbkConfig, nil
	}
	get, ok := commandFdbkConfigs[cat]
	if !ok {
		return AGTestCommandFdbkConfig{}, fmt.Errorf("%w: %q", errs.ErrUnknownFeedbackCategory, cat)
	}
	return get(c), nil
}

// FdbkConfig returns the mutation suite configuration that applies under cat
func (s *MutationTestSuite) FdbkConfig(cat FdbkCategory) (MutationTestSuiteFdbkConfig, error) {
	get, ok := mutationSuiteFdbkConfigs[cat]
	if !ok {
		return MutationTestSuiteFdbkConfig{}, fmt.Errorf("%w: %q", errs.ErrUnknownFeedbackCategory, cat)
	}
	return get(s), nil
}

// ProjectTests is every test definition of one project, as prefetched in a single batch
type ProjectTests struct {
	ProjectID      int64
	Suites         []*AGTestSuite
	MutationSuites []*MutationTestSuite
}
