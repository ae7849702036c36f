package domain

// ValueFeedbackLevel controls how much is revealed about one checked value
// (return code, stdout or stderr) of a test command.
type ValueFeedbackLevel string

const (
	ValueFdbkNoFeedback         ValueFeedbackLevel = "no_feedback"
	ValueFdbkCorrectOrIncorrect ValueFeedbackLevel = "correct_or_incorrect"
	ValueFdbkExpectedAndActual  ValueFeedbackLevel = "expected_and_actual"
)

// BugsExposedFeedbackLevel controls how much is revealed about the buggy
// implementations a mutation test suite exposed.
type BugsExposedFeedbackLevel string

const (
	BugsExposedNoFeedback      BugsExposedFeedbackLevel = "no_feedback"
	BugsExposedNumBugsExposed  BugsExposedFeedbackLevel = "num_bugs_exposed"
	BugsExposedExposedBugNames BugsExposedFeedbackLevel = "exposed_bug_names"
	BugsExposedAllBugNames     BugsExposedFeedbackLevel = "all_bug_names"
)

var bugsExposedRank = map[BugsExposedFeedbackLevel]int{
	BugsExposedNoFeedback:      0,
	BugsExposedNumBugsExposed:  1,
	BugsExposedExposedBugNames: 2,
	BugsExposedAllBugNames:     3,
}

// AtLeast reports whether l reveals at least as much as other.
// Unknown levels rank below no_feedback.
func (l BugsExposedFeedbackLevel) AtLeast(other BugsExposedFeedbackLevel) bool {
	lr, ok := bugsExposedRank[l]
	if !ok {
		return false
	}
	return lr >= bugsExposedRank[other]
}

// AGTestCommandFdbkConfig is the per-category feedback configuration of a test command
type AGTestCommandFdbkConfig struct {
	Visible bool `json:"visible"`

	ReturnCodeFdbkLevel ValueFeedbackLevel `json:"return_code_fdbk_level"`
	StdoutFdbkLevel     ValueFeedbackLevel `json:"stdout_fdbk_level"`
	StderrFdbkLevel     ValueFeedbackLevel `json:"stderr_fdbk_level"`

	ShowPoints           bool `json:"show_points"`
	ShowActualReturnCode bool `json:"show_actual_return_code"`
	ShowActualStdout     bool `json:"show_actual_stdout"`
	ShowActualStderr     bool `json:"show_actual_stderr"`
	ShowWhetherTimedOut  bool `json:"show_whether_timed_out"`
}

// AGTestCaseFdbkConfig is the per-category feedback configuration of a test case
type AGTestCaseFdbkConfig struct {
	Visible                bool `json:"visible"`
	ShowIndividualCommands bool `json:"show_individual_commands"`
}

// AGTestSuiteFdbkConfig is the per-category feedback configuration of a test suite
type AGTestSuiteFdbkConfig struct {
	Visible             bool `json:"visible"`
	ShowIndividualTests bool `json:"show_individual_tests"`
	ShowSetupReturnCode bool `json:"show_setup_return_code"`
	ShowSetupTimedOut   bool `json:"show_setup_timed_out"`
	ShowSetupStdout     bool `json:"show_setup_stdout"`
	ShowSetupStderr     bool `json:"show_setup_stderr"`
}

// MutationTestSuiteFdbkConfig is the per-category feedback configuration of a mutation test suite
type MutationTestSuiteFdbkConfig struct {
	Visible              bool                     `json:"visible"`
	ShowSetupReturnCode  bool                     `json:"show_setup_return_code"`
	ShowSetupStdout      bool                     `json:"show_setup_stdout"`
	ShowSetupStderr      bool                     `json:"show_setup_stderr"`
	ShowInvalidTestNames bool                     `json:"show_invalid_test_names"`
	ShowPoints           bool                     `json:"show_points"`
	BugsExposedFdbkLevel BugsExposedFeedbackLevel `json:"bugs_exposed_fdbk_level"`
}

// The max category never reads a stored configuration; it resolves to these.
var (
	MaxAGTestCommandFdbkConfig = AGTestCommandFdbkConfig{
		Visible:              true,
		ReturnCodeFdbkLevel:  ValueFdbkExpectedAndActual,
		StdoutFdbkLevel:      ValueFdbkExpectedAndActual,
		StderrFdbkLevel:      ValueFdbkExpectedAndActual,
		ShowPoints:           true,
		ShowActualReturnCode: true,
		ShowActualStdout:     true,
		ShowActualStderr:     true,
		ShowWhetherTimedOut:  true,
	}

	MaxAGTestCaseFdbkConfig = AGTestCaseFdbkConfig{
		Visible:                true,
		ShowIndividualCommands: true,
	}

	MaxAGTestSuiteFdbkConfig = AGTestSuiteFdbkConfig{
		Visible:             true,
		ShowIndividualTests: true,
		ShowSetupReturnCode: true,
		ShowSetupTimedOut:   true,
		ShowSetupStdout:     true,
		ShowSetupStderr:     true,
	}

	MaxMutationTestSuiteFdbkConfig = MutationTestSuiteFdbkConfig{
		Visible:              true,
		ShowSetupReturnCode:  true,
		ShowSetupStdout:      true,
		ShowSetupStderr:      true,
		ShowInvalidTestNames: true,
		ShowPoints:           true,
		BugsExposedFdbkLevel: BugsExposedAllBugNames,
	}
)
