package domain

// OutputStream names one captured output stream
type OutputStream string

const (
	OutputStdout OutputStream = "stdout"
	OutputStderr OutputStream = "stderr"
)

// OutputFile is a handle to captured output kept in the output store.
// An empty Filename means nothing was captured.
type OutputFile struct {
	Filename  string `json:"filename"`
	Truncated bool   `json:"truncated"`
}

// AGTestSuiteResult is the captured outcome of one suite's setup phase
type AGTestSuiteResult struct {
	ID                  int64  `db:"id"`
	SuiteID             int64  `db:"ag_test_suite_id"`
	SubmissionID        int64  `db:"submission_id"`
	SetupReturnCode     *int   `db:"setup_return_code"`
	SetupTimedOut       bool   `db:"setup_timed_out"`
	SetupStdoutFilename string `db:"setup_stdout_filename"`
	SetupStderrFilename string `db:"setup_stderr_filename"`
	SetupStdoutTrunc    bool   `db:"setup_stdout_truncated"`
	SetupStderrTrunc    bool   `db:"setup_stderr_truncated"`
}

// AGTestCaseResult groups the command results of one test case
type AGTestCaseResult struct {
	ID            int64 `db:"id"`
	CaseID        int64 `db:"ag_test_case_id"`
	SuiteResultID int64 `db:"ag_test_suite_result_id"`
}

// AGTestCommandResult is the captured outcome of one test command
type AGTestCommandResult struct {
	ID                int64  `db:"id"`
	CommandID         int64  `db:"ag_test_command_id"`
	CaseResultID      int64  `db:"ag_test_case_result_id"`
	ReturnCode        *int   `db:"return_code"`
	ReturnCodeCorrect *bool  `db:"return_code_correct"`
	TimedOut          bool   `db:"timed_out"`
	StdoutCorrect     *bool  `db:"stdout_correct"`
	StderrCorrect     *bool  `db:"stderr_correct"`
	StdoutFilename    string `db:"stdout_filename"`
	StderrFilename    string `db:"stderr_filename"`
	StdoutTruncated   bool   `db:"stdout_truncated"`
	StderrTruncated   bool   `db:"stderr_truncated"`
}

// MutationTestSuiteResult is the flat outcome of one mutation test suite
type MutationTestSuiteResult struct {
	ID                  int64    `db:"id" json:"pk"`
	SuiteID             int64    `db:"mutation_test_suite_id" json:"mutation_test_suite_id"`
	SubmissionID        int64    `db:"submission_id" json:"submission_id"`
	SetupReturnCode     *int     `db:"setup_return_code" json:"setup_return_code"`
	SetupTimedOut       bool     `db:"setup_timed_out" json:"setup_timed_out"`
	SetupStdoutFilename string   `db:"setup_stdout_filename" json:"setup_stdout_filename"`
	SetupStderrFilename string   `db:"setup_stderr_filename" json:"setup_stderr_filename"`
	StudentTests        []string `db:"-" json:"student_tests"`
	InvalidTests        []string `db:"-" json:"invalid_tests"`
	TimedOutTests       []string `db:"-" json:"timed_out_tests"`
	BugsExposed         []string `db:"-" json:"bugs_exposed"`
}

// AGTestCaseResultTree is a case result row with its command results
type AGTestCaseResultTree struct {
	AGTestCaseResult
	CommandResults []*AGTestCommandResult
}

// AGTestSuiteResultTree is a suite result row with its case results
type AGTestSuiteResultTree struct {
	AGTestSuiteResult
	CaseResults []*AGTestCaseResultTree
}
