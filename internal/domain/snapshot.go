package domain

import (
	"strconv"
)

// DenormalizedAGTestResults is a point-in-time copy of a submission's whole
// suite -> case -> command result tree, keyed by suite id. It is rebuilt
// explicitly after grading or a rerun and never updated in place.
type DenormalizedAGTestResults map[string]SuiteResultSnapshot

// SuiteResultSnapshot is the serialized form of one suite result.
// Case results are keyed by case id.
type SuiteResultSnapshot struct {
	ID                   int64                         `json:"pk"`
	SuiteID              int64                         `json:"ag_test_suite_id"`
	SubmissionID         int64                         `json:"submission_id"`
	SetupReturnCode      *int                          `json:"setup_return_code"`
	SetupTimedOut        bool                          `json:"setup_timed_out"`
	SetupStdoutFilename  string                        `json:"setup_stdout_filename"`
	SetupStderrFilename  string                        `json:"setup_stderr_filename"`
	SetupStdoutTruncated bool                          `json:"setup_stdout_truncated"`
	SetupStderrTruncated bool                          `json:"setup_stderr_truncated"`
	CaseResults          map[string]CaseResultSnapshot `json:"ag_test_case_results"`
}

// CaseResultSnapshot is the serialized form of one case result.
// Command results are keyed by command id.
type CaseResultSnapshot struct {
	ID             int64                            `json:"pk"`
	CaseID         int64                            `json:"ag_test_case_id"`
	SuiteResultID  int64                            `json:"ag_test_suite_result_id"`
	CommandResults map[string]CommandResultSnapshot `json:"ag_test_command_results"`
}

// CommandResultSnapshot is the serialized form of one command result
type CommandResultSnapshot struct {
	ID                int64  `json:"pk"`
	CommandID         int64  `json:"ag_test_command_id"`
	CaseResultID      int64  `json:"ag_test_case_result_id"`
	ReturnCode        *int   `json:"return_code"`
	ReturnCodeCorrect *bool  `json:"return_code_correct"`
	TimedOut          bool   `json:"timed_out"`
	StdoutCorrect     *bool  `json:"stdout_correct"`
	StderrCorrect     *bool  `json:"stderr_correct"`
	StdoutFilename    string `json:"stdout_filename"`
	StderrFilename    string `json:"stderr_filename"`
	StdoutTruncated   bool   `json:"stdout_truncated"`
	StderrTruncated   bool   `json:"stderr_truncated"`
}

// SnapshotKey renders a definition id as a snapshot map key
func SnapshotKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// NewDenormalizedSnapshot captures the given live result rows
func NewDenormalizedSnapshot(suiteResults []*AGTestSuiteResultTree) DenormalizedAGTestResults {
	snap := make(DenormalizedAGTestResults, len(suiteResults))
	for _, sr := range suiteResults {
		cases := make(map[string]CaseResultSnapshot, len(sr.CaseResults))
		for _, cr := range sr.CaseResults {
			cmds := make(map[string]CommandResultSnapshot, len(cr.CommandResults))
			for _, cmd := range cr.CommandResults {
				cmds[SnapshotKey(cmd.CommandID)] = CommandResultSnapshot{
					ID:                cmd.ID,
					CommandID:         cmd.CommandID,
					CaseResultID:      cmd.CaseResultID,
					ReturnCode:        cmd.ReturnCode,
					ReturnCodeCorrect: cmd.ReturnCodeCorrect,
					TimedOut:          cmd.TimedOut,
					StdoutCorrect:     cmd.StdoutCorrect,
					StderrCorrect:     cmd.StderrCorrect,
					StdoutFilename:    cmd.StdoutFilename,
					StderrFilename:    cmd.StderrFilename,
					StdoutTruncated:   cmd.StdoutTruncated,
					StderrTruncated:   cmd.StderrTruncated,
				}
			}
			cases[SnapshotKey(cr.CaseID)] = CaseResultSnapshot{
				ID:             cr.ID,
				CaseID:         cr.CaseID,
				SuiteResultID:  cr.SuiteResultID,
				CommandResults: cmds,
			}
		}
		snap[SnapshotKey(sr.SuiteID)] = SuiteResultSnapshot{
			ID:                   sr.ID,
			SuiteID:              sr.SuiteID,
			SubmissionID:         sr.SubmissionID,
			SetupReturnCode:      sr.SetupReturnCode,
			SetupTimedOut:        sr.SetupTimedOut,
			SetupStdoutFilename:  sr.SetupStdoutFilename,
			SetupStderrFilename:  sr.SetupStderrFilename,
			SetupStdoutTruncated: sr.SetupStdoutTrunc,
			SetupStderrTruncated: sr.SetupStderrTrunc,
			CaseResults:          cases,
		}
	}
	return snap
}
