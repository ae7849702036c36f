package feedback

import (
	"gitlab.com/agfdbk.net/internal/domain"
)

// Wire field lists of each view level. ToMap emits exactly these keys.
var (
	CommandFields = []string{
		"pk",
		"ag_test_command_name",
		"ag_test_command_pk",
		"fdbk_settings",
		"timed_out",
		"return_code_correct",
		"expected_return_code",
		"actual_return_code",
		"return_code_points",
		"return_code_points_possible",
		"stdout_correct",
		"stdout_points",
		"stdout_points_possible",
		"stderr_correct",
		"stderr_points",
		"stderr_points_possible",
		"total_points",
		"total_points_possible",
	}

	CaseFields = []string{
		"pk",
		"ag_test_case_name",
		"ag_test_case_pk",
		"fdbk_settings",
		"total_points",
		"total_points_possible",
		"ag_test_command_results",
	}

	SuiteFields = []string{
		"pk",
		"ag_test_suite_name",
		"ag_test_suite_pk",
		"fdbk_settings",
		"total_points",
		"total_points_possible",
		"setup_name",
		"setup_return_code",
		"setup_timed_out",
		"ag_test_case_results",
	}

	MutationSuiteFields = []string{
		"pk",
		"mutation_test_suite_name",
		"mutation_test_suite_pk",
		"fdbk_settings",
		"has_setup_command",
		"setup_command_name",
		"setup_return_code",
		"setup_timed_out",
		"invalid_tests",
		"timed_out_tests",
		"num_bugs_exposed",
		"bugs_exposed",
		"all_bug_names",
		"total_points",
		"total_points_possible",
	}

	SubmissionFields = []string{
		"pk",
		"total_points",
		"total_points_possible",
		"ag_test_suite_results",
		"mutation_test_suite_results",
	}
)

// ToMap converts a submission view into its plain nested wire form
func ToMap(v *SubmissionView) map[string]interface{} {
	suites := make([]interface{}, 0, len(v.SuiteResults()))
	for _, s := range v.SuiteResults() {
		suites = append(suites, SuiteToMap(s))
	}
	mutationSuites := make([]interface{}, 0, len(v.MutationSuiteResults()))
	for _, ms := range v.MutationSuiteResults() {
		mutationSuites = append(mutationSuites, MutationSuiteToMap(ms))
	}

	return map[string]interface{}{
		"pk":                          v.PK(),
		"total_points":                v.TotalPoints(),
		"total_points_possible":       v.TotalPointsPossible(),
		"ag_test_suite_results":       suites,
		"mutation_test_suite_results": mutationSuites,
	}
}

func SuiteToMap(v *SuiteView) map[string]interface{} {
	cases := make([]interface{}, 0, len(v.CaseResults()))
	for _, c := range v.CaseResults() {
		cases = append(cases, CaseToMap(c))
	}

	return map[string]interface{}{
		"pk":                    v.PK(),
		"ag_test_suite_name":    v.Name(),
		"ag_test_suite_pk":      v.SuiteID(),
		"fdbk_settings":         suiteSettingsToMap(v.FdbkConfig()),
		"total_points":          v.TotalPoints(),
		"total_points_possible": v.TotalPointsPossible(),
		"setup_name":            v.SetupName(),
		"setup_return_code":     v.SetupReturnCode(),
		"setup_timed_out":       v.SetupTimedOut(),
		"ag_test_case_results":  cases,
	}
}

func CaseToMap(v *CaseView) map[string]interface{} {
	cmds := make([]interface{}, 0, len(v.CommandResults()))
	for _, cmd := range v.CommandResults() {
		cmds = append(cmds, CommandToMap(cmd))
	}

	return map[string]interface{}{
		"pk":                      v.PK(),
		"ag_test_case_name":       v.Name(),
		"ag_test_case_pk":         v.CaseID(),
		"fdbk_settings":           caseSettingsToMap(v.FdbkConfig()),
		"total_points":            v.TotalPoints(),
		"total_points_possible":   v.TotalPointsPossible(),
		"ag_test_command_results": cmds,
	}
}

func CommandToMap(v *CommandView) map[string]interface{} {
	return map[string]interface{}{
		"pk":                          v.PK(),
		"ag_test_command_name":        v.Name(),
		"ag_test_command_pk":          v.CommandID(),
		"fdbk_settings":               commandSettingsToMap(v.FdbkConfig()),
		"timed_out":                   v.TimedOut(),
		"return_code_correct":         v.ReturnCodeCorrect(),
		"expected_return_code":        v.ExpectedReturnCode(),
		"actual_return_code":          v.ActualReturnCode(),
		"return_code_points":          v.ReturnCodePoints(),
		"return_code_points_possible": v.ReturnCodePointsPossible(),
		"stdout_correct":              v.OutputCorrect(domain.OutputStdout),
		"stdout_points":               v.OutputPoints(domain.OutputStdout),
		"stdout_points_possible":      v.OutputPointsPossible(domain.OutputStdout),
		"stderr_correct":              v.OutputCorrect(domain.OutputStderr),
		"stderr_points":               v.OutputPoints(domain.OutputStderr),
		"stderr_points_possible":      v.OutputPointsPossible(domain.OutputStderr),
		"total_points":                v.TotalPoints(),
		"total_points_possible":       v.TotalPointsPossible(),
	}
}

func MutationSuiteToMap(v *MutationSuiteView) map[string]interface{} {
	return map[string]interface{}{
		"pk":                       v.PK(),
		"mutation_test_suite_name": v.Name(),
		"mutation_test_suite_pk":   v.SuiteID(),
		"fdbk_settings":            mutationSettingsToMap(v.FdbkConfig()),
		"has_setup_command":        v.HasSetupCommand(),
		"setup_command_name":       v.SetupCommandName(),
		"setup_return_code":        v.SetupReturnCode(),
		"setup_timed_out":          v.SetupTimedOut(),
		"invalid_tests":            v.InvalidTests(),
		"timed_out_tests":          v.TimedOutTests(),
		"num_bugs_exposed":         v.NumBugsExposed(),
		"bugs_exposed":             v.BugsExposed(),
		"all_bug_names":            v.AllBugNames(),
		"total_points":             v.TotalPoints(),
		"total_points_possible":    v.TotalPointsPossible(),
	}
}

func commandSettingsToMap(c domain.AGTestCommandFdbkConfig) map[string]interface{} {
	return map[string]interface{}{
		"visible":                 c.Visible,
		"return_code_fdbk_level":  string(c.ReturnCodeFdbkLevel),
		"stdout_fdbk_level":       string(c.StdoutFdbkLevel),
		"stderr_fdbk_level":       string(c.StderrFdbkLevel),
		"show_points":             c.ShowPoints,
		"show_actual_return_code": c.ShowActualReturnCode,
		"show_actual_stdout":      c.ShowActualStdout,
		"show_actual_stderr":      c.ShowActualStderr,
		"show_whether_timed_out":  c.ShowWhetherTimedOut,
	}
}

func caseSettingsToMap(c domain.AGTestCaseFdbkConfig) map[string]interface{} {
	return map[string]interface{}{
		"visible":                  c.Visible,
		"show_individual_commands": c.ShowIndividualCommands,
	}
}

func suiteSettingsToMap(c domain.AGTestSuiteFdbkConfig) map[string]interface{} {
	return map[string]interface{}{
		"visible":                c.Visible,
		"show_individual_tests":  c.ShowIndividualTests,
		"show_setup_return_code": c.ShowSetupReturnCode,
		"show_setup_timed_out":   c.ShowSetupTimedOut,
		"show_setup_stdout":      c.ShowSetupStdout,
		"show_setup_stderr":      c.ShowSetupStderr,
	}
}

func mutationSettingsToMap(c domain.MutationTestSuiteFdbkConfig) map[string]interface{} {
	return map[string]interface{}{
		"visible":                 c.Visible,
		"show_setup_return_code":  c.ShowSetupReturnCode,
		"show_setup_stdout":       c.ShowSetupStdout,
		"show_setup_stderr":       c.ShowSetupStderr,
		"show_invalid_test_names": c.ShowInvalidTestNames,
		"show_points":             c.ShowPoints,
		"bugs_exposed_fdbk_level": string(c.BugsExposedFdbkLevel),
	}
}
