package testdefrepository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gitlab.com/agfdbk.net/internal/adapter/postgres/pgjson"
	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
	querybuilder "gitlab.com/agfdbk.net/internal/utils"
)

var _ secondary.TestDefRepository = (*TestDefRepository)(nil)

// TestDefRepository loads test definitions from PostgreSQL
type TestDefRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// NewTestDefRepository creates a new PostgreSQL test definition repository
func NewTestDefRepository(db *sqlx.DB, logger primary.Logger, schema string) *TestDefRepository {
	return &TestDefRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

type suiteRow struct {
	domain.AGTestSuite
	Normal    pgjson.JSONB[domain.AGTestSuiteFdbkConfig] `db:"normal_fdbk_config"`
	Ultimate  pgjson.JSONB[domain.AGTestSuiteFdbkConfig] `db:"ultimate_submission_fdbk_config"`
	PastLimit pgjson.JSONB[domain.AGTestSuiteFdbkConfig] `db:"past_limit_submission_fdbk_config"`
	Staff     pgjson.JSONB[domain.AGTestSuiteFdbkConfig] `db:"staff_viewer_fdbk_config"`
}

type caseRow struct {
	domain.AGTestCase
	Normal    pgjson.JSONB[domain.AGTestCaseFdbkConfig] `db:"normal_fdbk_config"`
	Ultimate  pgjson.JSONB[domain.AGTestCaseFdbkConfig] `db:"ultimate_submission_fdbk_config"`
	PastLimit pgjson.JSONB[domain.AGTestCaseFdbkConfig] `db:"past_limit_submission_fdbk_config"`
	Staff     pgjson.JSONB[domain.AGTestCaseFdbkConfig] `db:"staff_viewer_fdbk_config"`
}

type commandRow struct {
	domain.AGTestCommand
	Normal       pgjson.JSONB[domain.AGTestCommandFdbkConfig] `db:"normal_fdbk_config"`
	FirstFailure pgjson.JSONB[domain.AGTestCommandFdbkConfig] `db:"first_failed_test_normal_fdbk_config"`
	Ultimate     pgjson.JSONB[domain.AGTestCommandFdbkConfig] `db:"ultimate_submission_fdbk_config"`
	PastLimit    pgjson.JSONB[domain.AGTestCommandFdbkConfig] `db:"past_limit_submission_fdbk_config"`
	Staff        pgjson.JSONB[domain.AGTestCommandFdbkConfig] `db:"staff_viewer_fdbk_config"`
}

type mutationSuiteRow struct {
	domain.MutationTestSuite
	BuggyImpls pq.StringArray                                 `db:"buggy_impl_names"`
	Normal     pgjson.JSONB[domain.MutationTestSuiteFdbkConfig] `db:"normal_fdbk_config"`
	Ultimate   pgjson.JSONB[domain.MutationTestSuiteFdbkConfig] `db:"ultimate_submission_fdbk_config"`
	PastLimit  pgjson.JSONB[domain.MutationTestSuiteFdbkConfig] `db:"past_limit_submission_fdbk_config"`
	Staff      pgjson.JSONB[domain.MutationTestSuiteFdbkConfig] `db:"staff_viewer_fdbk_config"`
}

var fdbkColumns = []string{
	"normal_fdbk_config",
	"ultimate_submission_fdbk_config",
	"past_limit_submission_fdbk_config",
	"staff_viewer_fdbk_config",
}

func prefixed(alias string, cols ...string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

// LoadProjectTests reads the whole definition tree of a project with one
// query per level.
func (r *TestDefRepository) LoadProjectTests(ctx context.Context, projectID int64) (*domain.ProjectTests, error) {
	suites, err := r.loadSuites(ctx, projectID)
	if err != nil {
		return nil, err
	}
	cases, err := r.loadCases(ctx, projectID)
	if err != nil {
		return nil, err
	}
	commands, err := r.loadCommands(ctx, projectID)
	if err != nil {
		return nil, err
	}
	mutationSuites, err := r.loadMutationSuites(ctx, projectID)
	if err != nil {
		return nil, err
	}

	casesByID := make(map[int64]*domain.AGTestCase, len(cases))
	for _, c := range cases {
		casesByID[c.ID] = c
	}
	for _, cmd := range commands {
		if c, ok := casesByID[cmd.CaseID]; ok {
			c.Commands = append(c.Commands, cmd)
		}
	}
	suitesByID := make(map[int64]*domain.AGTestSuite, len(suites))
	for _, s := range suites {
		suitesByID[s.ID] = s
	}
	for _, c := range cases {
		if s, ok := suitesByID[c.SuiteID]; ok {
			s.Cases = append(s.Cases, c)
		}
	}

	r.logger.Debug("Loaded project tests", "projectId", projectID,
		"suites", len(suites), "cases", len(cases), "commands", len(commands), "mutationSuites", len(mutationSuites))

	return &domain.ProjectTests{
		ProjectID:      projectID,
		Suites:         suites,
		MutationSuites: mutationSuites,
	}, nil
}

func (r *TestDefRepository) loadSuites(ctx context.Context, projectID int64) ([]*domain.AGTestSuite, error) {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select("id", "project_id", "name", "_order", "deferred", "setup_suite_cmd_name").
		Select(fdbkColumns...).
		From("ag_test_suites").
		Where("project_id = ?", projectID).
		OrderBy("_order", true).
		Build()

	var rows []suiteRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to get test suites", "projectId", projectID, "error", err)
		return nil, fmt.Errorf("failed to get test suites: %w", err)
	}

	suites := make([]*domain.AGTestSuite, 0, len(rows))
	for i := range rows {
		s := rows[i].AGTestSuite
		s.NormalFdbkConfig = rows[i].Normal.V
		s.UltimateSubmissionFdbkConfig = rows[i].Ultimate.V
		s.PastLimitSubmissionFdbkConfig = rows[i].PastLimit.V
		s.StaffViewerFdbkConfig = rows[i].Staff.V
		suites = append(suites, &s)
	}
	return suites, nil
}

func (r *TestDefRepository) loadCases(ctx context.Context, projectID int64) ([]*domain.AGTestCase, error) {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(prefixed("c", "id", "ag_test_suite_id", "name", "_order")...).
		Select(prefixed("c", fdbkColumns...)...).
		From("ag_test_cases c").
		Join(querybuilder.JoinTypeInner, "ag_test_suites", "s", "s.id = c.ag_test_suite_id").
		Where("s.project_id = ?", projectID).
		OrderBy("c._order", true).
		Build()

	var rows []caseRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to get test cases", "projectId", projectID, "error", err)
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	cases := make([]*domain.AGTestCase, 0, len(rows))
	for i := range rows {
		c := rows[i].AGTestCase
		c.NormalFdbkConfig = rows[i].Normal.V
		c.UltimateSubmissionFdbkConfig = rows[i].Ultimate.V
		c.PastLimitSubmissionFdbkConfig = rows[i].PastLimit.V
		c.StaffViewerFdbkConfig = rows[i].Staff.V
		cases = append(cases, &c)
	}
	return cases, nil
}

func (r *TestDefRepository) loadCommands(ctx context.Context, projectID int64) ([]*domain.AGTestCommand, error) {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(prefixed("cmd",
			"id", "ag_test_case_id", "name", "cmd", "_order",
			"expected_return_code",
			"expected_stdout_source", "expected_stdout_text", "expected_stdout_instructor_file",
			"expected_stderr_source", "expected_stderr_text", "expected_stderr_instructor_file",
			"ignore_case", "ignore_whitespace", "ignore_whitespace_changes", "ignore_blank_lines",
			"points_for_correct_return_code", "points_for_correct_stdout", "points_for_correct_stderr",
			"deduction_for_wrong_return_code", "deduction_for_wrong_stdout", "deduction_for_wrong_stderr",
			"first_failed_test_normal_fdbk_config",
		)...).
		Select(prefixed("cmd", fdbkColumns...)...).
		From("ag_test_commands cmd").
		Join(querybuilder.JoinTypeInner, "ag_test_cases", "c", "c.id = cmd.ag_test_case_id").
		Join(querybuilder.JoinTypeInner, "ag_test_suites", "s", "s.id = c.ag_test_suite_id").
		Where("s.project_id = ?", projectID).
		OrderBy("cmd._order", true).
		Build()

	var rows []commandRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to get test commands", "projectId", projectID, "error", err)
		return nil, fmt.Errorf("failed to get test commands: %w", err)
	}

	commands := make([]*domain.AGTestCommand, 0, len(rows))
	for i := range rows {
		cmd := rows[i].AGTestCommand
		cmd.NormalFdbkConfig = rows[i].Normal.V
		cmd.FirstFailedTestNormalFdbkConfig = rows[i].FirstFailure.Ptr()
		cmd.UltimateSubmissionFdbkConfig = rows[i].Ultimate.V
		cmd.PastLimitSubmissionFdbkConfig = rows[i].PastLimit.V
		cmd.StaffViewerFdbkConfig = rows[i].Staff.V
		commands = append(commands, &cmd)
	}
	return commands, nil
}

func (r *TestDefRepository) loadMutationSuites(ctx context.Context, projectID int64) ([]*domain.MutationTestSuite, error) {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select("id", "project_id", "name", "_order", "deferred", "setup_cmd_name",
			"buggy_impl_names", "points_per_exposed_bug", "max_points").
		Select(fdbkColumns...).
		From("mutation_test_suites").
		Where("project_id = ?", projectID).
		OrderBy("_order", true).
		Build()

	var rows []mutationSuiteRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to get mutation test suites", "projectId", projectID, "error", err)
		return nil, fmt.Errorf("failed to get mutation test suites: %w", err)
	}

	suites := make([]*domain.MutationTestSuite, 0, len(rows))
	for i := range rows {
		ms := rows[i].MutationTestSuite
		ms.BuggyImplNames = rows[i].BuggyImpls
		ms.NormalFdbkConfig = rows[i].Normal.V
		ms.UltimateSubmissionFdbkConfig = rows[i].Ultimate.V
		ms.PastLimitSubmissionFdbkConfig = rows[i].PastLimit.V
		ms.StaffViewerFdbkConfig = rows[i].Staff.V
		suites = append(suites, &ms)
	}
	return suites, nil
}
