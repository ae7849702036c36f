package resultrepository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
	querybuilder "gitlab.com/agfdbk.net/internal/utils"
)

var _ secondary.ResultRepository = &resultRepo{}

type resultRepo struct {
	db     sqlx.QueryerContext
	logger primary.Logger
	schema string
}

func New(db *sqlx.DB, logger primary.Logger, schema string) secondary.ResultRepository {
	return newResultRepo(db, logger, schema)
}

// NewTx reads results inside an open transaction
func NewTx(tx *sqlx.Tx, logger primary.Logger, schema string) secondary.ResultRepository {
	return newResultRepo(tx, logger, schema)
}

func newResultRepo(db sqlx.QueryerContext, logger primary.Logger, schema string) *resultRepo {
	return &resultRepo{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

var suiteResultColumns = []string{
	"id", "ag_test_suite_id", "submission_id",
	"setup_return_code", "setup_timed_out",
	"setup_stdout_filename", "setup_stderr_filename",
	"setup_stdout_truncated", "setup_stderr_truncated",
}

var commandResultColumns = []string{
	"id", "ag_test_command_id", "ag_test_case_result_id",
	"return_code", "return_code_correct", "timed_out",
	"stdout_correct", "stderr_correct",
	"stdout_filename", "stderr_filename",
	"stdout_truncated", "stderr_truncated",
}

// LoadSuiteResults reads the result tree of a submission with one query per level
func (u resultRepo) LoadSuiteResults(ctx context.Context, submissionID int64) ([]*domain.AGTestSuiteResultTree, error) {
	query, args := querybuilder.NewQueryBuilder(u.schema).
		Select(suiteResultColumns...).
		From("ag_test_suite_results").
		Where("submission_id = ?", submissionID).
		OrderBy("id", true).
		Build()

	var suiteRows []domain.AGTestSuiteResult
	if err := sqlx.SelectContext(ctx, u.db, &suiteRows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		u.logger.Error("Failed to get suite results", "submissionId", submissionID, "error", err)
		return nil, fmt.Errorf("failed to get suite results: %w", err)
	}
	if len(suiteRows) == 0 {
		return nil, nil
	}

	suiteIDs := make([]int64, len(suiteRows))
	for i, sr := range suiteRows {
		suiteIDs[i] = sr.ID
	}

	query, args = querybuilder.NewQueryBuilder(u.schema).
		Select("id", "ag_test_case_id", "ag_test_suite_result_id").
		From("ag_test_case_results").
		Where("ag_test_suite_result_id = ANY(?)", pq.Array(suiteIDs)).
		OrderBy("id", true).
		Build()

	var caseRows []domain.AGTestCaseResult
	if err := sqlx.SelectContext(ctx, u.db, &caseRows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		u.logger.Error("Failed to get case results", "submissionId", submissionID, "error", err)
		return nil, fmt.Errorf("failed to get case results: %w", err)
	}

	caseIDs := make([]int64, len(caseRows))
	for i, cr := range caseRows {
		caseIDs[i] = cr.ID
	}

	var cmdRows []domain.AGTestCommandResult
	if len(caseIDs) > 0 {
		query, args = querybuilder.NewQueryBuilder(u.schema).
			Select(commandResultColumns...).
			From("ag_test_command_results").
			Where("ag_test_case_result_id = ANY(?)", pq.Array(caseIDs)).
			OrderBy("id", true).
			Build()

		if err := sqlx.SelectContext(ctx, u.db, &cmdRows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
			u.logger.Error("Failed to get command results", "submissionId", submissionID, "error", err)
			return nil, fmt.Errorf("failed to get command results: %w", err)
		}
	}

	return assembleTree(suiteRows, caseRows, cmdRows), nil
}

func assembleTree(suites []domain.AGTestSuiteResult, cases []domain.AGTestCaseResult, cmds []domain.AGTestCommandResult) []*domain.AGTestSuiteResultTree {
	casesByID := make(map[int64]*domain.AGTestCaseResultTree, len(cases))
	casesBySuite := make(map[int64][]*domain.AGTestCaseResultTree)
	for i := range cases {
		tree := &domain.AGTestCaseResultTree{AGTestCaseResult: cases[i]}
		casesByID[tree.ID] = tree
		casesBySuite[tree.SuiteResultID] = append(casesBySuite[tree.SuiteResultID], tree)
	}
	for i := range cmds {
		if c, ok := casesByID[cmds[i].CaseResultID]; ok {
			cmd := cmds[i]
			c.CommandResults = append(c.CommandResults, &cmd)
		}
	}

	out := make([]*domain.AGTestSuiteResultTree, 0, len(suites))
	for i := range suites {
		out = append(out, &domain.AGTestSuiteResultTree{
			AGTestSuiteResult: suites[i],
			CaseResults:       casesBySuite[suites[i].ID],
		})
	}
	return out
}

type mutationResultRow struct {
	domain.MutationTestSuiteResult
	Student  pq.StringArray `db:"student_tests"`
	Invalid  pq.StringArray `db:"invalid_tests"`
	TimedOut pq.StringArray `db:"timed_out_tests"`
	Exposed  pq.StringArray `db:"bugs_exposed"`
}

func (u resultRepo) LoadMutationSuiteResults(ctx context.Context, submissionIDs ...int64) (map[int64][]*domain.MutationTestSuiteResult, error) {
	out := make(map[int64][]*domain.MutationTestSuiteResult, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return out, nil
	}

	query, args := querybuilder.NewQueryBuilder(u.schema).
		Select(
			"id", "mutation_test_suite_id", "submission_id",
			"setup_return_code", "setup_timed_out",
			"setup_stdout_filename", "setup_stderr_filename",
			"student_tests", "invalid_tests", "timed_out_tests", "bugs_exposed",
		).
		From("mutation_test_suite_results").
		Where("submission_id = ANY(?)", pq.Array(submissionIDs)).
		OrderBy("id", true).
		Build()

	var rows []mutationResultRow
	if err := sqlx.SelectContext(ctx, u.db, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		u.logger.Error("Failed to get mutation suite results", "submissions", len(submissionIDs), "error", err)
		return nil, fmt.Errorf("failed to get mutation suite results: %w", err)
	}

	for i := range rows {
		res := rows[i].MutationTestSuiteResult
		res.StudentTests = rows[i].Student
		res.InvalidTests = rows[i].Invalid
		res.TimedOutTests = rows[i].TimedOut
		res.BugsExposed = rows[i].Exposed
		out[res.SubmissionID] = append(out[res.SubmissionID], &res)
	}
	return out, nil
}
