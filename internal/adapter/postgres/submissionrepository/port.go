package submissionrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gitlab.com/agfdbk.net/internal/adapter/postgres/pgjson"
	"gitlab.com/agfdbk.net/internal/adapter/postgres/resultrepository"
	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
	querybuilder "gitlab.com/agfdbk.net/internal/utils"
)

var _ secondary.SubmissionRepository = (*SubmissionRepository)(nil)

// SubmissionRepository implements secondary.SubmissionRepository with PostgreSQL
type SubmissionRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// NewSubmissionRepository creates a new PostgreSQL submission repository
func NewSubmissionRepository(db *sqlx.DB, logger primary.Logger, schema string) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

type submissionRow struct {
	domain.Submission
	NotCountingFor pq.StringArray                                  `db:"does_not_count_for"`
	Snapshot       pgjson.JSONB[domain.DenormalizedAGTestResults] `db:"denormalized_ag_test_results"`
}

func (row *submissionRow) toDomain() *domain.Submission {
	s := row.Submission
	s.DoesNotCountFor = row.NotCountingFor
	if row.Snapshot.Valid {
		s.DenormalizedAGTestResults = row.Snapshot.V
	}
	return &s
}

type groupRow struct {
	domain.Group
	Members pq.StringArray `db:"member_names"`
}

func submissionColumns() []string {
	tbl := domain.GetSubmissionTable()
	return []string{
		tbl.ID, tbl.GroupID, tbl.ProjectID, tbl.Timestamp, tbl.Status,
		tbl.DoesNotCountFor, tbl.DenormalizedAGTestResults,
	}
}

func (r *SubmissionRepository) GetSubmission(ctx context.Context, submissionID int64) (*domain.Submission, error) {
	tbl := domain.GetSubmissionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(submissionColumns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ID), submissionID).
		Build()

	var row submissionRow
	if err := r.db.GetContext(ctx, &row, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: submission %d", errs.ErrNotFound, submissionID)
		}
		r.logger.Error("Failed to get submission", "submissionId", submissionID, "error", err)
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SubmissionRepository) GetProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select("id", "name", "max_group_size", "ultimate_submission_policy").
		From("projects").
		Where("id = ?", projectID).
		Build()

	var project domain.Project
	if err := r.db.GetContext(ctx, &project, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %d", errs.ErrNotFound, projectID)
		}
		r.logger.Error("Failed to get project", "projectId", projectID, "error", err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

func (r *SubmissionRepository) GetGroup(ctx context.Context, groupID int64) (*domain.Group, error) {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select("id", "project_id", "member_names").
		From("groups").
		Where("id = ?", groupID).
		Build()

	var row groupRow
	if err := r.db.GetContext(ctx, &row, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: group %d", errs.ErrNotFound, groupID)
		}
		r.logger.Error("Failed to get group", "groupId", groupID, "error", err)
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	g := row.Group
	g.MemberNames = row.Members
	return &g, nil
}

func (r *SubmissionRepository) GetGroups(ctx context.Context, projectID int64, groupIDs ...int64) ([]*domain.Group, error) {
	qb := querybuilder.NewQueryBuilder(r.schema).
		Select("id", "project_id", "member_names").
		From("groups").
		Where("project_id = ?", projectID)
	if len(groupIDs) > 0 {
		qb = qb.And("id = ANY(?)", pq.Array(groupIDs))
	}
	query, args := qb.OrderBy("id", true).Build()

	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to get groups", "projectId", projectID, "error", err)
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}

	byID := make(map[int64]*domain.Group, len(rows))
	all := make([]*domain.Group, 0, len(rows))
	for i := range rows {
		g := rows[i].Group
		g.MemberNames = rows[i].Members
		byID[g.ID] = &g
		all = append(all, &g)
	}
	if len(groupIDs) == 0 {
		return all, nil
	}

	out := make([]*domain.Group, 0, len(groupIDs))
	for _, id := range groupIDs {
		g, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: group %d in project %d", errs.ErrNotFound, id, projectID)
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *SubmissionRepository) ListFinishedByGroups(ctx context.Context, groupIDs []int64) (map[int64][]*domain.Submission, error) {
	out := make(map[int64][]*domain.Submission, len(groupIDs))
	if len(groupIDs) == 0 {
		return out, nil
	}

	tbl := domain.GetSubmissionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(submissionColumns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ANY(?)", tbl.GroupID), pq.Array(groupIDs)).
		And(fmt.Sprintf("%s = ?", tbl.Status), domain.SubmissionStatusFinishedGrading).
		OrderBy(tbl.ID, true).
		Build()

	var rows []submissionRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to list finished submissions", "groups", len(groupIDs), "error", err)
		return nil, fmt.Errorf("failed to list finished submissions: %w", err)
	}
	for i := range rows {
		s := rows[i].toDomain()
		out[s.GroupID] = append(out[s.GroupID], s)
	}
	return out, nil
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, submissionID int64, status domain.SubmissionStatus) error {
	tbl := domain.GetSubmissionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Update(tbl.TableName(), querybuilder.UpdateData{tbl.Status: status}).
		Where(fmt.Sprintf("%s = ?", tbl.ID), submissionID).
		Build()

	res, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		r.logger.Error("Failed to update submission status", "submissionId", submissionID, "error", err)
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: submission %d", errs.ErrNotFound, submissionID)
	}
	return nil
}

// RebuildSnapshot locks the submission row, reads the live result tree in
// the same transaction and stores it as the new snapshot.
func (r *SubmissionRepository) RebuildSnapshot(ctx context.Context, submissionID int64) (*domain.Submission, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tbl := domain.GetSubmissionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(submissionColumns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ID), submissionID).
		ForUpdate().
		Build()

	var row submissionRow
	if err := tx.GetContext(ctx, &row, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: submission %d", errs.ErrNotFound, submissionID)
		}
		return nil, fmt.Errorf("failed to lock submission: %w", err)
	}

	results, err := resultrepository.NewTx(tx, r.logger, r.schema).LoadSuiteResults(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	snapshot := domain.NewDenormalizedSnapshot(results)

	query, args = querybuilder.NewQueryBuilder(r.schema).
		Update(tbl.TableName(), querybuilder.UpdateData{tbl.DenormalizedAGTestResults: pgjson.New(snapshot)}).
		Where(fmt.Sprintf("%s = ?", tbl.ID), submissionID).
		Build()
	if _, err := tx.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to store snapshot", "submissionId", submissionID, "error", err)
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	sub := row.toDomain()
	sub.DenormalizedAGTestResults = snapshot
	r.logger.Info("Rebuilt result snapshot", "submissionId", submissionID, "suites", len(snapshot))
	return sub, nil
}
