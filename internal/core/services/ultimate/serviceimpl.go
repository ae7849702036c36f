package ultimate

import (
	"context"
	"fmt"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

var _ IUltimateService = (*UltimateService)(nil)

type UltimateService struct {
	submissionRepo secondary.SubmissionRepository
	evaluator      Evaluator
	logger         primary.Logger
}

func NewUltimateService(
	submissionRepo secondary.SubmissionRepository,
	evaluator Evaluator,
	logger primary.Logger,
) *UltimateService {
	return &UltimateService{
		submissionRepo: submissionRepo,
		evaluator:      evaluator,
		logger:         logger,
	}
}

func (s *UltimateService) GetUltimateSubmission(ctx context.Context, groupID int64, username string) (*feedback.SubmissionView, error) {
	s.logger.Debug("Getting ultimate submission", "groupId", groupID, "username", username)

	group, err := s.submissionRepo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	project, err := s.submissionRepo.GetProject(ctx, group.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	finished, err := s.submissionRepo.ListFinishedByGroups(ctx, []int64{groupID})
	if err != nil {
		s.logger.Error("Failed to list finished submissions", "groupId", groupID, "error", err)
		return nil, fmt.Errorf("failed to list finished submissions: %w", err)
	}

	candidates := finished[groupID]
	if username != "" {
		candidates = CountingFor(candidates, username)
	}

	views, err := s.selectAll(ctx, project, [][]*domain.Submission{candidates})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *UltimateService) GetUltimateSubmissions(ctx context.Context, projectID int64, groupIDs ...int64) ([]UltimateSubmission, error) {
	s.logger.Debug("Getting ultimate submissions", "projectId", projectID, "groups", len(groupIDs))

	project, err := s.submissionRepo.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	groups, err := s.submissionRepo.GetGroups(ctx, projectID, groupIDs...)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}

	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	finished, err := s.submissionRepo.ListFinishedByGroups(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to list finished submissions", "projectId", projectID, "error", err)
		return nil, fmt.Errorf("failed to list finished submissions: %w", err)
	}

	candidates := make([][]*domain.Submission, 0, len(groups))
	for _, g := range groups {
		candidates = append(candidates, finished[g.ID])
	}

	views, err := s.selectAll(ctx, project, candidates)
	if err != nil {
		return nil, err
	}

	out := make([]UltimateSubmission, 0, len(groups))
	for i, g := range groups {
		out = append(out, UltimateSubmission{Group: g, View: views[i]})
	}
	return out, nil
}

// selectAll applies the project's policy to each candidate set and returns
// the chosen submissions evaluated under max feedback, nil where a set is empty.
func (s *UltimateService) selectAll(ctx context.Context, project *domain.Project, candidates [][]*domain.Submission) ([]*feedback.SubmissionView, error) {
	chosen := make([]*domain.Submission, len(candidates))
	// views already built under max while scoring
	built := map[int64]*feedback.SubmissionView{}

	switch project.UltimatePolicy {
	case domain.UltimatePolicyMostRecent:
		for i, subs := range candidates {
			chosen[i] = SelectMostRecent(subs)
		}

	case domain.UltimatePolicyBest, domain.UltimatePolicyBestWithNormalFdbk:
		category, err := project.UltimatePolicy.ScoringCategory()
		if err != nil {
			return nil, err
		}
		var all []*domain.Submission
		for _, subs := range candidates {
			all = append(all, subs...)
		}
		scored, err := s.evaluator.EvaluateMany(ctx, project.ID, all, category)
		if err != nil {
			return nil, fmt.Errorf("failed to score submissions: %w", err)
		}

		points := make(map[int64]int, len(scored))
		for _, v := range scored {
			points[v.PK()] = v.TotalPoints()
			if category == domain.FdbkCategoryMax {
				built[v.PK()] = v
			}
		}
		for i, subs := range candidates {
			chosen[i] = SelectBest(subs, points)
		}

	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownUltimatePolicy, project.UltimatePolicy)
	}

	var missing []*domain.Submission
	for _, sub := range chosen {
		if sub != nil && built[sub.ID] == nil {
			missing = append(missing, sub)
		}
	}
	if len(missing) > 0 {
		views, err := s.evaluator.EvaluateMany(ctx, project.ID, missing, domain.FdbkCategoryMax)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate ultimate submissions: %w", err)
		}
		for _, v := range views {
			built[v.PK()] = v
		}
	}

	views := make([]*feedback.SubmissionView, len(chosen))
	for i, sub := range chosen {
		if sub != nil {
			views[i] = built[sub.ID]
		}
	}
	return views, nil
}
