package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"golang.org/x/sync/singleflight"

	"gitlab.com/agfdbk.net/internal/config"
	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

var _ IFeedbackService = (*FeedbackService)(nil)

type FeedbackService struct {
	submissionRepo secondary.SubmissionRepository
	resultRepo     secondary.ResultRepository
	testDefRepo    secondary.TestDefRepository
	cache          secondary.FeedbackCache
	store          secondary.OutputStore
	differ         secondary.Differ
	logger         primary.Logger
	cfg            *config.FeedbackSvcCfg

	group singleflight.Group
}

func NewFeedbackService(
	submissionRepo secondary.SubmissionRepository,
	resultRepo secondary.ResultRepository,
	testDefRepo secondary.TestDefRepository,
	cache secondary.FeedbackCache,
	store secondary.OutputStore,
	differ secondary.Differ,
	logger primary.Logger,
	cfg *config.FeedbackSvcCfg,
) *FeedbackService {
	return &FeedbackService{
		submissionRepo: submissionRepo,
		resultRepo:     resultRepo,
		testDefRepo:    testDefRepo,
		cache:          cache,
		store:          store,
		differ:         differ,
		logger:         logger,
		cfg:            cfg,
	}
}

func (s *FeedbackService) deps(lookup *TestLookup) Deps {
	return Deps{Lookup: lookup, Store: s.store, Differ: s.differ}
}

func (s *FeedbackService) Evaluate(ctx context.Context, submissionID int64, category domain.FdbkCategory) (*SubmissionView, error) {
	return s.evaluate(ctx, submissionID, category, false)
}

func (s *FeedbackService) EvaluateLive(ctx context.Context, submissionID int64, category domain.FdbkCategory) (*SubmissionView, error) {
	return s.evaluate(ctx, submissionID, category, true)
}

func (s *FeedbackService) evaluate(ctx context.Context, submissionID int64, category domain.FdbkCategory, live bool) (*SubmissionView, error) {
	s.logger.Debug("Evaluating feedback", "submissionId", submissionID, "category", category, "live", live)

	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownFeedbackCategory, category)
	}

	sub, err := s.submissionRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("Failed to get submission", "submissionId", submissionID, "error", err)
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	lookup, err := LoadTestLookup(ctx, s.testDefRepo, sub.ProjectID)
	if err != nil {
		s.logger.Error("Failed to load test definitions", "projectId", sub.ProjectID, "error", err)
		return nil, err
	}

	if live {
		source := *sub
		source.DenormalizedAGTestResults = nil
		sub = &source
	}

	views, err := s.build(ctx, lookup, []*domain.Submission{sub}, category)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *FeedbackService) EvaluateMany(ctx context.Context, projectID int64, subs []*domain.Submission, category domain.FdbkCategory) ([]*SubmissionView, error) {
	s.logger.Debug("Evaluating feedback of many submissions", "projectId", projectID, "count", len(subs), "category", category)

	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownFeedbackCategory, category)
	}
	if len(subs) == 0 {
		return []*SubmissionView{}, nil
	}

	lookup, err := LoadTestLookup(ctx, s.testDefRepo, projectID)
	if err != nil {
		s.logger.Error("Failed to load test definitions", "projectId", projectID, "error", err)
		return nil, err
	}
	return s.build(ctx, lookup, subs, category)
}

// build evaluates subs against one lookup. Submissions without a snapshot
// fall back to their live rows.
func (s *FeedbackService) build(ctx context.Context, lookup *TestLookup, subs []*domain.Submission, category domain.FdbkCategory) ([]*SubmissionView, error) {
	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}

	mutationResults, err := s.resultRepo.LoadMutationSuiteResults(ctx, ids...)
	if err != nil {
		s.logger.Error("Failed to load mutation suite results", "error", err)
		return nil, fmt.Errorf("failed to load mutation suite results: %w", err)
	}

	views := make([]*SubmissionView, 0, len(subs))
	for _, sub := range subs {
		var live []*domain.AGTestSuiteResultTree
		if sub.DenormalizedAGTestResults == nil {
			live, err = s.resultRepo.LoadSuiteResults(ctx, sub.ID)
			if err != nil {
				s.logger.Error("Failed to load suite results", "submissionId", sub.ID, "error", err)
				return nil, fmt.Errorf("failed to load suite results: %w", err)
			}
		}

		view, err := NewSubmissionView(sub, SuiteNodes(sub, live), mutationResults[sub.ID], category, s.deps(lookup))
		if err != nil {
			s.logger.Error("Failed to evaluate feedback", "submissionId", sub.ID, "category", category, "error", err)
			return nil, fmt.Errorf("failed to evaluate submission %d: %w", sub.ID, err)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *FeedbackService) FeedbackJSON(ctx context.Context, submissionID int64, category domain.FdbkCategory) ([]byte, error) {
	if category != domain.FdbkCategoryNormal {
		return s.renderJSON(ctx, submissionID, category)
	}

	sub, err := s.submissionRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if !sub.Status.NormalFdbkCacheable() {
		return s.renderJSON(ctx, submissionID, category)
	}

	cached, ok, err := s.cache.Get(ctx, sub.ProjectID, sub.ID, category)
	if err != nil {
		// cache errors fall through to recomputation
		s.logger.Warn("Failed to read feedback cache", "submissionId", sub.ID, "error", err)
	}
	if ok {
		s.logger.Debug("Feedback cache hit", "submissionId", sub.ID)
		return cached, nil
	}

	key := fmt.Sprintf("%d:%d:%s", sub.ProjectID, sub.ID, category)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		data, err := s.renderJSON(ctx, submissionID, category)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, sub.ProjectID, sub.ID, category, data, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("Failed to write feedback cache", "submissionId", sub.ID, "error", err)
			return data, nil
		}
		s.dropIfChanged(ctx, sub)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// dropIfChanged removes a just written entry when the submission's status or
// snapshot moved on while it was being rendered. Invalidations write the
// submission before deleting, so this must run after Set.
func (s *FeedbackService) dropIfChanged(ctx context.Context, rendered *domain.Submission) {
	current, err := s.submissionRepo.GetSubmission(ctx, rendered.ID)
	if err == nil && current.Status.NormalFdbkCacheable() &&
		current.Status == rendered.Status &&
		reflect.DeepEqual(current.DenormalizedAGTestResults, rendered.DenormalizedAGTestResults) {
		return
	}
	s.logger.Debug("Submission changed during render, dropping cached feedback", "submissionId", rendered.ID)
	if err := s.cache.Delete(ctx, rendered.ProjectID, rendered.ID); err != nil {
		s.logger.Warn("Failed to drop stale feedback", "submissionId", rendered.ID, "error", err)
	}
}

func (s *FeedbackService) renderJSON(ctx context.Context, submissionID int64, category domain.FdbkCategory) ([]byte, error) {
	view, err := s.Evaluate(ctx, submissionID, category)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(ToMap(view))
	if err != nil {
		return nil, fmt.Errorf("failed to encode feedback: %w", err)
	}
	return data, nil
}

func (s *FeedbackService) RebuildSnapshot(ctx context.Context, submissionID int64) (*domain.Submission, error) {
	sub, err := s.submissionRepo.RebuildSnapshot(ctx, submissionID)
	if err != nil {
		s.logger.Error("Failed to rebuild snapshot", "submissionId", submissionID, "error", err)
		return nil, fmt.Errorf("failed to rebuild snapshot: %w", err)
	}

	if err := s.cache.Delete(ctx, sub.ProjectID, sub.ID); err != nil {
		s.logger.Error("Failed to invalidate feedback cache", "submissionId", sub.ID, "error", err)
		return nil, fmt.Errorf("failed to invalidate feedback cache: %w", err)
	}

	s.logger.Info("Snapshot rebuilt", "submissionId", sub.ID, "suites", len(sub.DenormalizedAGTestResults))
	return sub, nil
}

func (s *FeedbackService) TransitionStatus(ctx context.Context, submissionID int64, status domain.SubmissionStatus) error {
	sub, err := s.submissionRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", err)
	}

	if err := s.submissionRepo.UpdateStatus(ctx, submissionID, status); err != nil {
		s.logger.Error("Failed to update submission status", "submissionId", submissionID, "status", status, "error", err)
		return fmt.Errorf("failed to update status: %w", err)
	}

	if status.NormalFdbkCacheable() {
		// rebuilding also invalidates the cache
		if _, err := s.RebuildSnapshot(ctx, submissionID); err != nil {
			return err
		}
	} else if err := s.cache.Delete(ctx, sub.ProjectID, sub.ID); err != nil {
		s.logger.Error("Failed to invalidate feedback cache", "submissionId", sub.ID, "error", err)
		return fmt.Errorf("failed to invalidate feedback cache: %w", err)
	}

	s.logger.Info("Submission status changed", "submissionId", submissionID, "from", sub.Status, "to", status)
	return nil
}

func (s *FeedbackService) FinishGrading(ctx context.Context, submissionID int64) error {
	return s.TransitionStatus(ctx, submissionID, domain.SubmissionStatusFinishedGrading)
}

func (s *FeedbackService) ClearProjectCache(ctx context.Context, projectID int64) error {
	if err := s.cache.ClearProject(ctx, projectID); err != nil {
		s.logger.Error("Failed to clear feedback cache", "projectId", projectID, "error", err)
		return fmt.Errorf("failed to clear feedback cache: %w", err)
	}
	s.logger.Info("Feedback cache cleared", "projectId", projectID)
	return nil
}

func (s *FeedbackService) CommandOutput(ctx context.Context, submissionID int64, category domain.FdbkCategory, cmdResultID int64, stream domain.OutputStream) (io.ReadCloser, error) {
	cmd, err := s.commandView(ctx, submissionID, category, cmdResultID)
	if err != nil {
		return nil, err
	}
	return cmd.Output(ctx, stream)
}

func (s *FeedbackService) CommandDiff(ctx context.Context, submissionID int64, category domain.FdbkCategory, cmdResultID int64, stream domain.OutputStream) (domain.DiffResult, error) {
	cmd, err := s.commandView(ctx, submissionID, category, cmdResultID)
	if err != nil {
		return domain.DiffResult{}, err
	}
	return cmd.Diff(ctx, stream)
}

func (s *FeedbackService) commandView(ctx context.Context, submissionID int64, category domain.FdbkCategory, cmdResultID int64) (*CommandView, error) {
	view, err := s.Evaluate(ctx, submissionID, category)
	if err != nil {
		return nil, err
	}
	cmd, ok := view.CommandResult(cmdResultID)
	if !ok {
		return nil, fmt.Errorf("%w: command result %d", errs.ErrNotFound, cmdResultID)
	}
	return cmd, nil
}

func (s *FeedbackService) SuiteSetupOutput(ctx context.Context, submissionID int64, category domain.FdbkCategory, suiteResultID int64, stream domain.OutputStream) (io.ReadCloser, error) {
	view, err := s.Evaluate(ctx, submissionID, category)
	if err != nil {
		return nil, err
	}
	suite, ok := view.SuiteResult(suiteResultID)
	if !ok {
		return nil, fmt.Errorf("%w: suite result %d", errs.ErrNotFound, suiteResultID)
	}
	return suite.SetupOutput(ctx, stream)
}

func (s *FeedbackService) MutationSuiteSetupOutput(ctx context.Context, submissionID int64, category domain.FdbkCategory, suiteResultID int64, stream domain.OutputStream) (io.ReadCloser, error) {
	view, err := s.Evaluate(ctx, submissionID, category)
	if err != nil {
		return nil, err
	}
	suite, ok := view.MutationSuiteResult(suiteResultID)
	if !ok {
		return nil, fmt.Errorf("%w: mutation suite result %d", errs.ErrNotFound, suiteResultID)
	}
	return suite.SetupOutput(ctx, stream)
}
