package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

var (
	_ secondary.TestDefRepository    = (*Repository)(nil)
	_ secondary.ResultRepository     = (*Repository)(nil)
	_ secondary.SubmissionRepository = (*Repository)(nil)
)

// Repository keeps projects, definitions, submissions and results in memory
type Repository struct {
	mu sync.RWMutex

	projects        map[int64]domain.Project
	groups          map[int64]domain.Group
	tests           map[int64]*domain.ProjectTests
	submissions     map[int64]domain.Submission
	suiteResults    map[int64][]*domain.AGTestSuiteResultTree
	mutationResults map[int64][]*domain.MutationTestSuiteResult

	// MutationQueries counts batched mutation result loads
	MutationQueries int
}

func NewRepository() *Repository {
	return &Repository{
		projects:        make(map[int64]domain.Project),
		groups:          make(map[int64]domain.Group),
		tests:           make(map[int64]*domain.ProjectTests),
		submissions:     make(map[int64]domain.Submission),
		suiteResults:    make(map[int64][]*domain.AGTestSuiteResultTree),
		mutationResults: make(map[int64][]*domain.MutationTestSuiteResult),
	}
}

func (r *Repository) PutProject(p domain.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ID] = p
}

func (r *Repository) PutGroup(g domain.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.ID] = g
}

func (r *Repository) PutTests(t *domain.ProjectTests) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests[t.ProjectID] = t
}

func (r *Repository) PutSubmission(s domain.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[s.ID] = s
}

// PutSuiteResults replaces the live result rows of a submission
func (r *Repository) PutSuiteResults(submissionID int64, results []*domain.AGTestSuiteResultTree) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suiteResults[submissionID] = results
}

func (r *Repository) PutMutationResults(submissionID int64, results []*domain.MutationTestSuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutationResults[submissionID] = results
}

// LoadProjectTests implements secondary.TestDefRepository
func (r *Repository) LoadProjectTests(ctx context.Context, projectID int64) (*domain.ProjectTests, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tests[projectID]; ok {
		return t, nil
	}
	return &domain.ProjectTests{ProjectID: projectID}, nil
}

// LoadSuiteResults implements secondary.ResultRepository
func (r *Repository) LoadSuiteResults(ctx context.Context, submissionID int64) ([]*domain.AGTestSuiteResultTree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.suiteResults[submissionID], nil
}

// LoadMutationSuiteResults implements secondary.ResultRepository
func (r *Repository) LoadMutationSuiteResults(ctx context.Context, submissionIDs ...int64) (map[int64][]*domain.MutationTestSuiteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.MutationQueries++

	out := make(map[int64][]*domain.MutationTestSuiteResult, len(submissionIDs))
	for _, id := range submissionIDs {
		if results, ok := r.mutationResults[id]; ok {
			out[id] = results
		}
	}
	return out, nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID int64) (*domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.submissions[submissionID]; ok {
		return &s, nil
	}
	return nil, fmt.Errorf("%w: submission %d", errs.ErrNotFound, submissionID)
}

func (r *Repository) GetProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.projects[projectID]; ok {
		return &p, nil
	}
	return nil, fmt.Errorf("%w: project %d", errs.ErrNotFound, projectID)
}

func (r *Repository) GetGroup(ctx context.Context, groupID int64) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.groups[groupID]; ok {
		return &g, nil
	}
	return nil, fmt.Errorf("%w: group %d", errs.ErrNotFound, groupID)
}

func (r *Repository) GetGroups(ctx context.Context, projectID int64, groupIDs ...int64) ([]*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(groupIDs) == 0 {
		var all []*domain.Group
		for _, g := range r.groups {
			if g.ProjectID == projectID {
				g := g
				all = append(all, &g)
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
		return all, nil
	}

	out := make([]*domain.Group, 0, len(groupIDs))
	for _, id := range groupIDs {
		g, ok := r.groups[id]
		if !ok || g.ProjectID != projectID {
			return nil, fmt.Errorf("%w: group %d in project %d", errs.ErrNotFound, id, projectID)
		}
		out = append(out, &g)
	}
	return out, nil
}

func (r *Repository) ListFinishedByGroups(ctx context.Context, groupIDs []int64) (map[int64][]*domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int64]bool, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = true
	}

	out := make(map[int64][]*domain.Submission, len(groupIDs))
	for _, s := range r.submissions {
		if !wanted[s.GroupID] || s.Status != domain.SubmissionStatusFinishedGrading {
			continue
		}
		s := s
		out[s.GroupID] = append(out[s.GroupID], &s)
	}
	for _, subs := range out {
		sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	}
	return out, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, submissionID int64, status domain.SubmissionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[submissionID]
	if !ok {
		return fmt.Errorf("%w: submission %d", errs.ErrNotFound, submissionID)
	}
	s.Status = status
	r.submissions[submissionID] = s
	return nil
}

// RebuildSnapshot holds the write lock for the whole rebuild
func (r *Repository) RebuildSnapshot(ctx context.Context, submissionID int64) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[submissionID]
	if !ok {
		return nil, fmt.Errorf("%w: submission %d", errs.ErrNotFound, submissionID)
	}
	s.DenormalizedAGTestResults = domain.NewDenormalizedSnapshot(r.suiteResults[submissionID])
	r.submissions[submissionID] = s
	return &s, nil
}
