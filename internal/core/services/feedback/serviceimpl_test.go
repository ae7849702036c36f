package feedback

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/agfdbk.net/internal/adapter/logging"
	"gitlab.com/agfdbk.net/internal/adapter/memory"
	"gitlab.com/agfdbk.net/internal/config"
	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

type serviceFixture struct {
	svc   *FeedbackService
	repo  *memory.Repository
	cache *memory.FeedbackCache
	store *memory.OutputStore
	b     *builder
	cmds  []commandPair
}

func newServiceFixture(t *testing.T, status domain.SubmissionStatus) *serviceFixture {
	t.Helper()
	repo := memory.NewRepository()
	cache := memory.NewFeedbackCache(time.Minute)
	store := memory.NewOutputStore()

	b := newBuilder(1)
	_, cmds := threeCaseSuite(b, true, false, true)
	sub := b.submission()
	sub.Status = status

	repo.PutProject(domain.Project{ID: testProjectID, UltimatePolicy: domain.UltimatePolicyMostRecent})
	repo.PutTests(b.tests)
	repo.PutSubmission(*sub)
	repo.PutSuiteResults(sub.ID, b.results)

	svc := NewFeedbackService(repo, repo, repo, cache, store, &stubDiffer{}, logging.NewNopLogger(),
		&config.FeedbackSvcCfg{CacheBackend: "memory", CacheTTL: time.Minute})

	return &serviceFixture{svc: svc, repo: repo, cache: cache, store: store, b: b, cmds: cmds}
}

func TestEvaluateReadsSnapshot(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusBeingGraded)
	ctx := context.Background()

	// no snapshot yet: live rows
	view, err := f.svc.Evaluate(ctx, 1, domain.FdbkCategoryMax)
	require.NoError(t, err)
	assert.Equal(t, 7, view.TotalPoints())

	_, err = f.svc.RebuildSnapshot(ctx, 1)
	require.NoError(t, err)

	f.cmds[1].result.StdoutCorrect = boolPtr(true)

	view, err = f.svc.Evaluate(ctx, 1, domain.FdbkCategoryMax)
	require.NoError(t, err)
	assert.Equal(t, 7, view.TotalPoints())

	live, err := f.svc.EvaluateLive(ctx, 1, domain.FdbkCategoryMax)
	require.NoError(t, err)
	assert.Equal(t, 9, live.TotalPoints())

	_, err = f.svc.RebuildSnapshot(ctx, 1)
	require.NoError(t, err)
	view, err = f.svc.Evaluate(ctx, 1, domain.FdbkCategoryMax)
	require.NoError(t, err)
	assert.Equal(t, 9, view.TotalPoints())
}

func TestEvaluateErrors(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	ctx := context.Background()

	_, err := f.svc.Evaluate(ctx, 1, "instructor")
	assert.True(t, errors.Is(err, errs.ErrUnknownFeedbackCategory))

	_, err = f.svc.Evaluate(ctx, 404, domain.FdbkCategoryMax)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestFeedbackJSONCachesFinishedNormalFeedback(t *testing.T) {
	for _, status := range []domain.SubmissionStatus{
		domain.SubmissionStatusFinishedGrading,
		domain.SubmissionStatusWaitingForDeferred,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newServiceFixture(t, status)
			ctx := context.Background()

			data, err := f.svc.FeedbackJSON(ctx, 1, domain.FdbkCategoryNormal)
			require.NoError(t, err)

			cached, ok, err := f.cache.Get(ctx, testProjectID, 1, domain.FdbkCategoryNormal)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, data, cached)

			again, err := f.svc.FeedbackJSON(ctx, 1, domain.FdbkCategoryNormal)
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestFeedbackJSONNeverCachesChangingOrNonNormal(t *testing.T) {
	ctx := context.Background()

	for _, status := range []domain.SubmissionStatus{
		domain.SubmissionStatusReceived,
		domain.SubmissionStatusQueued,
		domain.SubmissionStatusBeingGraded,
	} {
		f := newServiceFixture(t, status)
		_, err := f.svc.FeedbackJSON(ctx, 1, domain.FdbkCategoryNormal)
		require.NoError(t, err)
		_, ok, _ := f.cache.Get(ctx, testProjectID, 1, domain.FdbkCategoryNormal)
		assert.False(t, ok, status)
	}

	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	for _, cat := range allCategories[1:] {
		_, err := f.svc.FeedbackJSON(ctx, 1, cat)
		require.NoError(t, err)
		_, ok, _ := f.cache.Get(ctx, testProjectID, 1, cat)
		assert.False(t, ok, cat)
	}
}

// rebuildingCache runs onSet once, right before the first Set lands
type rebuildingCache struct {
	*memory.FeedbackCache
	onSet func()
}

func (c *rebuildingCache) Set(ctx context.Context, projectID, submissionID int64, category domain.FdbkCategory, value []byte, ttl time.Duration) error {
	if c.onSet != nil {
		hook := c.onSet
		c.onSet = nil
		hook()
	}
	return c.FeedbackCache.Set(ctx, projectID, submissionID, category, value, ttl)
}

func TestFeedbackJSONDropsRenderOvertakenByRebuild(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	ctx := context.Background()

	cache := &rebuildingCache{FeedbackCache: f.cache}
	svc := NewFeedbackService(f.repo, f.repo, f.repo, cache, f.store, &stubDiffer{}, logging.NewNopLogger(),
		&config.FeedbackSvcCfg{CacheBackend: "memory", CacheTTL: time.Minute})
	cache.onSet = func() {
		f.cmds[1].result.StdoutCorrect = boolPtr(true)
		_, err := svc.RebuildSnapshot(ctx, 1)
		require.NoError(t, err)
	}

	_, err := svc.FeedbackJSON(ctx, 1, domain.FdbkCategoryNormal)
	require.NoError(t, err)

	_, ok, err := f.cache.Get(ctx, testProjectID, 1, domain.FdbkCategoryNormal)
	require.NoError(t, err)
	assert.False(t, ok, "feedback rendered from the old results must not stay cached")

	fresh, err := svc.FeedbackJSON(ctx, 1, domain.FdbkCategoryNormal)
	require.NoError(t, err)
	cached, ok, err := f.cache.Get(ctx, testProjectID, 1, domain.FdbkCategoryNormal)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fresh, cached)
}

func TestFeedbackJSONDropsRenderOvertakenByStatusChange(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	ctx := context.Background()

	cache := &rebuildingCache{FeedbackCache: f.cache}
	svc := NewFeedbackService(f.repo, f.repo, f.repo, cache, f.store, &stubDiffer{}, logging.NewNopLogger(),
		&config.FeedbackSvcCfg{CacheBackend: "memory", CacheTTL: time.Minute})
	cache.onSet = func() {
		require.NoError(t, svc.TransitionStatus(ctx, 1, domain.SubmissionStatusBeingGraded))
	}

	_, err := svc.FeedbackJSON(ctx, 1, domain.FdbkCategoryNormal)
	require.NoError(t, err)

	_, ok, err := f.cache.Get(ctx, testProjectID, 1, domain.FdbkCategoryNormal)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFinishGradingInvalidatesCache(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusWaitingForDeferred)
	ctx := context.Background()

	_, err := f.svc.FeedbackJSON(ctx, 1, domain.FdbkCategoryNormal)
	require.NoError(t, err)

	require.NoError(t, f.svc.FinishGrading(ctx, 1))

	_, ok, _ := f.cache.Get(ctx, testProjectID, 1, domain.FdbkCategoryNormal)
	assert.False(t, ok)

	sub, err := f.repo.GetSubmission(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStatusFinishedGrading, sub.Status)
	assert.NotNil(t, sub.DenormalizedAGTestResults)
}

func TestClearProjectCacheIsScoped(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	ctx := context.Background()

	require.NoError(t, f.cache.Set(ctx, 1, 10, domain.FdbkCategoryNormal, []byte("a"), time.Minute))
	require.NoError(t, f.cache.Set(ctx, 2, 20, domain.FdbkCategoryNormal, []byte("b"), time.Minute))
	require.NoError(t, f.cache.Set(ctx, 12, 30, domain.FdbkCategoryNormal, []byte("c"), time.Minute))

	require.NoError(t, f.svc.ClearProjectCache(ctx, 1))

	_, ok, _ := f.cache.Get(ctx, 1, 10, domain.FdbkCategoryNormal)
	assert.False(t, ok)
	_, ok, _ = f.cache.Get(ctx, 2, 20, domain.FdbkCategoryNormal)
	assert.True(t, ok)
	_, ok, _ = f.cache.Get(ctx, 12, 30, domain.FdbkCategoryNormal)
	assert.True(t, ok)
}

func TestCommandOutputThroughService(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	ctx := context.Background()
	cmd := f.cmds[0]
	f.store.Put(cmd.result.StdoutFilename, []byte("hello\n"))

	rc, err := f.svc.CommandOutput(ctx, 1, domain.FdbkCategoryMax, cmd.result.ID, domain.OutputStdout)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	_, err = f.svc.CommandOutput(ctx, 1, domain.FdbkCategoryNormal, cmd.result.ID, domain.OutputStdout)
	assert.True(t, errors.Is(err, errs.ErrNotVisible))

	_, err = f.svc.CommandOutput(ctx, 1, domain.FdbkCategoryMax, 31337, domain.OutputStdout)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	diff, err := f.svc.CommandDiff(ctx, 1, domain.FdbkCategoryMax, cmd.result.ID, domain.OutputStdout)
	require.NoError(t, err)
	assert.True(t, diff.DiffPass())
}

func TestSuiteSetupOutputThroughService(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	ctx := context.Background()
	suiteResult := f.b.results[0]
	f.store.Put(suiteResult.SetupStdoutFilename, []byte("built\n"))

	rc, err := f.svc.SuiteSetupOutput(ctx, 1, domain.FdbkCategoryMax, suiteResult.ID, domain.OutputStdout)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "built\n", string(data))

	_, err = f.svc.SuiteSetupOutput(ctx, 1, domain.FdbkCategoryNormal, suiteResult.ID, domain.OutputStdout)
	assert.True(t, errors.Is(err, errs.ErrNotVisible))
}

func TestMutationSuiteSetupOutputThroughService(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	ctx := context.Background()
	def, result := f.b.mutationSuite("mutants", 0, []string{"b1"}, []string{"b1", "b2"}, 1)
	def.NormalFdbkConfig.ShowSetupStdout = false
	result.SetupStdoutFilename = "mutation_setup_stdout"
	f.repo.PutTests(f.b.tests)
	f.repo.PutMutationResults(1, f.b.mutation)
	f.store.Put("mutation_setup_stdout", []byte("compiled\n"))

	rc, err := f.svc.MutationSuiteSetupOutput(ctx, 1, domain.FdbkCategoryMax, result.ID, domain.OutputStdout)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "compiled\n", string(data))

	_, err = f.svc.MutationSuiteSetupOutput(ctx, 1, domain.FdbkCategoryNormal, result.ID, domain.OutputStdout)
	assert.True(t, errors.Is(err, errs.ErrNotVisible))

	_, err = f.svc.MutationSuiteSetupOutput(ctx, 1, domain.FdbkCategoryMax, 31337, domain.OutputStdout)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestEvaluateManyBatchesMutationResults(t *testing.T) {
	f := newServiceFixture(t, domain.SubmissionStatusFinishedGrading)
	ctx := context.Background()

	var subs []*domain.Submission
	for id := int64(1); id <= 3; id++ {
		sub := f.b.submission()
		sub.ID = id
		sub.DenormalizedAGTestResults = domain.NewDenormalizedSnapshot(f.b.results)
		subs = append(subs, sub)
	}

	views, err := f.svc.EvaluateMany(ctx, testProjectID, subs, domain.FdbkCategoryMax)
	require.NoError(t, err)
	require.Len(t, views, 3)
	for i, v := range views {
		assert.Equal(t, subs[i].ID, v.PK())
		assert.Equal(t, 7, v.TotalPoints())
	}
	assert.Equal(t, 1, f.repo.MutationQueries)
}
