package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
)

var _ secondary.FeedbackCache = (*FeedbackCache)(nil)

// FeedbackCache is an in-process secondary.FeedbackCache
type FeedbackCache struct {
	c *cache.Cache
}

func NewFeedbackCache(defaultTTL time.Duration) *FeedbackCache {
	return &FeedbackCache{c: cache.New(defaultTTL, 10*time.Minute)}
}

func projectPrefix(projectID int64) string {
	return fmt.Sprintf("fdbk:project:%d:", projectID)
}

func submissionPrefix(projectID, submissionID int64) string {
	return fmt.Sprintf("%ssubmission:%d:", projectPrefix(projectID), submissionID)
}

func (f *FeedbackCache) Get(ctx context.Context, projectID, submissionID int64, category domain.FdbkCategory) ([]byte, bool, error) {
	v, ok := f.c.Get(submissionPrefix(projectID, submissionID) + category.String())
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (f *FeedbackCache) Set(ctx context.Context, projectID, submissionID int64, category domain.FdbkCategory, value []byte, ttl time.Duration) error {
	f.c.Set(submissionPrefix(projectID, submissionID)+category.String(), value, ttl)
	return nil
}

func (f *FeedbackCache) Delete(ctx context.Context, projectID, submissionID int64) error {
	f.deletePrefix(submissionPrefix(projectID, submissionID))
	return nil
}

func (f *FeedbackCache) ClearProject(ctx context.Context, projectID int64) error {
	f.deletePrefix(projectPrefix(projectID))
	return nil
}

func (f *FeedbackCache) deletePrefix(prefix string) {
	for key := range f.c.Items() {
		if strings.HasPrefix(key, prefix) {
			f.c.Delete(key)
		}
	}
}
