package fdbkcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
)

var _ secondary.FeedbackCache = (*FeedbackCache)(nil)

const (
	keyPrefix = "fdbk:project:"
	scanBatch = 100
)

// FeedbackCache implements secondary.FeedbackCache with Redis
type FeedbackCache struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewFeedbackCache creates a new Redis feedback cache
func NewFeedbackCache(redisClient *redis.Client, logger primary.Logger) *FeedbackCache {
	return &FeedbackCache{
		redisClient: redisClient,
		logger:      logger,
	}
}

func projectPattern(projectID int64) string {
	return fmt.Sprintf("%s%d:*", keyPrefix, projectID)
}

func submissionPattern(projectID, submissionID int64) string {
	return fmt.Sprintf("%s%d:submission:%d:*", keyPrefix, projectID, submissionID)
}

func entryKey(projectID, submissionID int64, category domain.FdbkCategory) string {
	return fmt.Sprintf("%s%d:submission:%d:%s", keyPrefix, projectID, submissionID, category)
}

func (c *FeedbackCache) Get(ctx context.Context, projectID, submissionID int64, category domain.FdbkCategory) ([]byte, bool, error) {
	value, err := c.redisClient.Get(ctx, entryKey(projectID, submissionID, category)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		c.logger.Error("Failed to get cached feedback", "submissionId", submissionID, "error", err)
		return nil, false, fmt.Errorf("failed to get cached feedback: %w", err)
	}
	return value, true, nil
}

func (c *FeedbackCache) Set(ctx context.Context, projectID, submissionID int64, category domain.FdbkCategory, value []byte, ttl time.Duration) error {
	if err := c.redisClient.Set(ctx, entryKey(projectID, submissionID, category), value, ttl).Err(); err != nil {
		c.logger.Error("Failed to cache feedback", "submissionId", submissionID, "error", err)
		return fmt.Errorf("failed to cache feedback: %w", err)
	}
	return nil
}

func (c *FeedbackCache) Delete(ctx context.Context, projectID, submissionID int64) error {
	return c.deleteMatching(ctx, submissionPattern(projectID, submissionID))
}

func (c *FeedbackCache) ClearProject(ctx context.Context, projectID int64) error {
	c.logger.Info("Clearing feedback cache", "projectId", projectID)
	return c.deleteMatching(ctx, projectPattern(projectID))
}

// deleteMatching deletes every key matching pattern, one SCAN batch at a time
func (c *FeedbackCache) deleteMatching(ctx context.Context, pattern string) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.redisClient.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan feedback keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete feedback keys: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Debug("Deleted cached feedback", "pattern", pattern, "count", deleted)
	return nil
}
