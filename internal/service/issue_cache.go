package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

const (
	cacheGenKey = "issues:list:gen"
	cacheTTL    = 30 * time.Second
)

// listCache keeps public issue listings in Redis for a short TTL. Every
// mutation bumps a generation counter, so stale keys simply expire instead
// of needing a keyspace scan. A nil client disables the cache.
type listCache struct {
	client *redis.Client
	logger *zap.Logger
}

func newListCache(client *redis.Client, logger *zap.Logger) *listCache {
	return &listCache{client: client, logger: logger}
}

func (c *listCache) key(ctx context.Context, filter repository.IssueFilter) string {
	gen, err := c.client.Get(ctx, cacheGenKey).Int64()
	if err != nil && err != redis.Nil {
		return ""
	}

	status, typ, search := "", "", ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	if filter.Type != nil {
		typ = string(*filter.Type)
	}
	if filter.Search != nil {
		search = *filter.Search
	}
	return fmt.Sprintf("issues:list:%d:%s|%s|%s", gen, status, typ, search)
}

func (c *listCache) get(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	key := c.key(ctx, filter)
	if key == "" {
		return nil, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var issues []domain.Issue
	if err := json.Unmarshal(raw, &issues); err != nil {
		return nil, false
	}
	return issues, true
}

func (c *listCache) set(ctx context.Context, filter repository.IssueFilter, issues []domain.Issue) {
	if c == nil || c.client == nil {
		return
	}
	key := c.key(ctx, filter)
	if key == "" {
		return
	}

	raw, err := json.Marshal(issues)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		c.logger.Debug("issue list cache write failed", zap.Error(err))
	}
}

func (c *listCache) invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, cacheGenKey).Err(); err != nil {
		c.logger.Debug("issue list cache invalidation failed", zap.Error(err))
	}
}
