package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/feed-service/pkg/utils"
)

const importedFeedPrefix = "feed:imported:"

// FeedGuardRepoImpl provides a concrete implementation for the
// FeedGuardRepository interface using Redis.
type FeedGuardRepoImpl struct {
	client *redis.Client
}

// NewFeedGuardRepo creates a new instance of FeedGuardRepoImpl.
func NewFeedGuardRepo(client *redis.Client) *FeedGuardRepoImpl {
	return &FeedGuardRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a feed URL by hashing it.
func (r *FeedGuardRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", importedFeedPrefix, utils.HashURL(url))
}

// MarkImported records a feed URL as imported by setting a key in Redis
// with a specific expiry time.
func (r *FeedGuardRepoImpl) MarkImported(ctx context.Context, url string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(url), "1", expiry).Err()
}

// IsRecentlyImported checks if a feed URL is inside its guard window.
func (r *FeedGuardRepoImpl) IsRecentlyImported(ctx context.Context, url string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(url)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// Remove clears the guard for a URL, used by forced re-imports.
func (r *FeedGuardRepoImpl) Remove(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.generateKey(url)).Err()
}

// Ping reports Redis reachability.
func (r *FeedGuardRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
