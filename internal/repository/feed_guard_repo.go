package repository

import (
	"context"
	"time"
)

// FeedGuardRepository deduplicates remote feed imports: a URL that was
// imported recently is refused unless the caller forces a re-import.
type FeedGuardRepository interface {
	// MarkImported records a feed URL as imported with an expiry.
	MarkImported(ctx context.Context, url string, expiry time.Duration) error
	// IsRecentlyImported checks whether the URL is inside its guard window.
	IsRecentlyImported(ctx context.Context, url string) (bool, error)
	// Remove clears the guard for a URL, used by forced imports.
	Remove(ctx context.Context, url string) error
	// Ping reports guard-store reachability for health checks.
	Ping(ctx context.Context) error
}
