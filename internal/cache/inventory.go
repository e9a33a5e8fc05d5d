package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Cache key inventory. All cache keys used by the application are built
// here so invalidation stays in one place.

// TTLs per key family.
const (
	PostTTL    = 5 * time.Minute
	FeedTTL    = 30 * time.Second
	ProfileTTL = 10 * time.Minute
	HonorTTL   = 15 * time.Minute
	WalletTTL  = 1 * time.Minute
)

// PostKey returns the cache key for a single post.
func PostKey(postID uint) string {
	return fmt.Sprintf("post:%d", postID)
}

// FeedKey returns the cache key for a page of the public feed.
func FeedKey(page, limit int) string {
	return fmt.Sprintf("feed:page:%d:limit:%d", page, limit)
}

// ProfileKey returns the cache key for a user's profile.
func ProfileKey(userID uint) string {
	return fmt.Sprintf("profile:user:%d", userID)
}

// HonorBoardKey returns the cache key for the honor leaderboard.
func HonorBoardKey(limit int) string {
	return fmt.Sprintf("honor:board:%d", limit)
}

// WalletHistoryKey returns the cache key for a user's wallet history.
func WalletHistoryKey(userID uint) string {
	return fmt.Sprintf("wallet:history:%d", userID)
}

// InvalidatePost drops the cached post and the feed pages that may contain it.
func InvalidatePost(ctx context.Context, postID uint) {
	Delete(ctx, PostKey(postID))
	InvalidateFeed(ctx)
}

// InvalidateFeed drops all cached feed pages.
func InvalidateFeed(ctx context.Context) {
	c := GetClient()
	if c == nil {
		return
	}
	iter := c.Scan(ctx, 0, "feed:page:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.WarnContext(ctx, "feed invalidation scan failed", "error", err)
		return
	}
	Delete(ctx, keys...)
}

// InvalidateProfile drops a user's cached profile and the honor board, which
// embeds profile counters.
func InvalidateProfile(ctx context.Context, userID uint) {
	Delete(ctx, ProfileKey(userID))
	c := GetClient()
	if c == nil {
		return
	}
	iter := c.Scan(ctx, 0, "honor:board:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err == nil {
		Delete(ctx, keys...)
	}
}

// InvalidateWallet drops a user's cached wallet history.
func InvalidateWallet(ctx context.Context, userID uint) {
	Delete(ctx, WalletHistoryKey(userID))
}
