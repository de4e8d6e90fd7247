package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedCachePrefix is the key prefix for user timelines
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of posts kept per user
	FeedCacheCap = 500

	// FeedCacheTTL is the TTL for an idle timeline (7 days)
	FeedCacheTTL = 7 * 24 * time.Hour
)

// FeedCache keeps, per user, the IDs of posts published by the users they
// follow, scored by publish time in milliseconds.
type FeedCache interface {
	// AddPost adds a post to a user's timeline.
	// Uses pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL)
	AddPost(ctx context.Context, user, postID string, timestamp int64) error

	// GetFeed returns post IDs newest first. With a cursor, only posts
	// strictly older than the cursor score are returned.
	GetFeed(ctx context.Context, user string, cursorScore *float64, limit int) (postIDs []string, scores []float64, err error)

	// Size returns the number of posts in a user's timeline.
	Size(ctx context.Context, user string) (int64, error)
}

// RedisFeedCache implements FeedCache using Redis Sorted Sets.
type RedisFeedCache struct {
	client *redis.Client
	prefix string
}

// NewFeedCache creates a FeedCache for one network. Keys are namespaced by
// the network name so several networks can share a Redis database.
func NewFeedCache(client *redis.Client, network string) FeedCache {
	return &RedisFeedCache{client: client, prefix: FeedCachePrefix + network + ":"}
}

func (c *RedisFeedCache) feedKey(user string) string {
	return c.prefix + user
}

func (c *RedisFeedCache) AddPost(ctx context.Context, user, postID string, timestamp int64) error {
	key := c.feedKey(user)

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(timestamp), Member: postID})
	// 0 is the lowest score (oldest); keep the newest FeedCacheCap
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] AddPost FAILED: user=%s post=%s err=%v", user, postID, err)
		return fmt.Errorf("add post to feed: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) GetFeed(ctx context.Context, user string, cursorScore *float64, limit int) ([]string, []float64, error) {
	key := c.feedKey(user)
	startTime := time.Now()

	var results []redis.Z
	var err error
	if cursorScore == nil {
		results, err = c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	} else {
		results, err = c.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min:   "-inf",
			// exclusive: posts sharing the cursor millisecond are skipped
			Max:   fmt.Sprintf("(%f", *cursorScore),
			Count: int64(limit),
		}).Result()
	}
	if err != nil {
		log.Printf("[FeedCache] GetFeed FAILED: user=%s err=%v", user, err)
		return nil, nil, fmt.Errorf("get feed: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, key, FeedCacheTTL)

	postIDs := make([]string, len(results))
	scores := make([]float64, len(results))
	for i, z := range results {
		id, ok := z.Member.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected feed member %v", z.Member)
		}
		postIDs[i] = id
		scores[i] = z.Score
	}

	log.Printf("[FeedCache] GetFeed OK: user=%s returned=%d duration=%v", user, len(postIDs), time.Since(startTime))
	return postIDs, scores, nil
}

func (c *RedisFeedCache) Size(ctx context.Context, user string) (int64, error) {
	size, err := c.client.ZCard(ctx, c.feedKey(user)).Result()
	if err != nil {
		return 0, fmt.Errorf("get feed size: %w", err)
	}
	return size, nil
}
