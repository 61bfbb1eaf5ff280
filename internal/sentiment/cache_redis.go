package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "sentiment:compound:"
	cacheTTL       = 24 * time.Hour
	cacheOpTimeout = 200 * time.Millisecond
)

// RedisCache stores compound scores keyed by a hash of the comment text.
// All operations are best-effort; Redis being down degrades to plain scoring.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:16])
}

func (c *RedisCache) GetCompound(ctx context.Context, text string) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, cacheKey(text)).Result()
	if err != nil {
		return 0, false
	}

	compound, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return compound, true
}

func (c *RedisCache) SetCompound(ctx context.Context, text string, compound float64) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	key := cacheKey(text)
	if err := c.client.Set(ctx, key, strconv.FormatFloat(compound, 'f', -1, 64), cacheTTL).Err(); err != nil {
		slog.Debug("Sentiment cache write failed", "error", err)
	}
}
