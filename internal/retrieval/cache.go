package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// QueryCache memoizes rendered query results in Redis. A cache failure is
// logged and treated as a miss.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQueryCache(client *redis.Client, ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &QueryCache{client: client, ttl: ttl}
}

func (c *QueryCache) key(index, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("retrieval:%s:%s", index, hex.EncodeToString(sum[:]))
}

func (c *QueryCache) Get(ctx context.Context, index, query string) (string, bool) {
	result, err := c.client.Get(ctx, c.key(index, query)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("index", index).Msg("Query cache read failed")
		return "", false
	}

	return result, true
}

func (c *QueryCache) Set(ctx context.Context, index, query, result string) {
	if err := c.client.Set(ctx, c.key(index, query), result, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("index", index).Msg("Query cache write failed")
	}
}
