package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyList = "todo:list:"
	keyGen  = "todo:gen:"
)

// TodoCache caches each session's todo list in Redis. Keys are per session,
// so one session's writes never evict or expose another session's list.
//
// A list is stored under the session's current generation. Invalidate bumps
// the generation instead of deleting, so a reader that loaded the store before
// a write can only fill a key that is no longer read.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

func listKey(sessionID string, gen int64) string {
	return keyList + sessionID + ":" + strconv.FormatInt(gen, 10)
}

func genKey(sessionID string) string {
	return keyGen + sessionID
}

// genTTL keeps the generation alive longer than any list filled under it.
func (c *TodoCache) genTTL() time.Duration {
	return 2*c.ttl + time.Minute
}

// Generation returns the session's current generation, 0 if none was recorded.
func (c *TodoCache) Generation(ctx context.Context, sessionID string) (int64, error) {
	pipe := c.rdb.Pipeline()
	get := pipe.Get(ctx, genKey(sessionID))
	if c.ttl > 0 {
		pipe.Expire(ctx, genKey(sessionID), c.genTTL())
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	gen, err := get.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetList returns cached list or nil if miss.
func (c *TodoCache) GetList(ctx context.Context, sessionID string, gen int64) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, listKey(sessionID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := make([]dom.Todo, 0)
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list under the given generation.
func (c *TodoCache) SetList(ctx context.Context, sessionID string, gen int64, list []dom.Todo) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(sessionID, gen), b, c.ttl).Err()
}

// Invalidate moves the session to a new generation (cache invalidation on write).
func (c *TodoCache) Invalidate(ctx context.Context, sessionID string) error {
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, genKey(sessionID))
	if c.ttl > 0 {
		pipe.Expire(ctx, genKey(sessionID), c.genTTL())
	}
	_, err := pipe.Exec(ctx)
	return err
}
