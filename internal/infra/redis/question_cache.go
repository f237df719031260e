package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"medmcq/internal/app"
	"medmcq/internal/domain"
)

// QuestionCache caches question payloads and votes in Redis as JSON and falls
// back to a loader on cache miss.
//
//	question:{id}       -> domain.Question
//	vote:{kind}:{id}    -> domain.Vote
//	gen:{key}           -> invalidation counter for key
//
// A fill only stores its result if the counter of its key did not move while
// the loader ran, so a load racing a committed write cannot outlive the
// invalidation that followed it.
//
// Redis read/write failures degrade to the loader; only invalidation errors
// are returned to the caller.
type QuestionCache struct {
	client *redis.Client
	loader app.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	log    *zap.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader app.QuestionLoader, ttl time.Duration, log *zap.Logger) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	var q domain.Question
	err := c.readThrough(ctx, questionKey(id), &q, func() (any, error) {
		return c.loader.LoadQuestion(ctx, id)
	})
	return q, err
}

func (c *QuestionCache) GetVote(ctx context.Context, kind domain.MetadataKind, id int64) (domain.Vote, error) {
	var v domain.Vote
	err := c.readThrough(ctx, voteKey(kind, id), &v, func() (any, error) {
		return c.loader.LoadVote(ctx, kind, id)
	})
	return v, err
}

func (c *QuestionCache) InvalidateQuestion(ctx context.Context, id int64) error {
	if err := c.invalidate(ctx, questionKey(id)); err != nil {
		return fmt.Errorf("invalidate question %d: %w", id, err)
	}
	return nil
}

func (c *QuestionCache) InvalidateVote(ctx context.Context, kind domain.MetadataKind, id int64) error {
	if err := c.invalidate(ctx, voteKey(kind, id)); err != nil {
		return fmt.Errorf("invalidate %s vote %d: %w", kind, id, err)
	}
	return nil
}

// invalidate deletes key and bumps its generation in one transaction. Readers
// arriving afterwards start a new fill instead of joining one in flight.
func (c *QuestionCache) invalidate(ctx context.Context, key string) error {
	defer c.sf.Forget(key)
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.Incr(ctx, genKey(key))
		if c.ttl > 0 {
			p.Expire(ctx, genKey(key), 2*c.ttl)
		}
		return nil
	})
	return err
}

// readThrough decodes key into dst, loading and storing it on a miss.
func (c *QuestionCache) readThrough(ctx context.Context, key string, dst any, load func() (any, error)) error {
	if c.cached(ctx, key, dst) {
		return nil
	}
	raw, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if b, err := c.client.Get(ctx, key).Bytes(); err == nil {
			return b, nil
		}
		gen, genErr := c.client.Get(ctx, genKey(key)).Result()
		if genErr != nil && !errors.Is(genErr, redis.Nil) {
			c.log.Warn("redis get generation failed", zap.String("key", key), zap.Error(genErr))
		}
		value, err := load()
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if genErr == nil || errors.Is(genErr, redis.Nil) {
			c.store(ctx, key, gen, b)
		}
		return b, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dst)
}

var errStaleFill = errors.New("cache key invalidated during fill")

// store writes b under key unless key was invalidated since gen was read.
func (c *QuestionCache) store(ctx context.Context, key, gen string, b []byte) {
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey(key)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, c.ttlWithJitter())
			return nil
		})
		return err
	}, genKey(key))
	switch {
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("skip stale cache fill", zap.String("key", key))
	case err != nil:
		c.log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *QuestionCache) cached(ctx context.Context, key string, dst any) bool {
	b, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false
	case err != nil:
		c.log.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		c.log.Warn("drop undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func questionKey(id int64) string {
	return "question:" + strconv.FormatInt(id, 10)
}

func voteKey(kind domain.MetadataKind, id int64) string {
	return "vote:" + string(kind) + ":" + strconv.FormatInt(id, 10)
}

func genKey(key string) string {
	return "gen:" + key
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
