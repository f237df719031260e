package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"medmcq/internal/app"
	"medmcq/internal/domain"
)

// QuestionCache caches question payloads and votes with TTL in process.
type QuestionCache struct {
	loader app.QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu        sync.RWMutex
	questions map[int64]entry[domain.Question]
	votes     map[string]entry[domain.Vote]
	// gens is bumped by every invalidation; a fill that started under an
	// older generation must not store its result.
	gens map[string]uint64
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func NewQuestionCache(loader app.QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader:    loader,
		ttl:       ttl,
		clock:     time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		questions: make(map[int64]entry[domain.Question]),
		votes:     make(map[string]entry[domain.Vote]),
		gens:      make(map[string]uint64),
	}
}

func (c *QuestionCache) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	if q, ok := c.cachedQuestion(id); ok {
		return q, nil
	}
	key := questionKey(id)
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if q, ok := c.cachedQuestion(id); ok {
			return q, nil
		}
		gen := c.generation(key)
		now := c.clock()
		q, err := c.loader.LoadQuestion(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}
		c.mu.Lock()
		if c.gens[key] == gen {
			c.questions[id] = entry[domain.Question]{value: q, expiresAt: now.Add(c.ttlWithJitter())}
		}
		c.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (c *QuestionCache) cachedQuestion(id int64) (domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.questions[id]
	if !ok || !e.expiresAt.After(c.clock()) {
		return domain.Question{}, false
	}
	return e.value, true
}

func (c *QuestionCache) GetVote(ctx context.Context, kind domain.MetadataKind, id int64) (domain.Vote, error) {
	key := voteKey(kind, id)
	if v, ok := c.cachedVote(key); ok {
		return v, nil
	}
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if v, ok := c.cachedVote(key); ok {
			return v, nil
		}
		gen := c.generation(key)
		now := c.clock()
		v, err := c.loader.LoadVote(ctx, kind, id)
		if err != nil {
			return domain.Vote{}, err
		}
		c.mu.Lock()
		if c.gens[key] == gen {
			c.votes[key] = entry[domain.Vote]{value: v, expiresAt: now.Add(c.ttlWithJitter())}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return domain.Vote{}, err
	}
	return result.(domain.Vote), nil
}

func (c *QuestionCache) cachedVote(key string) (domain.Vote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.votes[key]
	if !ok || !e.expiresAt.After(c.clock()) {
		return domain.Vote{}, false
	}
	return e.value, true
}

func (c *QuestionCache) generation(key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[key]
}

// InvalidateQuestion drops the entry, discards any fill still in flight and
// detaches later readers from it.
func (c *QuestionCache) InvalidateQuestion(_ context.Context, id int64) error {
	key := questionKey(id)
	c.mu.Lock()
	delete(c.questions, id)
	c.gens[key]++
	c.mu.Unlock()
	c.sf.Forget(key)
	return nil
}

func (c *QuestionCache) InvalidateVote(_ context.Context, kind domain.MetadataKind, id int64) error {
	key := voteKey(kind, id)
	c.mu.Lock()
	delete(c.votes, key)
	c.gens[key]++
	c.mu.Unlock()
	c.sf.Forget(key)
	return nil
}

func questionKey(id int64) string {
	return "question:" + strconv.FormatInt(id, 10)
}

func voteKey(kind domain.MetadataKind, id int64) string {
	return "vote:" + string(kind) + ":" + strconv.FormatInt(id, 10)
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
