package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/domain"
	"medmcq/internal/infra/memory"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store, sample := seeded(t)
	loader := &countingLoader{QuestionLoader: store}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute, zap.NewNop())
	id := sample.Questions[0]

	q, err := cache.GetQuestion(context.Background(), id)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.Text == "" || len(q.CorrectAnswers) != 1 {
		t.Fatalf("unexpected payload %+v", q)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(questionKey(id)) {
		t.Fatalf("expected %s to be set", questionKey(id))
	}
	if ttl := mr.TTL(questionKey(id)); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl within jitter bounds, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	if _, err := cache.GetQuestion(context.Background(), id); err != nil {
		t.Fatalf("get question 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}

	if err := cache.InvalidateQuestion(context.Background(), id); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(questionKey(id)) {
		t.Fatalf("expected %s to be removed", questionKey(id))
	}
	if _, err := cache.GetQuestion(context.Background(), id); err != nil {
		t.Fatalf("get question 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestQuestionCacheVotes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store, sample := seeded(t)
	cache := NewQuestionCache(newClient(mr), store, time.Minute, zap.NewNop())

	v, err := store.UpsertVote(ctx, domain.Vote{Kind: domain.MetadataSpecialty, UserID: 4, QuestionID: sample.Questions[1], MetadataID: sample.Specialties[0].ID, Value: 1})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := cache.GetVote(ctx, domain.MetadataSpecialty, v.ID)
	if err != nil || got.ID != v.ID || got.Value != 1 {
		t.Fatalf("unexpected vote %+v err=%v", got, err)
	}
	if !mr.Exists("vote:specialty:" + itoa(v.ID)) {
		t.Fatalf("expected vote key to be set")
	}
	if err := cache.InvalidateVote(ctx, domain.MetadataSpecialty, v.ID); err != nil {
		t.Fatalf("invalidate vote: %v", err)
	}
	if mr.Exists("vote:specialty:" + itoa(v.ID)) {
		t.Fatalf("expected vote key to be removed")
	}
}

func TestQuestionCacheMissIsNotCached(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store, _ := seeded(t)
	cache := NewQuestionCache(newClient(mr), store, time.Minute, zap.NewNop())
	if _, err := cache.GetQuestion(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists(questionKey(404)) {
		t.Fatalf("expected no entry for a missing question")
	}
}

func TestQuestionCacheFallsBackWhenRedisIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	store, sample := seeded(t)
	cache := NewQuestionCache(client, store, time.Minute, zap.NewNop())
	if _, err := cache.GetQuestion(context.Background(), sample.Questions[0]); err != nil {
		t.Fatalf("expected loader fallback, got %v", err)
	}
	if err := cache.InvalidateQuestion(context.Background(), sample.Questions[0]); err == nil {
		t.Fatalf("expected invalidation error with redis down")
	}
}

func TestQuestionCacheDropsFillStartedBeforeInvalidation(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store, sample := seeded(t)
	loader := &stallingLoader{QuestionLoader: store, loaded: make(chan struct{}), release: make(chan struct{})}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute, zap.NewNop())
	q, tag := sample.Questions[0], sample.Tags[0].ID

	done := make(chan error, 1)
	go func() {
		_, err := cache.GetQuestion(ctx, q)
		done <- err
	}()
	<-loader.loaded

	if _, err := store.UpsertVote(ctx, domain.Vote{Kind: domain.MetadataTag, UserID: 1, QuestionID: q, MetadataID: tag, Value: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := cache.InvalidateQuestion(ctx, q); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)
	if err := <-done; err != nil {
		t.Fatalf("first get: %v", err)
	}
	if mr.Exists(questionKey(q)) {
		t.Fatalf("expected the pre-invalidation fill to be dropped")
	}

	got, err := cache.GetQuestion(ctx, q)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].MetadataID != tag {
		t.Fatalf("expected the voted tag after invalidation, got %+v", got.Tags)
	}
	if !mr.Exists(questionKey(q)) {
		t.Fatalf("expected the fresh payload to be cached")
	}
}

// stallingLoader blocks its first LoadQuestion after reading the store until
// release is closed.
type stallingLoader struct {
	app.QuestionLoader
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (l *stallingLoader) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	q, err := l.QuestionLoader.LoadQuestion(ctx, id)
	stall := false
	l.once.Do(func() { stall = true })
	if stall {
		close(l.loaded)
		<-l.release
	}
	return q, err
}

type countingLoader struct {
	app.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestion(ctx, id)
}

func seeded(t *testing.T) (*memory.Store, memory.Sample) {
	t.Helper()
	store := memory.NewStore()
	sample, err := memory.Seed(context.Background(), store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, sample
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
