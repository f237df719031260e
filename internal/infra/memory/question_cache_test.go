package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medmcq/internal/app"
	"medmcq/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	ctx := context.Background()
	store, sample := seeded(t)
	loader := &countingLoader{QuestionLoader: store}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.GetQuestion(ctx, sample.Questions[0]); err != nil {
		t.Fatalf("get question: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
	if _, err := cache.GetQuestion(ctx, sample.Questions[0]); err != nil {
		t.Fatalf("get question 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	if err := cache.InvalidateQuestion(ctx, sample.Questions[0]); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := cache.GetQuestion(ctx, sample.Questions[0]); err != nil {
		t.Fatalf("get question 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	ctx := context.Background()
	store, sample := seeded(t)
	loader := &countingLoader{QuestionLoader: store}
	cache := NewQuestionCache(loader, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }

	if _, err := cache.GetQuestion(ctx, sample.Questions[0]); err != nil {
		t.Fatalf("get question: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.GetQuestion(ctx, sample.Questions[0]); err != nil {
		t.Fatalf("get question after ttl: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheVotes(t *testing.T) {
	ctx := context.Background()
	store, sample := seeded(t)
	cache := NewQuestionCache(store, time.Minute)

	v, err := store.UpsertVote(ctx, domain.Vote{Kind: domain.MetadataTag, UserID: 1, QuestionID: sample.Questions[0], MetadataID: sample.Tags[0].ID, Value: 1})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := cache.GetVote(ctx, domain.MetadataTag, v.ID)
	if err != nil || got.Value != 1 {
		t.Fatalf("expected cached vote, got %+v err=%v", got, err)
	}

	if _, err := store.UpsertVote(ctx, domain.Vote{Kind: domain.MetadataTag, UserID: 1, QuestionID: sample.Questions[0], MetadataID: sample.Tags[0].ID, Value: -1}); err != nil {
		t.Fatalf("upsert 2: %v", err)
	}
	if err := cache.InvalidateVote(ctx, domain.MetadataTag, v.ID); err != nil {
		t.Fatalf("invalidate vote: %v", err)
	}
	got, err = cache.GetVote(ctx, domain.MetadataTag, v.ID)
	if err != nil || got.Value != -1 {
		t.Fatalf("expected refreshed vote value -1, got %+v err=%v", got, err)
	}

	if _, err := cache.GetVote(ctx, domain.MetadataSpecialty, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuestionCacheDropsFillStartedBeforeInvalidation(t *testing.T) {
	ctx := context.Background()
	store, sample := seeded(t)
	loader := newStallingLoader(store)
	cache := NewQuestionCache(loader, time.Minute)
	q, tag := sample.Questions[0], sample.Tags[0].ID

	type result struct {
		q   domain.Question
		err error
	}
	first := make(chan result, 1)
	go func() {
		got, err := cache.GetQuestion(ctx, q)
		first <- result{got, err}
	}()
	<-loader.loaded

	// the vote commits and invalidates while the fill holds the old payload
	if _, err := store.UpsertVote(ctx, domain.Vote{Kind: domain.MetadataTag, UserID: 1, QuestionID: q, MetadataID: tag, Value: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := cache.InvalidateQuestion(ctx, q); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)

	old := <-first
	if old.err != nil {
		t.Fatalf("first get: %v", old.err)
	}
	if len(old.q.Tags) != 0 {
		t.Fatalf("expected the in-flight read to predate the vote, got %+v", old.q.Tags)
	}

	got, err := cache.GetQuestion(ctx, q)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].MetadataID != tag {
		t.Fatalf("expected the voted tag after invalidation, got %+v", got.Tags)
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

func newStallingLoader(inner app.QuestionLoader) *stallingLoader {
	return &stallingLoader{QuestionLoader: inner, loaded: make(chan struct{}), release: make(chan struct{})}
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

func seeded(t *testing.T) (*Store, Sample) {
	t.Helper()
	store := NewStore()
	sample, err := Seed(context.Background(), store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, sample
}
