package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/domain"
	"medmcq/internal/infra/memory"
)

type env struct {
	store  *memory.Store
	sample memory.Sample
	svc    app.Services
	events *recordingPublisher
	user   *domain.Viewer
	other  *domain.Viewer
	admin  *domain.Viewer
}

type envOption func(*app.Stores)

func newEnv(t *testing.T, log *zap.Logger, opts ...envOption) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	sample, err := memory.Seed(ctx, store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	events := &recordingPublisher{}
	stores := store.Stores(nil, nil, events)
	for _, opt := range opts {
		opt(&stores)
	}
	e := &env{
		store:  store,
		sample: sample,
		svc:    app.NewServices(stores, "test-secret", time.Hour, log),
		events: events,
	}
	e.user = e.viewer(t, "student", domain.RoleUser)
	e.other = e.viewer(t, "classmate", domain.RoleUser)
	e.admin = e.viewer(t, "admin", domain.RoleAdmin)
	return e
}

func (e *env) viewer(t *testing.T, username string, role domain.Role) *domain.Viewer {
	t.Helper()
	u, err := e.store.CreateUser(context.Background(), domain.User{Username: username, Role: role})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &domain.Viewer{UserID: u.ID, Role: u.Role}
}

func expectKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := domain.KindOf(err); got != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, got, err)
	}
}

type published struct {
	eventType string
	payload   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{eventType: eventType, payload: payload})
	return nil
}

// brokenInvalidation wraps a cache whose invalidations always fail.
type brokenInvalidation struct {
	app.QuestionCache
}

var errCacheDown = errors.New("cache down")

func (brokenInvalidation) InvalidateQuestion(context.Context, int64) error { return errCacheDown }

func (brokenInvalidation) InvalidateVote(context.Context, domain.MetadataKind, int64) error {
	return errCacheDown
}

func withBrokenInvalidation(st *app.Stores) {
	st.Cache = brokenInvalidation{QuestionCache: st.Cache}
}
