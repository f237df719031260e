package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/domain"
	"medmcq/internal/infra/amqp"
	"medmcq/internal/infra/memory"
)

type fixture struct {
	store  *memory.Store
	sample memory.Sample
	svc    app.Services
	router *gin.Engine

	adminToken string
	userToken  string
	otherToken string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := memory.NewStore()
	sample, err := memory.Seed(ctx, store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	log := zap.NewNop()
	svc := app.NewServices(store.Stores(nil, nil, amqp.NewLogPublisher(log)), "test-secret", time.Hour, log)

	f := &fixture{store: store, sample: sample, svc: svc}
	f.adminToken = f.token(t, "admin", domain.RoleAdmin)
	f.userToken = f.token(t, "student", domain.RoleUser)
	f.otherToken = f.token(t, "classmate", domain.RoleUser)
	f.router = NewRouter(svc, log, Options{})
	return f
}

func (f *fixture) token(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	u, err := f.store.CreateUser(context.Background(), domain.User{Username: username, Role: role})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	token, err := f.svc.Auth.Issue(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) questionPath(i int, suffix string) string {
	return "/api/questions/" + strconv.FormatInt(f.sample.Questions[i], 10) + suffix
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, kind domain.Kind) ErrorBody {
	t.Helper()
	expectStatus(t, rec, status)
	body := decode[ErrorBody](t, rec)
	if body.Type != kind {
		t.Fatalf("expected error type %s, got %+v", kind, body)
	}
	return body
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(f *fixture, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}
