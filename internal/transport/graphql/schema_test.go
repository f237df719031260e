package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/domain"
	"medmcq/internal/infra/amqp"
	"medmcq/internal/infra/memory"
)

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

type fixture struct {
	sample  memory.Sample
	handler *Handler
	user    *domain.Viewer
	admin   *domain.Viewer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	sample, err := memory.Seed(ctx, store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	log := zap.NewNop()
	svc := app.NewServices(store.Stores(nil, nil, amqp.NewLogPublisher(log)), "secret", time.Hour, log)
	schema, err := NewSchema(svc, log)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	user, err := store.CreateUser(ctx, domain.User{Username: "student"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	admin, err := store.CreateUser(ctx, domain.User{Username: "admin", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return &fixture{
		sample:  sample,
		handler: NewHandler(schema, log),
		user:    &domain.Viewer{UserID: user.ID, Role: user.Role},
		admin:   &domain.Viewer{UserID: admin.ID, Role: admin.Role},
	}
}

func (f *fixture) exec(t *testing.T, viewer *domain.Viewer, query string, vars map[string]any) response {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	if viewer != nil {
		req = req.WithContext(app.WithViewer(req.Context(), viewer))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var out response
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func expectErrorType(t *testing.T, resp response, kind domain.Kind) {
	t.Helper()
	if len(resp.Errors) == 0 {
		t.Fatalf("expected %s error, got none", kind)
	}
	if got := resp.Errors[0].Extensions["type"]; got != string(kind) {
		t.Fatalf("expected extensions.type %s, got %v (%s)", kind, got, resp.Errors[0].Message)
	}
}

type questionResult struct {
	ID   int64 `json:"id"`
	Text string `json:"text"`
	Tags []struct {
		ID    int64 `json:"id"`
		Votes int   `json:"votes"`
	} `json:"tags"`
}

const voteTag = `mutation($data: VoteInput!) { voteTag(data: $data) { id tags { id votes } } }`

func TestQuestionsByIDs(t *testing.T) {
	f := newFixture(t)
	resp := f.exec(t, nil, `query($ids: [Int]) { questions(filter: {ids: $ids}) { id text } }`,
		map[string]any{"ids": []int64{f.sample.Questions[2], f.sample.Questions[0]}})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", resp.Errors)
	}
	var qs []questionResult
	if err := json.Unmarshal(resp.Data["questions"], &qs); err != nil {
		t.Fatalf("decode questions: %v", err)
	}
	if len(qs) != 2 || qs[0].ID != f.sample.Questions[2] {
		t.Fatalf("unexpected questions %+v", qs)
	}
}

func TestQuestionsNotFoundCarriesType(t *testing.T) {
	f := newFixture(t)
	resp := f.exec(t, f.user, `{ questions(filter: {search: "ukendtord"}) { id } }`, nil)
	expectErrorType(t, resp, domain.KindNotFound)
	if resp.Errors[0].Message != "No questions found" {
		t.Fatalf("unexpected message %q", resp.Errors[0].Message)
	}
}

func TestFilteredQuestionsRequireN(t *testing.T) {
	f := newFixture(t)
	resp := f.exec(t, f.user, `query($s: Int) { questions(filter: {semester: $s}) { id } }`,
		map[string]any{"s": f.sample.Semester.ID})
	expectErrorType(t, resp, domain.KindNotAuthorized)
}

func TestVoteTagAndClearWithNull(t *testing.T) {
	f := newFixture(t)
	tag := f.sample.Tags[0].ID
	data := map[string]any{"questionId": f.sample.Questions[1], "metadataId": tag, "vote": 1}

	resp := f.exec(t, f.user, voteTag, map[string]any{"data": data})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", resp.Errors)
	}
	var q questionResult
	if err := json.Unmarshal(resp.Data["voteTag"], &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(q.Tags) != 1 || q.Tags[0].ID != tag || q.Tags[0].Votes != 1 {
		t.Fatalf("expected active tag, got %+v", q.Tags)
	}

	data["vote"] = nil
	resp = f.exec(t, f.user, voteTag, map[string]any{"data": data})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", resp.Errors)
	}
	q = questionResult{}
	if err := json.Unmarshal(resp.Data["voteTag"], &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(q.Tags) != 0 {
		t.Fatalf("expected cleared tag, got %+v", q.Tags)
	}
}

func TestVoteRequiresLogin(t *testing.T) {
	f := newFixture(t)
	data := map[string]any{"questionId": f.sample.Questions[0], "metadataId": f.sample.Specialties[0].ID, "vote": 1}
	resp := f.exec(t, nil, `mutation($data: VoteInput!) { voteSpecialty(data: $data) { id } }`, map[string]any{"data": data})
	expectErrorType(t, resp, domain.KindNotAuthorized)
}

func TestVoteOutOfRange(t *testing.T) {
	f := newFixture(t)
	data := map[string]any{"questionId": f.sample.Questions[0], "metadataId": f.sample.Tags[0].ID, "vote": -2}
	expectErrorType(t, f.exec(t, f.user, voteTag, map[string]any{"data": data}), domain.KindModelValidation)
}

func TestSemestersAndUser(t *testing.T) {
	f := newFixture(t)
	resp := f.exec(t, f.admin, `{ semesters { id shortName examSets { year season } tags { name questionCount } } user { username role } }`, nil)
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", resp.Errors)
	}
	var user struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := json.Unmarshal(resp.Data["user"], &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Username != "admin" || user.Role != "admin" {
		t.Fatalf("unexpected user %+v", user)
	}
	var semesters []struct {
		ShortName string `json:"shortName"`
		ExamSets  []struct {
			Year   int    `json:"year"`
			Season string `json:"season"`
		} `json:"examSets"`
	}
	if err := json.Unmarshal(resp.Data["semesters"], &semesters); err != nil {
		t.Fatalf("decode semesters: %v", err)
	}
	if len(semesters) != 1 || semesters[0].ShortName != "RUE" || semesters[0].ExamSets[0].Season != "spring" {
		t.Fatalf("unexpected semesters %+v", semesters)
	}

	anon := f.exec(t, nil, `{ user { username } }`, nil)
	if len(anon.Errors) != 0 || string(anon.Data["user"]) != "null" {
		t.Fatalf("expected null user for anonymous caller, got %+v", anon)
	}
}

func TestSuggestTag(t *testing.T) {
	f := newFixture(t)
	resp := f.exec(t, f.user, `mutation($q: Int!) { suggestTag(tagName: "Prostata", questionId: $q) }`,
		map[string]any{"q": f.sample.Questions[0]})
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", resp.Errors)
	}
	var msg string
	if err := json.Unmarshal(resp.Data["suggestTag"], &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg != `Tag "Prostata" has been suggested.` {
		t.Fatalf("unexpected message %q", msg)
	}
}
