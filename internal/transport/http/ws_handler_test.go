package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"medmcq/internal/domain"
	"medmcq/internal/quiz"
)

type wsReply struct {
	Type    string
	Payload map[string]any
}

func TestWebSocketQuizFlow(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+f.userToken)
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/quiz?session=s1"
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	send(t, conn, "start", map[string]any{"ids": f.sample.Questions[:2]})
	state := readState(t, conn)
	if state.Status != quiz.StatusReady || state.Total != 2 || state.Current == nil {
		t.Fatalf("unexpected start state %+v", state)
	}

	send(t, conn, "answer", map[string]any{"option": 1})
	state = readState(t, conn)
	if state.Answered != 1 || !state.Current.Answered || state.Current.Options[0].Evaluation != domain.EvalCorrect {
		t.Fatalf("unexpected answered state %+v", state)
	}

	// a second answer to the same question is ignored
	send(t, conn, "answer", map[string]any{"option": 2})
	state = readState(t, conn)
	if state.Current.Answer != 1 {
		t.Fatalf("expected first answer to stick, got %d", state.Current.Answer)
	}

	send(t, conn, "step", map[string]any{"delta": 5})
	state = readState(t, conn)
	if state.Index != 1 {
		t.Fatalf("expected cursor clamped to 1, got %d", state.Index)
	}

	send(t, conn, "answer", map[string]any{"option": 1})
	state = readState(t, conn)
	if !state.Results.Status || state.Results.N != 2 || state.Results.Percentage != "50.00%" {
		t.Fatalf("unexpected results %+v", state.Results)
	}
}

func TestWebSocketStartFailureIsState(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws/quiz?session=s2", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	send(t, conn, "start", map[string]any{"search": "ukendtord"})
	state := readState(t, conn)
	if state.Status != quiz.StatusFailed || state.Failure == nil || state.Failure.Kind != domain.KindNotFound {
		t.Fatalf("expected NotFound failure, got %+v", state)
	}

	send(t, conn, "dance", nil)
	var reply wsReply
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "error" || reply.Payload["type"] != string(domain.KindModelValidation) {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestWebSocketRequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/ws/quiz", "", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readState(t *testing.T, conn *websocket.Conn) quiz.Snapshot {
	t.Helper()
	var msg struct {
		Type    string        `json:"type"`
		Payload quiz.Snapshot `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state, got %s", msg.Type)
	}
	return msg.Payload
}
