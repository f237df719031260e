package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/domain"
	"medmcq/internal/quiz"
)

// WSHandler drives one quiz run per connection.
type WSHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	IDs         []int64       `json:"ids"`
	Profile     bool          `json:"profile"`
	Set         int64         `json:"set"`
	Search      string        `json:"search"`
	Semester    int64         `json:"semester"`
	Specialties []int64       `json:"specialties"`
	Tags        []int64       `json:"tags"`
	Year        int           `json:"year"`
	Season      domain.Season `json:"season"`
	N           int           `json:"n"`
	OnlyNew     bool          `json:"onlyNew"`
}

func (p startPayload) params() domain.SelectionParams {
	return domain.SelectionParams{
		IDs:         p.IDs,
		Profile:     p.Profile,
		SetID:       p.Set,
		Search:      p.Search,
		Semester:    p.Semester,
		Specialties: p.Specialties,
		Tags:        p.Tags,
		Year:        p.Year,
		Season:      p.Season,
		N:           p.N,
		OnlyNew:     p.OnlyNew,
	}
}

type answerPayload struct {
	Option int `json:"option"`
}

type stepPayload struct {
	Delta int `json:"delta"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the request and applies inbound actions to the session
// named by the session query parameter. Every accepted action is answered
// with a state snapshot.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}
	viewer := app.ViewerFrom(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// single writer; gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", zap.String("session_id", sessionID), zap.Error(err))
				return
			}
		}
	}()

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		state, err := h.handle(ctx, viewer, sessionID, inbound)
		if err != nil {
			send <- errorMessage(err)
			continue
		}
		send <- outboundMessage{Type: "state", Payload: state.Snapshot()}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, viewer *domain.Viewer, sessionID string, msg inboundMessage) (quiz.State, error) {
	switch msg.Type {
	case "start":
		var p startPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return quiz.State{}, err
		}
		return h.service.Start(ctx, viewer, sessionID, p.params())
	case "answer":
		var p answerPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return quiz.State{}, err
		}
		return h.service.Answer(ctx, viewer, sessionID, p.Option)
	case "step":
		var p stepPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return quiz.State{}, err
		}
		return h.service.Step(ctx, sessionID, p.Delta)
	case "jump":
		var p jumpPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return quiz.State{}, err
		}
		return h.service.Jump(ctx, sessionID, p.Index)
	case "end":
		if err := h.service.End(ctx, sessionID); err != nil {
			return quiz.State{}, err
		}
		return quiz.State{Status: quiz.StatusIdle}, nil
	}
	return quiz.State{}, domain.NewError(domain.ErrModelValidation, "unsupported message type")
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.NewError(domain.ErrModelValidation, "invalid payload")
	}
	return nil
}

func errorMessage(err error) outboundMessage {
	body := ErrorBody{Type: domain.KindOf(err), Message: err.Error()}
	if body.Type == domain.KindInternal {
		body.Message = "Internal server error"
	}
	return outboundMessage{Type: "error", Payload: body}
}
