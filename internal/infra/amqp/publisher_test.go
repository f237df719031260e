package amqp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEncodeEvent(t *testing.T) {
	at := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	body, err := encodeEvent("tag.suggested", map[string]any{"tagName": "Nefrologi"}, at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got struct {
		Type       string         `json:"type"`
		Payload    map[string]any `json:"payload"`
		OccurredAt time.Time      `json:"occurredAt"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != "tag.suggested" || got.Payload["tagName"] != "Nefrologi" || !got.OccurredAt.Equal(at) {
		t.Fatalf("unexpected envelope %+v", got)
	}
}

func TestEncodeEventRejectsUnencodable(t *testing.T) {
	if _, err := encodeEvent("bad", make(chan int), time.Now()); err == nil {
		t.Fatalf("expected encode error")
	}
}

func TestLogPublisherLogsEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	if err := p.Publish(context.Background(), "tag.suggested", map[string]any{"questionId": 7}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	entries := logs.FilterMessage("event").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["type"] != "tag.suggested" {
		t.Fatalf("unexpected type field %v", fields["type"])
	}
	if body, _ := fields["body"].(string); !strings.Contains(body, `"questionId":7`) {
		t.Fatalf("unexpected body field %v", fields["body"])
	}
}
