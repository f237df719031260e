package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"medmcq/internal/quiz"
)

// SessionStore keeps quiz run state in Redis so a client can reconnect to
// any instance. Every save refreshes the TTL; idle runs expire.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (quiz.State, bool, error) {
	b, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return quiz.State{}, false, nil
	}
	if err != nil {
		return quiz.State{}, false, fmt.Errorf("load quiz session: %w", err)
	}
	var state quiz.State
	if err := json.Unmarshal(b, &state); err != nil {
		return quiz.State{}, false, fmt.Errorf("decode quiz session: %w", err)
	}
	return state, true, nil
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, state quiz.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode quiz session: %w", err)
	}
	return s.client.Set(ctx, s.key(sessionID), b, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
