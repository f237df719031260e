package memory

import (
	"time"

	"medmcq/internal/app"
)

// Stores exposes s behind every store port. cache defaults to a process-local
// QuestionCache over s.
func (s *Store) Stores(cache app.QuestionCache, sessions app.SessionRepository, events app.EventPublisher) app.Stores {
	if cache == nil {
		cache = NewQuestionCache(s, time.Minute)
	}
	if sessions == nil {
		sessions = NewSessionStore()
	}
	return app.Stores{
		Questions: s,
		Votes:     s,
		Metadata:  s,
		Comments:  s,
		Bookmarks: s,
		Users:     s,
		Cache:     cache,
		Sessions:  sessions,
		Events:    events,
	}
}
