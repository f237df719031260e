// Package quiz holds the state of one quiz run as an immutable value.
// Every change goes through Reduce; callers keep the returned State.
package quiz

import (
	"maps"
	"slices"

	"medmcq/internal/domain"
)

type Status string

const (
	StatusIdle   Status = "idle"
	StatusReady  Status = "ready"
	StatusFailed Status = "failed"
)

// Failure is the last error shown to the user.
type Failure struct {
	Kind    domain.Kind `json:"type"`
	Message string      `json:"message"`
}

// State is never mutated in place. Answers maps question id to the chosen option.
type State struct {
	Status    Status            `json:"status"`
	Questions []domain.Question `json:"questions"`
	Answers   map[int64]int     `json:"answers"`
	Index     int               `json:"index"`
	Failure   *Failure          `json:"failure,omitempty"`
}

// Current returns the question at the cursor.
func (s State) Current() (domain.Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.Index], true
}

// Answered reports the option chosen for questionID, 0 when unanswered.
func (s State) Answered(questionID int64) int {
	return s.Answers[questionID]
}

// Results scores the answered questions of the run.
func (s State) Results() domain.Results {
	qs := make([]domain.AnsweredQuestion, len(s.Questions))
	for i, q := range s.Questions {
		qs[i] = domain.AnsweredQuestion{CorrectAnswers: q.CorrectAnswers, Answer: s.Answers[q.ID]}
	}
	return domain.CalculateResults(qs)
}

func (s State) withAnswer(questionID int64, option int) State {
	answers := maps.Clone(s.Answers)
	if answers == nil {
		answers = make(map[int64]int, 1)
	}
	answers[questionID] = option
	s.Answers = answers
	return s
}

func (s State) clone() State {
	s.Questions = slices.Clone(s.Questions)
	s.Answers = maps.Clone(s.Answers)
	if s.Failure != nil {
		f := *s.Failure
		s.Failure = &f
	}
	return s
}
