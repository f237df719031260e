package quiz

import (
	"slices"

	"medmcq/internal/domain"
)

// Action is one of Load, Answer, Step, Jump or Fail.
type Action interface {
	apply(State) State
}

// Load starts a new run over questions. An empty list fails the run with NotFound.
type Load struct {
	Questions []domain.Question
}

// Answer records option for questionID. The first answer to a question sticks.
type Answer struct {
	QuestionID int64
	Option     int
}

// Step moves the cursor by Delta, clamped to the question list.
type Step struct {
	Delta int
}

// Jump moves the cursor to Index when it is in range.
type Jump struct {
	Index int
}

// Fail records an error. Questions and answers are kept.
type Fail struct {
	Kind    domain.Kind
	Message string
}

// Reduce returns the state after applying a. s is left untouched.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a Load) apply(State) State {
	if len(a.Questions) == 0 {
		return State{
			Status:  StatusFailed,
			Answers: map[int64]int{},
			Failure: &Failure{Kind: domain.KindNotFound, Message: domain.ErrNoQuestions.Error()},
		}
	}
	return State{
		Status:    StatusReady,
		Questions: slices.Clone(a.Questions),
		Answers:   map[int64]int{},
	}
}

func (a Answer) apply(s State) State {
	if s.Status != StatusReady || a.Option < 1 || a.Option > 3 {
		return s
	}
	if s.Answered(a.QuestionID) != 0 {
		return s
	}
	if !slices.ContainsFunc(s.Questions, func(q domain.Question) bool { return q.ID == a.QuestionID }) {
		return s
	}
	return s.withAnswer(a.QuestionID, a.Option)
}

func (a Step) apply(s State) State {
	if len(s.Questions) == 0 {
		return s
	}
	s = s.clone()
	s.Index = min(max(s.Index+a.Delta, 0), len(s.Questions)-1)
	return s
}

func (a Jump) apply(s State) State {
	if a.Index < 0 || a.Index >= len(s.Questions) {
		return s
	}
	s = s.clone()
	s.Index = a.Index
	return s
}

func (a Fail) apply(s State) State {
	s = s.clone()
	s.Status = StatusFailed
	s.Failure = &Failure{Kind: a.Kind, Message: a.Message}
	return s
}
