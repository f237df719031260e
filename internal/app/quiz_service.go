package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"medmcq/internal/domain"
	"medmcq/internal/quiz"
)

// SessionRepository abstracts where quiz run state lives (in-memory, Redis, etc).
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (quiz.State, bool, error)
	Save(ctx context.Context, sessionID string, state quiz.State) error
	Delete(ctx context.Context, sessionID string) error
}

// QuizService runs the effects around the quiz reducer: selecting questions,
// recording answers and persisting the resulting state.
type QuizService struct {
	sessions  SessionRepository
	questions *QuestionService
	log       *zap.Logger
}

func NewQuizService(sessions SessionRepository, questions *QuestionService, log *zap.Logger) *QuizService {
	return &QuizService{sessions: sessions, questions: questions, log: log}
}

// Start selects questions and begins a new run, replacing any earlier one.
// Selection outcomes such as NotFound end up in the state as a failure.
func (s *QuizService) Start(ctx context.Context, viewer *domain.Viewer, sessionID string, params domain.SelectionParams) (quiz.State, error) {
	var state quiz.State
	views, err := s.load(ctx, viewer, params)
	switch {
	case err == nil:
		qs := make([]domain.Question, len(views))
		for i, v := range views {
			qs[i] = v.Question
		}
		state = quiz.Reduce(quiz.State{}, quiz.Load{Questions: qs})
	case domain.KindOf(err) != domain.KindInternal:
		state = quiz.Reduce(quiz.State{}, quiz.Fail{Kind: domain.KindOf(err), Message: err.Error()})
	default:
		return quiz.State{}, err
	}
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return quiz.State{}, err
	}
	s.log.Debug("quiz started", zap.String("session_id", sessionID), zap.Int("questions", len(state.Questions)))
	return state, nil
}

func (s *QuizService) load(ctx context.Context, viewer *domain.Viewer, params domain.SelectionParams) ([]domain.QuestionView, error) {
	sel, err := domain.ResolveSelection(params)
	if err != nil {
		return nil, err
	}
	return s.questions.SelectQuestions(ctx, viewer, sel)
}

// Answer records option for the question at the cursor. Answering twice is a no-op.
func (s *QuizService) Answer(ctx context.Context, viewer *domain.Viewer, sessionID string, option int) (quiz.State, error) {
	state, err := s.session(ctx, sessionID)
	if err != nil {
		return quiz.State{}, err
	}
	q, ok := state.Current()
	if !ok {
		return state, fmt.Errorf("%w: no current question", domain.ErrNotFound)
	}
	if state.Answered(q.ID) != 0 {
		return state, nil
	}
	if _, err := s.questions.Answer(ctx, viewer, q.ID, option); err != nil {
		return state, err
	}
	return s.dispatch(ctx, sessionID, state, quiz.Answer{QuestionID: q.ID, Option: option})
}

func (s *QuizService) Step(ctx context.Context, sessionID string, delta int) (quiz.State, error) {
	state, err := s.session(ctx, sessionID)
	if err != nil {
		return quiz.State{}, err
	}
	return s.dispatch(ctx, sessionID, state, quiz.Step{Delta: delta})
}

func (s *QuizService) Jump(ctx context.Context, sessionID string, index int) (quiz.State, error) {
	state, err := s.session(ctx, sessionID)
	if err != nil {
		return quiz.State{}, err
	}
	return s.dispatch(ctx, sessionID, state, quiz.Jump{Index: index})
}

// End drops the run.
func (s *QuizService) End(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *QuizService) session(ctx context.Context, sessionID string) (quiz.State, error) {
	state, ok, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return quiz.State{}, err
	}
	if !ok {
		return quiz.State{}, fmt.Errorf("%w: quiz session %q", domain.ErrNotFound, sessionID)
	}
	return state, nil
}

func (s *QuizService) dispatch(ctx context.Context, sessionID string, state quiz.State, a quiz.Action) (quiz.State, error) {
	next := quiz.Reduce(state, a)
	if err := s.sessions.Save(ctx, sessionID, next); err != nil {
		return state, err
	}
	return next, nil
}
