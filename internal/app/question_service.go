package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"medmcq/internal/domain"
	"medmcq/internal/metrics"
)

// QuestionService contains the question selection and authoring use cases.
type QuestionService struct {
	questions QuestionStore
	cache     QuestionCache
	votes     VoteStore
	comments  CommentStore
	log       *zap.Logger
}

func NewQuestionService(questions QuestionStore, cache QuestionCache, votes VoteStore, comments CommentStore, log *zap.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		cache:     cache,
		votes:     votes,
		comments:  comments,
		log:       log,
	}
}

// Select resolves a selection to question ids. Zero matches is ErrNoQuestions.
func (s *QuestionService) Select(ctx context.Context, viewer *domain.Viewer, sel domain.Selection) ([]int64, error) {
	ids, err := s.selectIDs(ctx, viewer, sel)
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	mode := "unknown"
	if sel != nil {
		mode = string(sel.Mode())
	}
	metrics.Selections.WithLabelValues(mode, outcome).Inc()
	return ids, err
}

func (s *QuestionService) selectIDs(ctx context.Context, viewer *domain.Viewer, sel domain.Selection) ([]int64, error) {
	var (
		ids []int64
		err error
	)
	switch sel := sel.(type) {
	case domain.IDsSelection:
		if len(sel.IDs) == 0 {
			return nil, domain.ErrNoQuestions
		}
		return sel.IDs, nil
	case domain.ProfileSelection:
		if !viewer.Authenticated() {
			return nil, fmt.Errorf("%w: log in to see your questions", domain.ErrNotAuthorized)
		}
		ids, err = s.questions.ProfileQuestionIDs(ctx, viewer.UserID, sel.Semester)
	case domain.SetSelection:
		ids, err = s.questions.ExamSetQuestionIDs(ctx, sel.SetID)
	case domain.SearchSelection:
		tokens := domain.SearchTokens(sel.Text)
		if len(tokens) == 0 {
			return nil, domain.ErrNoQuestions
		}
		ids, err = s.questions.SearchQuestionIDs(ctx, sel.Semester, tokens)
	case domain.FilteredSelection:
		if !viewer.IsAdmin() {
			if sel.N <= 0 {
				return nil, fmt.Errorf("%w: n is required", domain.ErrNotAuthorized)
			}
			if sel.Semester <= 0 {
				return nil, fmt.Errorf("%w: semester is required", domain.ErrModelValidation)
			}
		}
		var excludeAnsweredBy int64
		if sel.OnlyNew && viewer.Authenticated() {
			excludeAnsweredBy = viewer.UserID
		}
		ids, err = s.questions.FilterQuestionIDs(ctx, sel, excludeAnsweredBy)
	default:
		return nil, fmt.Errorf("%w: no selection", domain.ErrModelValidation)
	}
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return ids, nil
}

// SelectQuestions selects and loads full payloads in one step.
func (s *QuestionService) SelectQuestions(ctx context.Context, viewer *domain.Viewer, sel domain.Selection) ([]domain.QuestionView, error) {
	ids, err := s.Select(ctx, viewer, sel)
	if err != nil {
		return nil, err
	}
	return s.Questions(ctx, viewer, ids)
}

// Questions loads the views for ids, skipping ids that do not exist.
func (s *QuestionService) Questions(ctx context.Context, viewer *domain.Viewer, ids []int64) ([]domain.QuestionView, error) {
	views := make([]domain.QuestionView, 0, len(ids))
	for _, id := range ids {
		view, err := s.Get(ctx, viewer, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	if len(views) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return views, nil
}

// Get loads one question as seen by viewer.
func (s *QuestionService) Get(ctx context.Context, viewer *domain.Viewer, id int64) (domain.QuestionView, error) {
	q, err := s.cache.GetQuestion(ctx, id)
	if err != nil {
		return domain.QuestionView{}, err
	}
	view := domain.QuestionView{
		Question:           q,
		PublicComments:     []domain.Comment{},
		UserTagVotes:       []domain.Vote{},
		UserSpecialtyVotes: []domain.Vote{},
	}

	comments, err := s.comments.QuestionComments(ctx, id)
	if err != nil {
		return domain.QuestionView{}, err
	}
	for _, c := range comments {
		switch {
		case !c.IsPrivate:
			view.PublicComments = append(view.PublicComments, c.Redacted())
		case viewer.Owns(c.UserID):
			view.PrivateComments = append(view.PrivateComments, c)
		}
	}
	if viewer.IsAdmin() && view.PrivateComments == nil {
		view.PrivateComments = []domain.Comment{}
	}

	if viewer.Authenticated() {
		if view.UserTagVotes, err = s.votes.UserVotes(ctx, domain.MetadataTag, viewer.UserID, id); err != nil {
			return domain.QuestionView{}, err
		}
		if view.UserSpecialtyVotes, err = s.votes.UserVotes(ctx, domain.MetadataSpecialty, viewer.UserID, id); err != nil {
			return domain.QuestionView{}, err
		}
	}
	return view, nil
}

// Create stores a new question. Admin only.
func (s *QuestionService) Create(ctx context.Context, viewer *domain.Viewer, in domain.QuestionInput) (domain.QuestionView, error) {
	if !viewer.IsAdmin() {
		return domain.QuestionView{}, domain.ErrNotAuthorized
	}
	if err := in.Validate(); err != nil {
		return domain.QuestionView{}, err
	}
	id, err := s.questions.CreateQuestion(ctx, in)
	if err != nil {
		return domain.QuestionView{}, err
	}
	s.log.Info("question created", zap.Int64("question_id", id), zap.Int64("exam_set_id", in.ExamSetID))
	return s.Get(ctx, viewer, id)
}

// Patch updates selected fields of a question. Admin only.
func (s *QuestionService) Patch(ctx context.Context, viewer *domain.Viewer, id int64, patch domain.QuestionPatch) (domain.QuestionView, error) {
	if !viewer.IsAdmin() {
		return domain.QuestionView{}, domain.ErrNotAuthorized
	}
	current, err := s.cache.GetQuestion(ctx, id)
	if err != nil {
		return domain.QuestionView{}, err
	}
	in, err := patch.Apply(current.Input())
	if err != nil {
		return domain.QuestionView{}, err
	}
	if err := s.questions.UpdateQuestion(ctx, id, in); err != nil {
		return domain.QuestionView{}, err
	}
	s.invalidateQuestion(ctx, id)
	return s.Get(ctx, viewer, id)
}

// Delete removes a question and reports how many rows went away. Admin only.
func (s *QuestionService) Delete(ctx context.Context, viewer *domain.Viewer, id int64) (int, error) {
	if !viewer.IsAdmin() {
		return 0, domain.ErrNotAuthorized
	}
	n, err := s.questions.DeleteQuestion(ctx, id)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: question %d", domain.ErrNotFound, id)
	}
	s.invalidateQuestion(ctx, id)
	return n, nil
}

// AnswerOutcome is the evaluation of a recorded answer.
type AnswerOutcome struct {
	Answer      domain.UserAnswer    `json:"answer"`
	Correct     bool                 `json:"correct"`
	Evaluations [3]domain.Evaluation `json:"evaluations"`
	Question    domain.Question      `json:"-"`
}

// Answer records the chosen option. Anonymous answers are stored without a user.
func (s *QuestionService) Answer(ctx context.Context, viewer *domain.Viewer, questionID int64, answer int) (AnswerOutcome, error) {
	if err := domain.ValidateAnswer(answer); err != nil {
		return AnswerOutcome{}, err
	}
	q, err := s.cache.GetQuestion(ctx, questionID)
	if err != nil {
		return AnswerOutcome{}, err
	}
	record := domain.UserAnswer{QuestionID: questionID, Answer: answer}
	if viewer.Authenticated() {
		record.UserID = viewer.UserID
	}
	record, err = s.questions.RecordAnswer(ctx, record)
	if err != nil {
		return AnswerOutcome{}, err
	}

	out := AnswerOutcome{Answer: record, Question: q}
	for option := 1; option <= 3; option++ {
		out.Evaluations[option-1] = domain.Evaluate(q.CorrectAnswers, answer, option)
	}
	out.Correct = out.Evaluations[answer-1] == domain.EvalCorrect
	return out, nil
}

func (s *QuestionService) invalidateQuestion(ctx context.Context, id int64) {
	if err := s.cache.InvalidateQuestion(ctx, id); err != nil {
		metrics.CacheInvalidationFailures.Inc()
		s.log.Warn("invalidate question cache", zap.Int64("question_id", id), zap.Error(err))
	}
}
