package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"medmcq/internal/domain"
	"medmcq/internal/metrics"
)

// SemesterView is a semester with everything a selection screen needs.
type SemesterView struct {
	domain.Semester
	ExamSets    []domain.ExamSet  `json:"examSets"`
	Tags        []domain.Metadata `json:"tags"`
	Specialties []domain.Metadata `json:"specialties"`
}

type MetadataService struct {
	metadata  MetadataStore
	votes     VoteStore
	questions QuestionSelector
	cache     QuestionCache
	log       *zap.Logger
}

func NewMetadataService(metadata MetadataStore, votes VoteStore, questions QuestionSelector, cache QuestionCache, log *zap.Logger) *MetadataService {
	return &MetadataService{metadata: metadata, votes: votes, questions: questions, cache: cache, log: log}
}

// Semesters lists every semester with its exam sets, tags and specialties.
// Tag and specialty question counts follow the activation rule.
func (s *MetadataService) Semesters(ctx context.Context) ([]SemesterView, error) {
	semesters, err := s.metadata.Semesters(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]SemesterView, 0, len(semesters))
	for _, sem := range semesters {
		view := SemesterView{Semester: sem}
		if view.ExamSets, err = s.metadata.ExamSets(ctx, sem.ID); err != nil {
			return nil, err
		}
		if view.Tags, err = s.Metadata(ctx, domain.MetadataTag, sem.ID); err != nil {
			return nil, err
		}
		if view.Specialties, err = s.Metadata(ctx, domain.MetadataSpecialty, sem.ID); err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Metadata lists tags or specialties of a semester with question counts.
func (s *MetadataService) Metadata(ctx context.Context, kind domain.MetadataKind, semesterID int64) ([]domain.Metadata, error) {
	items, err := s.metadata.Metadata(ctx, kind, semesterID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(items))
	for i, m := range items {
		ids[i] = m.ID
	}
	counts, err := s.votes.QuestionCounts(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].QuestionCount = counts[items[i].ID]
	}
	return items, nil
}

func (s *MetadataService) ExamSets(ctx context.Context, semesterID int64) ([]domain.ExamSet, error) {
	return s.metadata.ExamSets(ctx, semesterID)
}

func (s *MetadataService) ExamSet(ctx context.Context, id int64) (domain.ExamSet, error) {
	return s.metadata.GetExamSet(ctx, id)
}

// CreateExamSet is admin only.
func (s *MetadataService) CreateExamSet(ctx context.Context, viewer *domain.Viewer, e domain.ExamSet) (domain.ExamSet, error) {
	if !viewer.IsAdmin() {
		return domain.ExamSet{}, domain.ErrNotAuthorized
	}
	if err := e.Validate(); err != nil {
		return domain.ExamSet{}, err
	}
	return s.metadata.CreateExamSet(ctx, e)
}

// ExamSetPatch carries optional exam set replacements.
type ExamSetPatch struct {
	SemesterID *int64         `json:"semesterId"`
	Year       *int           `json:"year"`
	Season     *domain.Season `json:"season"`
}

// PatchExamSet is admin only. Cached questions of the set embed it, so they are invalidated.
func (s *MetadataService) PatchExamSet(ctx context.Context, viewer *domain.Viewer, id int64, patch ExamSetPatch) (domain.ExamSet, error) {
	if !viewer.IsAdmin() {
		return domain.ExamSet{}, domain.ErrNotAuthorized
	}
	e, err := s.metadata.GetExamSet(ctx, id)
	if err != nil {
		return domain.ExamSet{}, err
	}
	if patch.SemesterID != nil {
		e.SemesterID = *patch.SemesterID
	}
	if patch.Year != nil {
		e.Year = *patch.Year
	}
	if patch.Season != nil {
		e.Season = *patch.Season
	}
	if err := e.Validate(); err != nil {
		return domain.ExamSet{}, err
	}
	if err := s.metadata.UpdateExamSet(ctx, e); err != nil {
		return domain.ExamSet{}, err
	}
	s.invalidateSet(ctx, id)
	return e, nil
}

// DeleteExamSet is admin only.
func (s *MetadataService) DeleteExamSet(ctx context.Context, viewer *domain.Viewer, id int64) error {
	if !viewer.IsAdmin() {
		return domain.ErrNotAuthorized
	}
	if _, err := s.metadata.GetExamSet(ctx, id); err != nil {
		return fmt.Errorf("delete exam set: %w", err)
	}
	// collect before the cascade removes the questions
	ids, err := s.questions.ExamSetQuestionIDs(ctx, id)
	if err != nil {
		return err
	}
	if err := s.metadata.DeleteExamSet(ctx, id); err != nil {
		return err
	}
	s.invalidateQuestions(ctx, ids)
	return nil
}

func (s *MetadataService) invalidateSet(ctx context.Context, setID int64) {
	ids, err := s.questions.ExamSetQuestionIDs(ctx, setID)
	if err != nil {
		s.log.Warn("list exam set questions", zap.Int64("exam_set_id", setID), zap.Error(err))
		return
	}
	s.invalidateQuestions(ctx, ids)
}

func (s *MetadataService) invalidateQuestions(ctx context.Context, ids []int64) {
	for _, id := range ids {
		if err := s.cache.InvalidateQuestion(ctx, id); err != nil {
			metrics.CacheInvalidationFailures.Inc()
			s.log.Warn("invalidate question cache", zap.Int64("question_id", id), zap.Error(err))
		}
	}
}
