package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"medmcq/internal/domain"
	"medmcq/internal/metrics"
)

// EventTagSuggested is published when a user proposes a new tag for a question.
const EventTagSuggested = "tag.suggested"

// VoteService applies tag/specialty votes and answers aggregate questions about them.
type VoteService struct {
	votes     VoteStore
	metadata  MetadataStore
	cache     QuestionCache
	questions *QuestionService
	events    EventPublisher
	log       *zap.Logger
}

func NewVoteService(votes VoteStore, metadata MetadataStore, cache QuestionCache, questions *QuestionService, events EventPublisher, log *zap.Logger) *VoteService {
	return &VoteService{
		votes:     votes,
		metadata:  metadata,
		cache:     cache,
		questions: questions,
		events:    events,
		log:       log,
	}
}

// Vote applies op for the viewer on (questionID, metadataID) and returns the
// refreshed question.
func (s *VoteService) Vote(ctx context.Context, viewer *domain.Viewer, kind domain.MetadataKind, questionID, metadataID int64, op domain.VoteOp) (domain.QuestionView, error) {
	if !viewer.Authenticated() {
		return domain.QuestionView{}, fmt.Errorf("%w: log in to vote", domain.ErrNotAuthorized)
	}
	if err := domain.ValidateVoteOp(op); err != nil {
		return domain.QuestionView{}, err
	}
	q, err := s.cache.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	meta, err := s.metadata.GetMetadata(ctx, kind, metadataID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if meta.SemesterID != q.Semester.ID {
		return domain.QuestionView{}, fmt.Errorf("%w: %s %d belongs to another semester", domain.ErrModelValidation, kind, metadataID)
	}

	var (
		voteID int64
		opName string
	)
	switch op := op.(type) {
	case domain.SetVote:
		opName = "set"
		v, err := s.votes.UpsertVote(ctx, domain.Vote{
			Kind:       kind,
			UserID:     viewer.UserID,
			QuestionID: questionID,
			MetadataID: metadataID,
			Value:      op.Value,
		})
		if err != nil {
			return domain.QuestionView{}, err
		}
		voteID = v.ID
	case domain.ClearVote:
		opName = "clear"
		voteID, err = s.votes.DeleteVote(ctx, kind, viewer.UserID, questionID, metadataID)
		if errors.Is(err, domain.ErrNotFound) {
			err = nil
		}
		if err != nil {
			return domain.QuestionView{}, err
		}
	}
	metrics.VoteWrites.WithLabelValues(string(kind), opName).Inc()
	s.invalidate(ctx, kind, questionID, voteID)

	return s.questions.Get(ctx, viewer, questionID)
}

// invalidate runs after the vote is committed. A failure leaves a stale entry
// that expires with the cache TTL; it is logged and counted, not returned.
func (s *VoteService) invalidate(ctx context.Context, kind domain.MetadataKind, questionID, voteID int64) {
	if err := s.cache.InvalidateQuestion(ctx, questionID); err != nil {
		metrics.CacheInvalidationFailures.Inc()
		s.log.Warn("invalidate question cache", zap.Int64("question_id", questionID), zap.Error(err))
	}
	if voteID == 0 {
		return
	}
	if err := s.cache.InvalidateVote(ctx, kind, voteID); err != nil {
		metrics.CacheInvalidationFailures.Inc()
		s.log.Warn("invalidate vote cache", zap.String("kind", string(kind)), zap.Int64("vote_id", voteID), zap.Error(err))
	}
}

// GetVote returns a single vote by id.
func (s *VoteService) GetVote(ctx context.Context, kind domain.MetadataKind, id int64) (domain.Vote, error) {
	return s.cache.GetVote(ctx, kind, id)
}

// QuestionCount reports how many questions carry metadataID actively.
func (s *VoteService) QuestionCount(ctx context.Context, kind domain.MetadataKind, metadataID int64) (int, error) {
	counts, err := s.votes.QuestionCounts(ctx, kind, []int64{metadataID})
	if err != nil {
		return 0, err
	}
	return counts[metadataID], nil
}

// TagSuggestion is the payload of EventTagSuggested.
type TagSuggestion struct {
	TagName    string        `json:"tagName"`
	QuestionID int64         `json:"questionId"`
	Semester   int           `json:"semester"`
	Year       int           `json:"year"`
	Season     domain.Season `json:"season"`
	ExamSetQno int           `json:"examSetQno"`
	Text       string        `json:"text"`
	Answers    [3]string     `json:"answers"`
}

// SuggestTag forwards a tag proposal to the maintainers.
func (s *VoteService) SuggestTag(ctx context.Context, tagName string, questionID int64) (string, error) {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return "", fmt.Errorf("%w: tag name is required", domain.ErrModelValidation)
	}
	q, err := s.cache.GetQuestion(ctx, questionID)
	if err != nil {
		return "", err
	}
	err = s.events.Publish(ctx, EventTagSuggested, TagSuggestion{
		TagName:    tagName,
		QuestionID: q.ID,
		Semester:   q.Semester.Value,
		Year:       q.ExamSet.Year,
		Season:     q.ExamSet.Season,
		ExamSetQno: q.ExamSetQno,
		Text:       q.Text,
		Answers:    [3]string{q.Answer1, q.Answer2, q.Answer3},
	})
	if err != nil {
		return "", fmt.Errorf("publish tag suggestion: %w", err)
	}
	return fmt.Sprintf("Tag %q has been suggested.", tagName), nil
}
