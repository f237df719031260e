package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"medmcq/internal/domain"
)

// CommentService handles comments and comment likes. Every write returns the
// refreshed question so clients can re-render it in one round trip.
type CommentService struct {
	comments  CommentStore
	questions *QuestionService
	log       *zap.Logger
}

func NewCommentService(comments CommentStore, questions *QuestionService, log *zap.Logger) *CommentService {
	return &CommentService{comments: comments, questions: questions, log: log}
}

// CommentInput is the writable part of a comment.
type CommentInput struct {
	Text        string `json:"text"`
	IsPrivate   bool   `json:"isPrivate"`
	IsAnonymous bool   `json:"isAnonymous"`
}

func (s *CommentService) Create(ctx context.Context, viewer *domain.Viewer, questionID int64, in CommentInput) (domain.QuestionView, error) {
	if !viewer.Authenticated() {
		return domain.QuestionView{}, fmt.Errorf("%w: log in to comment", domain.ErrNotAuthorized)
	}
	if err := domain.ValidateComment(in.Text); err != nil {
		return domain.QuestionView{}, err
	}
	if _, err := s.questions.cache.GetQuestion(ctx, questionID); err != nil {
		return domain.QuestionView{}, err
	}
	c, err := s.comments.CreateComment(ctx, domain.Comment{
		QuestionID:  questionID,
		UserID:      viewer.UserID,
		Text:        in.Text,
		IsPrivate:   in.IsPrivate,
		IsAnonymous: in.IsAnonymous,
	})
	if err != nil {
		return domain.QuestionView{}, err
	}
	s.log.Debug("comment created", zap.Int64("comment_id", c.ID), zap.Int64("question_id", questionID))
	return s.questions.Get(ctx, viewer, questionID)
}

// Edit replaces the text and flags of a comment. Owner or admin only.
func (s *CommentService) Edit(ctx context.Context, viewer *domain.Viewer, questionID, commentID int64, in CommentInput) (domain.QuestionView, error) {
	c, err := s.owned(ctx, viewer, questionID, commentID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if err := domain.ValidateComment(in.Text); err != nil {
		return domain.QuestionView{}, err
	}
	c.Text = in.Text
	c.IsPrivate = in.IsPrivate
	c.IsAnonymous = in.IsAnonymous
	if err := s.comments.UpdateComment(ctx, c); err != nil {
		return domain.QuestionView{}, err
	}
	return s.questions.Get(ctx, viewer, questionID)
}

// Delete removes a comment. Owner or admin only.
func (s *CommentService) Delete(ctx context.Context, viewer *domain.Viewer, questionID, commentID int64) (domain.QuestionView, error) {
	if _, err := s.owned(ctx, viewer, questionID, commentID); err != nil {
		return domain.QuestionView{}, err
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return domain.QuestionView{}, err
	}
	return s.questions.Get(ctx, viewer, questionID)
}

// Like toggles the viewer's like on a comment.
func (s *CommentService) Like(ctx context.Context, viewer *domain.Viewer, questionID, commentID int64) (domain.QuestionView, error) {
	if !viewer.Authenticated() {
		return domain.QuestionView{}, fmt.Errorf("%w: log in to like comments", domain.ErrNotAuthorized)
	}
	if _, err := s.comment(ctx, questionID, commentID); err != nil {
		return domain.QuestionView{}, err
	}
	if _, err := s.comments.ToggleLike(ctx, commentID, viewer.UserID); err != nil {
		return domain.QuestionView{}, err
	}
	return s.questions.Get(ctx, viewer, questionID)
}

func (s *CommentService) owned(ctx context.Context, viewer *domain.Viewer, questionID, commentID int64) (domain.Comment, error) {
	if !viewer.Authenticated() {
		return domain.Comment{}, domain.ErrNotAuthorized
	}
	c, err := s.comment(ctx, questionID, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	if !viewer.Owns(c.UserID) {
		return domain.Comment{}, fmt.Errorf("%w: comment %d belongs to another user", domain.ErrNotAuthorized, commentID)
	}
	return c, nil
}

func (s *CommentService) comment(ctx context.Context, questionID, commentID int64) (domain.Comment, error) {
	c, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	if c.QuestionID != questionID {
		return domain.Comment{}, fmt.Errorf("%w: comment %d on question %d", domain.ErrNotFound, commentID, questionID)
	}
	return c, nil
}
