package app

import (
	"context"
	"fmt"

	"medmcq/internal/domain"
)

type BookmarkService struct {
	bookmarks BookmarkStore
	cache     QuestionCache
}

func NewBookmarkService(bookmarks BookmarkStore, cache QuestionCache) *BookmarkService {
	return &BookmarkService{bookmarks: bookmarks, cache: cache}
}

// Create bookmarks a question for the viewer. A second bookmark of the same
// question is a unique violation.
func (s *BookmarkService) Create(ctx context.Context, viewer *domain.Viewer, questionID int64) (domain.Bookmark, error) {
	if !viewer.Authenticated() {
		return domain.Bookmark{}, fmt.Errorf("%w: log in to bookmark questions", domain.ErrNotAuthorized)
	}
	if _, err := s.cache.GetQuestion(ctx, questionID); err != nil {
		return domain.Bookmark{}, err
	}
	return s.bookmarks.CreateBookmark(ctx, viewer.UserID, questionID)
}

func (s *BookmarkService) Delete(ctx context.Context, viewer *domain.Viewer, questionID int64) error {
	if !viewer.Authenticated() {
		return domain.ErrNotAuthorized
	}
	return s.bookmarks.DeleteBookmark(ctx, viewer.UserID, questionID)
}

func (s *BookmarkService) List(ctx context.Context, viewer *domain.Viewer) ([]domain.Bookmark, error) {
	if !viewer.Authenticated() {
		return nil, domain.ErrNotAuthorized
	}
	return s.bookmarks.UserBookmarks(ctx, viewer.UserID)
}
