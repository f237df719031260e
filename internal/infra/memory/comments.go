package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"medmcq/internal/domain"
)

func (s *Store) CreateComment(_ context.Context, c domain.Comment) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[c.QuestionID]; !ok {
		return domain.Comment{}, fmt.Errorf("%w: question %d does not exist", domain.ErrModelValidation, c.QuestionID)
	}
	now := s.now()
	c.ID = s.nextID("comments")
	c.CreatedAt, c.UpdatedAt = now, now
	c.Likes = nil
	s.comments[c.ID] = c
	return s.commentLocked(c), nil
}

func (s *Store) GetComment(_ context.Context, id int64) (domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, fmt.Errorf("%w: comment %d", domain.ErrNotFound, id)
	}
	return s.commentLocked(c), nil
}

func (s *Store) UpdateComment(_ context.Context, c domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.comments[c.ID]
	if !ok {
		return fmt.Errorf("%w: comment %d", domain.ErrNotFound, c.ID)
	}
	existing.Text = c.Text
	existing.IsPrivate = c.IsPrivate
	existing.IsAnonymous = c.IsAnonymous
	existing.UpdatedAt = s.now()
	s.comments[c.ID] = existing
	return nil
}

func (s *Store) DeleteComment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return fmt.Errorf("%w: comment %d", domain.ErrNotFound, id)
	}
	delete(s.comments, id)
	delete(s.likes, id)
	return nil
}

// QuestionComments lists comments of a question oldest first.
func (s *Store) QuestionComments(_ context.Context, questionID int64) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Comment, 0)
	for _, c := range s.comments {
		if c.QuestionID == questionID {
			out = append(out, s.commentLocked(c))
		}
	}
	slices.SortFunc(out, func(a, b domain.Comment) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) ToggleLike(_ context.Context, commentID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[commentID]; !ok {
		return false, fmt.Errorf("%w: comment %d", domain.ErrNotFound, commentID)
	}
	likes := s.likes[commentID]
	if _, ok := likes[userID]; ok {
		delete(likes, userID)
		return false, nil
	}
	if likes == nil {
		likes = make(map[int64]struct{})
		s.likes[commentID] = likes
	}
	likes[userID] = struct{}{}
	return true, nil
}

// commentLocked fills the author name and likes.
func (s *Store) commentLocked(c domain.Comment) domain.Comment {
	c.Username = s.users[c.UserID].Username
	c.Likes = make([]int64, 0, len(s.likes[c.ID]))
	for uid := range s.likes[c.ID] {
		c.Likes = append(c.Likes, uid)
	}
	slices.Sort(c.Likes)
	return c
}

func (s *Store) CreateBookmark(_ context.Context, userID, questionID int64) (domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[questionID]; !ok {
		return domain.Bookmark{}, fmt.Errorf("%w: question %d does not exist", domain.ErrModelValidation, questionID)
	}
	for _, b := range s.bookmarks {
		if b.UserID == userID && b.QuestionID == questionID {
			return domain.Bookmark{}, fmt.Errorf("%w: question %d is already bookmarked", domain.ErrUniqueViolation, questionID)
		}
	}
	b := domain.Bookmark{ID: s.nextID("bookmarks"), UserID: userID, QuestionID: questionID, CreatedAt: s.now()}
	s.bookmarks[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBookmark(_ context.Context, userID, questionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.bookmarks {
		if b.UserID == userID && b.QuestionID == questionID {
			delete(s.bookmarks, id)
			return nil
		}
	}
	return fmt.Errorf("%w: bookmark on question %d", domain.ErrNotFound, questionID)
}

func (s *Store) UserBookmarks(_ context.Context, userID int64) ([]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Bookmark, 0)
	for _, b := range s.bookmarks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domain.Bookmark) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}
