package app

import (
	"context"
	"errors"

	"medmcq/internal/domain"
)

// Profile summarises a user's activity within a semester.
type Profile struct {
	User      domain.User         `json:"user"`
	Answers   []domain.UserAnswer `json:"answers"`
	Bookmarks []domain.Bookmark   `json:"bookmarks"`
	Results   domain.Results      `json:"results"`
}

type ProfileService struct {
	users     UserStore
	questions QuestionStore
	bookmarks BookmarkStore
	cache     QuestionCache
}

func NewProfileService(users UserStore, questions QuestionStore, bookmarks BookmarkStore, cache QuestionCache) *ProfileService {
	return &ProfileService{users: users, questions: questions, bookmarks: bookmarks, cache: cache}
}

// Get scores the viewer's latest answer per question. semesterID 0 spans all semesters.
func (s *ProfileService) Get(ctx context.Context, viewer *domain.Viewer, semesterID int64) (Profile, error) {
	if !viewer.Authenticated() {
		return Profile{}, domain.ErrNotAuthorized
	}
	u, err := s.users.UserByID(ctx, viewer.UserID)
	if err != nil {
		return Profile{}, err
	}
	answers, err := s.questions.UserAnswers(ctx, viewer.UserID, semesterID)
	if err != nil {
		return Profile{}, err
	}
	bookmarks, err := s.bookmarks.UserBookmarks(ctx, viewer.UserID)
	if err != nil {
		return Profile{}, err
	}

	// answers come oldest first; the last one per question counts
	latest := make(map[int64]int, len(answers))
	order := make([]int64, 0, len(answers))
	for _, a := range answers {
		if _, ok := latest[a.QuestionID]; !ok {
			order = append(order, a.QuestionID)
		}
		latest[a.QuestionID] = a.Answer
	}
	scored := make([]domain.AnsweredQuestion, 0, len(order))
	for _, id := range order {
		q, err := s.cache.GetQuestion(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return Profile{}, err
		}
		scored = append(scored, domain.AnsweredQuestion{CorrectAnswers: q.CorrectAnswers, Answer: latest[id]})
	}

	if answers == nil {
		answers = []domain.UserAnswer{}
	}
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}
	return Profile{User: u, Answers: answers, Bookmarks: bookmarks, Results: domain.CalculateResults(scored)}, nil
}
