package app

import (
	"context"

	"medmcq/internal/domain"
)

// QuestionSelector resolves selections to question ids against a backing store.
type QuestionSelector interface {
	ProfileQuestionIDs(ctx context.Context, userID, semesterID int64) ([]int64, error)
	ExamSetQuestionIDs(ctx context.Context, setID int64) ([]int64, error)
	SearchQuestionIDs(ctx context.Context, semesterID int64, tokens []string) ([]int64, error)
	// FilterQuestionIDs applies the metadata conjunction. A non-zero
	// excludeAnsweredBy drops questions that user has answered.
	FilterQuestionIDs(ctx context.Context, f domain.FilteredSelection, excludeAnsweredBy int64) ([]int64, error)
}

// QuestionStore persists admin-authored questions and user answers.
type QuestionStore interface {
	QuestionSelector
	CreateQuestion(ctx context.Context, in domain.QuestionInput) (int64, error)
	UpdateQuestion(ctx context.Context, id int64, in domain.QuestionInput) error
	DeleteQuestion(ctx context.Context, id int64) (int, error)
	RecordAnswer(ctx context.Context, a domain.UserAnswer) (domain.UserAnswer, error)
	UserAnswers(ctx context.Context, userID, semesterID int64) ([]domain.UserAnswer, error)
}

// QuestionCache serves question payloads and votes by id (from cache/backing store).
type QuestionCache interface {
	GetQuestion(ctx context.Context, id int64) (domain.Question, error)
	GetVote(ctx context.Context, kind domain.MetadataKind, id int64) (domain.Vote, error)
	InvalidateQuestion(ctx context.Context, id int64) error
	InvalidateVote(ctx context.Context, kind domain.MetadataKind, id int64) error
}

// QuestionLoader fetches question payloads and votes from the backing store
// on a cache miss.
type QuestionLoader interface {
	LoadQuestion(ctx context.Context, id int64) (domain.Question, error)
	LoadVote(ctx context.Context, kind domain.MetadataKind, id int64) (domain.Vote, error)
}

// VoteStore keeps at most one vote row per (user, question, metadata).
type VoteStore interface {
	// UpsertVote inserts or updates the caller's row atomically and returns it.
	UpsertVote(ctx context.Context, v domain.Vote) (domain.Vote, error)
	// DeleteVote removes the row and returns its id, or ErrNotFound.
	DeleteVote(ctx context.Context, kind domain.MetadataKind, userID, questionID, metadataID int64) (int64, error)
	UserVotes(ctx context.Context, kind domain.MetadataKind, userID, questionID int64) ([]domain.Vote, error)
	// QuestionCounts returns, per metadata id, how many questions carry it actively.
	QuestionCounts(ctx context.Context, kind domain.MetadataKind, metadataIDs []int64) (map[int64]int, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error)
	GetComment(ctx context.Context, id int64) (domain.Comment, error)
	UpdateComment(ctx context.Context, c domain.Comment) error
	DeleteComment(ctx context.Context, id int64) error
	QuestionComments(ctx context.Context, questionID int64) ([]domain.Comment, error)
	// ToggleLike flips the like and reports whether it is now set.
	ToggleLike(ctx context.Context, commentID, userID int64) (bool, error)
}

type BookmarkStore interface {
	CreateBookmark(ctx context.Context, userID, questionID int64) (domain.Bookmark, error)
	DeleteBookmark(ctx context.Context, userID, questionID int64) error
	UserBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UserByID(ctx context.Context, id int64) (domain.User, error)
}

type MetadataStore interface {
	Semesters(ctx context.Context) ([]domain.Semester, error)
	ExamSets(ctx context.Context, semesterID int64) ([]domain.ExamSet, error)
	GetExamSet(ctx context.Context, id int64) (domain.ExamSet, error)
	CreateExamSet(ctx context.Context, e domain.ExamSet) (domain.ExamSet, error)
	UpdateExamSet(ctx context.Context, e domain.ExamSet) error
	DeleteExamSet(ctx context.Context, id int64) error
	Metadata(ctx context.Context, kind domain.MetadataKind, semesterID int64) ([]domain.Metadata, error)
	GetMetadata(ctx context.Context, kind domain.MetadataKind, id int64) (domain.Metadata, error)
}

// EventPublisher announces domain events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}
