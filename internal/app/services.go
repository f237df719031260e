package app

import (
	"time"

	"go.uber.org/zap"
)

// Stores are the ports the use cases run against.
type Stores struct {
	Questions QuestionStore
	Votes     VoteStore
	Metadata  MetadataStore
	Comments  CommentStore
	Bookmarks BookmarkStore
	Users     UserStore
	Cache     QuestionCache
	Sessions  SessionRepository
	Events    EventPublisher
}

// Services bundles every use case exposed by the transports.
type Services struct {
	Questions *QuestionService
	Votes     *VoteService
	Metadata  *MetadataService
	Comments  *CommentService
	Bookmarks *BookmarkService
	Auth      *AuthService
	Profiles  *ProfileService
	Quiz      *QuizService
}

// NewServices wires the use cases over one set of stores.
func NewServices(st Stores, authSecret string, authTTL time.Duration, log *zap.Logger) Services {
	questions := NewQuestionService(st.Questions, st.Cache, st.Votes, st.Comments, log)
	return Services{
		Questions: questions,
		Votes:     NewVoteService(st.Votes, st.Metadata, st.Cache, questions, st.Events, log),
		Metadata:  NewMetadataService(st.Metadata, st.Votes, st.Questions, st.Cache, log),
		Comments:  NewCommentService(st.Comments, questions, log),
		Bookmarks: NewBookmarkService(st.Bookmarks, st.Cache),
		Auth:      NewAuthService(st.Users, authSecret, authTTL, log),
		Profiles:  NewProfileService(st.Users, st.Questions, st.Bookmarks, st.Cache),
		Quiz:      NewQuizService(st.Sessions, questions, log),
	}
}
