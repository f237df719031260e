package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"medmcq/internal/domain"
)

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64       `bun:"id,pk,autoincrement"`
	Username     string      `bun:"username,notnull"`
	Email        string      `bun:"email,notnull"`
	PasswordHash string      `bun:"password_hash,notnull"`
	Role         domain.Role `bun:"role,notnull"`
	CreatedAt    time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (m userModel) domain() domain.User {
	return domain.User{ID: m.ID, Username: m.Username, Email: m.Email, PasswordHash: m.PasswordHash, Role: m.Role, CreatedAt: m.CreatedAt}
}

type semesterModel struct {
	bun.BaseModel `bun:"table:semesters,alias:sem"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Value     int    `bun:"value,notnull"`
	Name      string `bun:"name,notnull"`
	ShortName string `bun:"short_name,notnull"`
}

type examSetModel struct {
	bun.BaseModel `bun:"table:exam_sets,alias:es"`

	ID         int64         `bun:"id,pk,autoincrement"`
	SemesterID int64         `bun:"semester_id,notnull"`
	Year       int           `bun:"year,notnull"`
	Season     domain.Season `bun:"season,notnull"`
}

func (m examSetModel) domain() domain.ExamSet {
	return domain.ExamSet{ID: m.ID, SemesterID: m.SemesterID, Year: m.Year, Season: m.Season}
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID         int64     `bun:"id,pk,autoincrement"`
	ExamSetID  int64     `bun:"exam_set_id,notnull"`
	ExamSetQno int       `bun:"exam_set_qno,notnull"`
	Text       string    `bun:"text,notnull"`
	Answer1    string    `bun:"answer1,notnull"`
	Answer2    string    `bun:"answer2,notnull"`
	Answer3    string    `bun:"answer3,notnull"`
	Image      string    `bun:"image,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newQuestionModel(in domain.QuestionInput) *questionModel {
	return &questionModel{
		ExamSetID:  in.ExamSetID,
		ExamSetQno: in.ExamSetQno,
		Text:       in.Text,
		Answer1:    in.Answer1,
		Answer2:    in.Answer2,
		Answer3:    in.Answer3,
		Image:      in.Image,
	}
}

type correctAnswerModel struct {
	bun.BaseModel `bun:"table:question_correct_answers,alias:qca"`

	ID         int64 `bun:"id,pk,autoincrement"`
	QuestionID int64 `bun:"question_id,notnull"`
	Answer     int   `bun:"answer,notnull"`
}

type tagModel struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID         int64  `bun:"id,pk,autoincrement"`
	SemesterID int64  `bun:"semester_id,notnull"`
	ParentID   *int64 `bun:"parent_id"`
	Name       string `bun:"name,notnull"`
}

type specialtyModel struct {
	bun.BaseModel `bun:"table:specialties,alias:sp"`

	ID         int64  `bun:"id,pk,autoincrement"`
	SemesterID int64  `bun:"semester_id,notnull"`
	Name       string `bun:"name,notnull"`
}

// voteRow is scanned from either vote table with the metadata column aliased.
type voteRow struct {
	ID         int64     `bun:"id"`
	UserID     int64     `bun:"user_id"`
	QuestionID int64     `bun:"question_id"`
	MetadataID int64     `bun:"metadata_id"`
	Value      int       `bun:"value"`
	UpdatedAt  time.Time `bun:"updated_at"`
}

func (r voteRow) domain(kind domain.MetadataKind) domain.Vote {
	return domain.Vote{ID: r.ID, Kind: kind, UserID: r.UserID, QuestionID: r.QuestionID, MetadataID: r.MetadataID, Value: r.Value, UpdatedAt: r.UpdatedAt}
}

type answerModel struct {
	bun.BaseModel `bun:"table:question_user_answers,alias:qua"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,nullzero"`
	QuestionID int64     `bun:"question_id,notnull"`
	Answer     int       `bun:"answer,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (m answerModel) domain() domain.UserAnswer {
	return domain.UserAnswer{ID: m.ID, UserID: m.UserID, QuestionID: m.QuestionID, Answer: m.Answer, CreatedAt: m.CreatedAt}
}

type commentModel struct {
	bun.BaseModel `bun:"table:question_comments,alias:c"`

	ID          int64     `bun:"id,pk,autoincrement"`
	QuestionID  int64     `bun:"question_id,notnull"`
	UserID      int64     `bun:"user_id,notnull"`
	Username    string    `bun:"username,scanonly"`
	Text        string    `bun:"text,notnull"`
	IsPrivate   bool      `bun:"is_private,notnull"`
	IsAnonymous bool      `bun:"is_anonymous,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (m commentModel) domain() domain.Comment {
	return domain.Comment{
		ID:          m.ID,
		QuestionID:  m.QuestionID,
		UserID:      m.UserID,
		Username:    m.Username,
		Text:        m.Text,
		IsPrivate:   m.IsPrivate,
		IsAnonymous: m.IsAnonymous,
		Likes:       []int64{},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type commentLikeModel struct {
	bun.BaseModel `bun:"table:question_comment_likes,alias:cl"`

	CommentID int64 `bun:"comment_id,pk"`
	UserID    int64 `bun:"user_id,pk"`
}

type bookmarkModel struct {
	bun.BaseModel `bun:"table:question_bookmarks,alias:b"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	QuestionID int64     `bun:"question_id,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (m bookmarkModel) domain() domain.Bookmark {
	return domain.Bookmark{ID: m.ID, UserID: m.UserID, QuestionID: m.QuestionID, CreatedAt: m.CreatedAt}
}
