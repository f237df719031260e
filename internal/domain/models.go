package domain

import "time"

// Role gates write operations and private data.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Season is the exam sitting within a year.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonFall   Season = "fall"
)

// Valid reports whether s is one of the two known seasons.
func (s Season) Valid() bool {
	return s == SeasonSpring || s == SeasonFall
}

// Viewer is the caller of an operation. A nil *Viewer is anonymous.
type Viewer struct {
	UserID int64
	Role   Role
}

func (v *Viewer) Authenticated() bool { return v != nil && v.UserID > 0 }

func (v *Viewer) IsAdmin() bool { return v != nil && v.Role == RoleAdmin }

// Owns reports whether the viewer may modify something authored by userID.
func (v *Viewer) Owns(userID int64) bool {
	return v.IsAdmin() || (v.Authenticated() && v.UserID == userID)
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Semester struct {
	ID        int64  `json:"id"`
	Value     int    `json:"value"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type ExamSet struct {
	ID         int64  `json:"id"`
	SemesterID int64  `json:"semesterId"`
	Year       int    `json:"year"`
	Season     Season `json:"season"`
}

// Metadata is a tag or a specialty. ParentID is only used by tags.
type Metadata struct {
	ID            int64        `json:"id"`
	Kind          MetadataKind `json:"kind"`
	SemesterID    int64        `json:"semesterId"`
	ParentID      *int64       `json:"parentId,omitempty"`
	Name          string       `json:"name"`
	QuestionCount int          `json:"questionCount"`
}

// Association is an active link between a question and a tag or specialty.
type Association struct {
	MetadataID int64  `json:"id"`
	Name       string `json:"name"`
	Votes      int    `json:"votes"`
}

// Question is the cacheable payload of a question. It carries aggregate
// metadata, so any vote write must invalidate it.
type Question struct {
	ID             int64         `json:"id"`
	Text           string        `json:"text"`
	Answer1        string        `json:"answer1"`
	Answer2        string        `json:"answer2"`
	Answer3        string        `json:"answer3"`
	Image          string        `json:"image,omitempty"`
	ExamSetID      int64         `json:"examSetId"`
	ExamSetQno     int           `json:"examSetQno"`
	CorrectAnswers []int         `json:"correctAnswers"`
	ExamSet        ExamSet       `json:"examSet"`
	Semester       Semester      `json:"semester"`
	Tags           []Association `json:"tags"`
	Specialties    []Association `json:"specialties"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// QuestionView is a question as seen by a particular viewer.
type QuestionView struct {
	Question
	PublicComments     []Comment `json:"publicComments"`
	PrivateComments    []Comment `json:"privateComments,omitempty"`
	UserTagVotes       []Vote    `json:"userTagVotes"`
	UserSpecialtyVotes []Vote    `json:"userSpecialtyVotes"`
}

// QuestionInput is the admin-authored part of a question.
type QuestionInput struct {
	Text           string `json:"text"`
	Answer1        string `json:"answer1"`
	Answer2        string `json:"answer2"`
	Answer3        string `json:"answer3"`
	Image          string `json:"image"`
	ExamSetID      int64  `json:"examSetId"`
	ExamSetQno     int    `json:"examSetQno"`
	CorrectAnswers []int  `json:"correctAnswers"`
}

// QuestionPatch carries optional replacements; nil fields are left untouched.
type QuestionPatch struct {
	Text           *string `json:"text"`
	Answer1        *string `json:"answer1"`
	Answer2        *string `json:"answer2"`
	Answer3        *string `json:"answer3"`
	Image          *string `json:"image"`
	ExamSetID      *int64  `json:"examSetId"`
	ExamSetQno     *int    `json:"examSetQno"`
	CorrectAnswers []int   `json:"correctAnswers"`
}

type Comment struct {
	ID          int64     `json:"id"`
	QuestionID  int64     `json:"questionId"`
	UserID      int64     `json:"userId,omitempty"`
	Username    string    `json:"username,omitempty"`
	Text        string    `json:"text"`
	IsPrivate   bool      `json:"isPrivate"`
	IsAnonymous bool      `json:"isAnonymous"`
	Likes       []int64   `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Redacted hides the author of anonymous comments.
func (c Comment) Redacted() Comment {
	if c.IsAnonymous {
		c.UserID = 0
		c.Username = ""
	}
	return c
}

type Bookmark struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	QuestionID int64     `json:"questionId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserAnswer is one recorded answer. UserID is zero for anonymous answers.
type UserAnswer struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId,omitempty"`
	QuestionID int64     `json:"questionId"`
	Answer     int       `json:"answer"`
	CreatedAt  time.Time `json:"createdAt"`
}
