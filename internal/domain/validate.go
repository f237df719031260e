package domain

import (
	"fmt"
	"strings"
)

// ValidateCorrectAnswers enforces a non-empty subset of {1,2,3}. Duplicates
// are reported as a unique violation, mirroring the storage constraint.
func ValidateCorrectAnswers(answers []int) error {
	if len(answers) == 0 {
		return fmt.Errorf("%w: at least one correct answer is required", ErrModelValidation)
	}
	seen := make(map[int]struct{}, len(answers))
	for _, a := range answers {
		if a < 1 || a > 3 {
			return fmt.Errorf("%w: correct answer %d is out of range", ErrModelValidation, a)
		}
		if _, ok := seen[a]; ok {
			return fmt.Errorf("%w: correct answer %d is duplicated", ErrUniqueViolation, a)
		}
		seen[a] = struct{}{}
	}
	return nil
}

func (in QuestionInput) Validate() error {
	required := [...]struct{ field, value string }{
		{"text", in.Text},
		{"answer1", in.Answer1},
		{"answer2", in.Answer2},
		{"answer3", in.Answer3},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrModelValidation, r.field)
		}
	}
	if in.ExamSetID <= 0 {
		return fmt.Errorf("%w: examSetId is required", ErrModelValidation)
	}
	return ValidateCorrectAnswers(in.CorrectAnswers)
}

// Apply returns q with the patch applied and validated.
func (p QuestionPatch) Apply(q QuestionInput) (QuestionInput, error) {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Answer1 != nil {
		q.Answer1 = *p.Answer1
	}
	if p.Answer2 != nil {
		q.Answer2 = *p.Answer2
	}
	if p.Answer3 != nil {
		q.Answer3 = *p.Answer3
	}
	if p.Image != nil {
		q.Image = *p.Image
	}
	if p.ExamSetID != nil {
		q.ExamSetID = *p.ExamSetID
	}
	if p.ExamSetQno != nil {
		q.ExamSetQno = *p.ExamSetQno
	}
	if p.CorrectAnswers != nil {
		q.CorrectAnswers = p.CorrectAnswers
	}
	return q, q.Validate()
}

// Input extracts the admin-authored fields of q.
func (q Question) Input() QuestionInput {
	return QuestionInput{
		Text:           q.Text,
		Answer1:        q.Answer1,
		Answer2:        q.Answer2,
		Answer3:        q.Answer3,
		Image:          q.Image,
		ExamSetID:      q.ExamSetID,
		ExamSetQno:     q.ExamSetQno,
		CorrectAnswers: q.CorrectAnswers,
	}
}

func (e ExamSet) Validate() error {
	if e.SemesterID <= 0 {
		return fmt.Errorf("%w: semesterId is required", ErrModelValidation)
	}
	if e.Year < 1900 || e.Year > 2999 {
		return fmt.Errorf("%w: year %d is out of range", ErrModelValidation, e.Year)
	}
	if !e.Season.Valid() {
		return fmt.Errorf("%w: unknown season %q", ErrModelValidation, e.Season)
	}
	return nil
}

// ValidateComment requires non-empty text.
func ValidateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: comment text is required", ErrModelValidation)
	}
	return nil
}
