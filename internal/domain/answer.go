package domain

import (
	"fmt"
	"math"
	"slices"
)

// Evaluation classifies one answer option for display and scoring.
type Evaluation string

const (
	EvalUnanswered      Evaluation = "unanswered"
	EvalCorrect         Evaluation = "correct"
	EvalIncorrectChosen Evaluation = "incorrect-chosen"
	EvalNeutral         Evaluation = "neutral"
)

// Evaluate classifies option given the correct set and the chosen answer.
// chosen is 0 while the question is unanswered.
func Evaluate(correct []int, chosen, option int) Evaluation {
	switch {
	case chosen == 0:
		return EvalUnanswered
	case slices.Contains(correct, option):
		return EvalCorrect
	case option == chosen:
		return EvalIncorrectChosen
	default:
		return EvalNeutral
	}
}

// AnsweredQuestion pairs a question's correct set with the chosen answer
// (0 when not answered).
type AnsweredQuestion struct {
	CorrectAnswers []int
	Answer         int
}

// Results is the aggregate score over a set of questions. Status is false
// until at least one question is answered.
type Results struct {
	Status     bool   `json:"status"`
	N          int    `json:"n"`
	Correct    int    `json:"correct"`
	Percentage string `json:"percentage,omitempty"`
}

// CalculateResults scores the answered questions among qs.
func CalculateResults(qs []AnsweredQuestion) Results {
	n, correct := 0, 0
	for _, q := range qs {
		if q.Answer == 0 {
			continue
		}
		n++
		if slices.Contains(q.CorrectAnswers, q.Answer) {
			correct++
		}
	}
	if n == 0 {
		return Results{Status: false}
	}
	pct := math.Round(float64(correct)/float64(n)*10000) / 100
	return Results{
		Status:     true,
		N:          n,
		Correct:    correct,
		Percentage: fmt.Sprintf("%.2f%%", pct),
	}
}

// ValidateAnswer checks a submitted answer option.
func ValidateAnswer(answer int) error {
	if answer < 1 || answer > 3 {
		return fmt.Errorf("%w: answer must be 1, 2 or 3", ErrModelValidation)
	}
	return nil
}
