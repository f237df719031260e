package quiz

import (
	"testing"

	"medmcq/internal/domain"
)

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 10, Text: "Hvad er PSA?", Answer1: "Et enzym", Answer2: "Et hormon", Answer3: "Et vitamin", CorrectAnswers: []int{1}},
		{ID: 11, Text: "Hvilke er korrekte?", Answer1: "A", Answer2: "B", Answer3: "C", CorrectAnswers: []int{2, 3}},
		{ID: 12, Text: "Sidste", Answer1: "X", Answer2: "Y", Answer3: "Z", CorrectAnswers: []int{3}},
	}
}

func TestLoadAndAnswer(t *testing.T) {
	s := Reduce(State{}, Load{Questions: sampleQuestions()})
	if s.Status != StatusReady || len(s.Questions) != 3 || s.Index != 0 {
		t.Fatalf("unexpected state after load: %+v", s)
	}

	answered := Reduce(s, Answer{QuestionID: 10, Option: 2})
	if answered.Answered(10) != 2 {
		t.Fatalf("expected answer 2 recorded, got %d", answered.Answered(10))
	}
	if s.Answered(10) != 0 {
		t.Fatalf("reducer mutated the previous state")
	}

	again := Reduce(answered, Answer{QuestionID: 10, Option: 1})
	if again.Answered(10) != 2 {
		t.Fatalf("expected first answer to stick, got %d", again.Answered(10))
	}
}

func TestAnswerIgnoresInvalidActions(t *testing.T) {
	s := Reduce(State{}, Load{Questions: sampleQuestions()})
	for _, a := range []Answer{{QuestionID: 10, Option: 0}, {QuestionID: 10, Option: 4}, {QuestionID: 99, Option: 1}} {
		if got := Reduce(s, a); len(got.Answers) != 0 {
			t.Fatalf("expected %+v to be ignored, got answers %v", a, got.Answers)
		}
	}
	if got := Reduce(State{}, Answer{QuestionID: 10, Option: 1}); len(got.Answers) != 0 {
		t.Fatalf("expected answer before load to be ignored")
	}
}

func TestLoadEmptyFails(t *testing.T) {
	s := Reduce(State{}, Load{})
	if s.Status != StatusFailed || s.Failure == nil || s.Failure.Kind != domain.KindNotFound {
		t.Fatalf("expected NotFound failure, got %+v", s)
	}
	if s.Failure.Message != "No questions found" {
		t.Fatalf("unexpected message %q", s.Failure.Message)
	}
}

func TestStepClampsAndJump(t *testing.T) {
	s := Reduce(State{}, Load{Questions: sampleQuestions()})
	s = Reduce(s, Step{Delta: -1})
	if s.Index != 0 {
		t.Fatalf("expected clamp at 0, got %d", s.Index)
	}
	s = Reduce(s, Step{Delta: 5})
	if s.Index != 2 {
		t.Fatalf("expected clamp at last index, got %d", s.Index)
	}
	s = Reduce(s, Jump{Index: 1})
	if s.Index != 1 {
		t.Fatalf("expected jump to 1, got %d", s.Index)
	}
	if got := Reduce(s, Jump{Index: 3}); got.Index != 1 {
		t.Fatalf("expected out of range jump to be ignored, got %d", got.Index)
	}
}

func TestFailKeepsProgress(t *testing.T) {
	s := Reduce(State{}, Load{Questions: sampleQuestions()})
	s = Reduce(s, Answer{QuestionID: 10, Option: 1})
	failed := Reduce(s, Fail{Kind: domain.KindNotAuthorized, Message: "log in"})
	if failed.Status != StatusFailed || failed.Answered(10) != 1 {
		t.Fatalf("unexpected failed state: %+v", failed)
	}
	if s.Failure != nil {
		t.Fatalf("fail mutated the previous state")
	}
}

func TestResultsAndView(t *testing.T) {
	s := Reduce(State{}, Load{Questions: sampleQuestions()})
	if r := s.Results(); r.Status {
		t.Fatalf("expected no results before answering, got %+v", r)
	}

	s = Reduce(s, Answer{QuestionID: 10, Option: 1})
	s = Reduce(s, Answer{QuestionID: 11, Option: 1})
	s = Reduce(s, Answer{QuestionID: 12, Option: 3})
	r := s.Results()
	if !r.Status || r.N != 3 || r.Correct != 2 || r.Percentage != "66.67%" {
		t.Fatalf("unexpected results %+v", r)
	}

	s = Reduce(s, Jump{Index: 1})
	v, ok := s.View()
	if !ok {
		t.Fatalf("expected a current question")
	}
	want := [3]domain.Evaluation{domain.EvalIncorrectChosen, domain.EvalCorrect, domain.EvalCorrect}
	for i, o := range v.Options {
		if o.Evaluation != want[i] {
			t.Fatalf("option %d: expected %s, got %s", o.Option, want[i], o.Evaluation)
		}
	}
}

func TestSnapshotUnanswered(t *testing.T) {
	snap := Reduce(State{}, Load{Questions: sampleQuestions()}).Snapshot()
	if snap.Total != 3 || snap.Current == nil || snap.Current.Answered {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	for _, o := range snap.Current.Options {
		if o.Evaluation != domain.EvalUnanswered {
			t.Fatalf("expected unanswered evaluation, got %s", o.Evaluation)
		}
	}
}
