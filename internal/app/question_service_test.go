package app_test

import (
	"context"
	"slices"
	"testing"

	"go.uber.org/zap"
	"medmcq/internal/domain"
)

func TestSelectIDsDeduplicatesAndSkipsMissing(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()
	q := e.sample.Questions[0]

	sel, err := domain.ResolveSelection(domain.SelectionParams{IDs: []int64{q, q, 9999}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	ids, err := e.svc.Questions.Select(ctx, nil, sel)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !slices.Equal(ids, []int64{q, 9999}) {
		t.Fatalf("unexpected ids %v", ids)
	}
	views, err := e.svc.Questions.SelectQuestions(ctx, nil, sel)
	if err != nil {
		t.Fatalf("select questions: %v", err)
	}
	if len(views) != 1 || views[0].ID != q {
		t.Fatalf("expected only the existing question, got %d", len(views))
	}
}

func TestSelectEmptyIDsIsNotFound(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	sel, err := domain.ResolveSelection(domain.SelectionParams{HasIDs: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, err = e.svc.Questions.Select(context.Background(), e.user, sel)
	expectKind(t, err, domain.KindNotFound)
	if err.Error() != "No questions found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFilteredSelectionOnlyNew(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()
	if _, err := e.svc.Questions.Answer(ctx, e.user, e.sample.Questions[0], 1); err != nil {
		t.Fatalf("answer: %v", err)
	}

	sel := domain.FilteredSelection{Semester: e.sample.Semester.ID, N: 10, OnlyNew: true}
	ids, err := e.svc.Questions.Select(ctx, e.user, sel)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	slices.Sort(ids)
	if !slices.Equal(ids, e.sample.Questions[1:]) {
		t.Fatalf("expected unanswered questions, got %v", ids)
	}

	// onlyNew is ignored for anonymous callers
	ids, err = e.svc.Questions.Select(ctx, nil, sel)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected all questions, got %v", ids)
	}
}

func TestFilteredSelectionSamplesN(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ids, err := e.svc.Questions.Select(context.Background(), e.user, domain.FilteredSelection{Semester: e.sample.Semester.ID, N: 2})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 sampled ids, got %v", ids)
	}
}

func TestProfileSelectionNeedsLogin(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	_, err := e.svc.Questions.Select(context.Background(), nil, domain.ProfileSelection{Semester: e.sample.Semester.ID})
	expectKind(t, err, domain.KindNotAuthorized)

	_, err = e.svc.Questions.Select(context.Background(), e.user, domain.ProfileSelection{Semester: e.sample.Semester.ID})
	expectKind(t, err, domain.KindNotFound)
}

func TestCreateQuestionIsAdminOnlyAndValidated(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()
	in := domain.QuestionInput{
		Text:           "Hvilket organ producerer insulin?",
		Answer1:        "Pancreas",
		Answer2:        "Lever",
		Answer3:        "Milt",
		ExamSetID:      e.sample.ExamSet.ID,
		ExamSetQno:     4,
		CorrectAnswers: []int{1},
	}
	_, err := e.svc.Questions.Create(ctx, e.user, in)
	expectKind(t, err, domain.KindNotAuthorized)

	bad := in
	bad.CorrectAnswers = []int{4}
	_, err = e.svc.Questions.Create(ctx, e.admin, bad)
	expectKind(t, err, domain.KindModelValidation)

	view, err := e.svc.Questions.Create(ctx, e.admin, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Semester.ID != e.sample.Semester.ID || view.ExamSet.Year != 2019 {
		t.Fatalf("expected exam set and semester to be embedded, got %+v", view.Question)
	}
}

func TestAnswerEvaluatesEveryOption(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	out, err := e.svc.Questions.Answer(context.Background(), nil, e.sample.Questions[2], 3)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	want := [3]domain.Evaluation{domain.EvalCorrect, domain.EvalCorrect, domain.EvalIncorrectChosen}
	if out.Correct || out.Evaluations != want {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Answer.UserID != 0 {
		t.Fatalf("anonymous answer stored with user %d", out.Answer.UserID)
	}
}

func TestPatchCommitsWhenInvalidationFails(t *testing.T) {
	e := newEnv(t, zap.NewNop(), withBrokenInvalidation)
	ctx := context.Background()
	id := e.sample.Questions[0]
	text := "Opdateret"

	view, err := e.svc.Questions.Patch(ctx, e.admin, id, domain.QuestionPatch{Text: &text})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	// the cached payload stays stale until its TTL runs out
	if view.Text == text {
		t.Fatalf("expected stale cached text")
	}
	stored, err := e.store.LoadQuestion(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Text != text {
		t.Fatalf("expected committed text, got %q", stored.Text)
	}
}
