package app_test

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"medmcq/internal/domain"
	"medmcq/internal/quiz"
)

func TestQuizRun(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()

	state, err := e.svc.Quiz.Start(ctx, e.user, "run", domain.SelectionParams{SetID: e.sample.ExamSet.ID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.Status != quiz.StatusReady || len(state.Questions) != 3 {
		t.Fatalf("unexpected state %+v", state.Snapshot())
	}

	for _, option := range []int{1, 2, 3} {
		if state, err = e.svc.Quiz.Answer(ctx, e.user, "run", option); err != nil {
			t.Fatalf("answer: %v", err)
		}
		if state, err = e.svc.Quiz.Step(ctx, "run", 1); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	results := state.Results()
	if results.N != 3 || results.Correct != 2 || results.Percentage != "66.67%" {
		t.Fatalf("unexpected results %+v", results)
	}

	// answers were recorded for the profile
	profile, err := e.svc.Profiles.Get(ctx, e.user, e.sample.Semester.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(profile.Answers) != 3 || profile.Results != results {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if state, err = e.svc.Quiz.Jump(ctx, "run", 0); err != nil || state.Index != 0 {
		t.Fatalf("jump: %d %v", state.Index, err)
	}
	if err := e.svc.Quiz.End(ctx, "run"); err != nil {
		t.Fatalf("end: %v", err)
	}
	_, err = e.svc.Quiz.Step(ctx, "run", 1)
	expectKind(t, err, domain.KindNotFound)
}

func TestQuizAnswerTwiceKeepsFirst(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()
	if _, err := e.svc.Quiz.Start(ctx, nil, "run", domain.SelectionParams{IDs: e.sample.Questions[:1]}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.svc.Quiz.Answer(ctx, nil, "run", 2); err != nil {
		t.Fatalf("answer: %v", err)
	}
	state, err := e.svc.Quiz.Answer(ctx, nil, "run", 1)
	if err != nil {
		t.Fatalf("answer again: %v", err)
	}
	if state.Answered(e.sample.Questions[0]) != 2 {
		t.Fatalf("expected first answer to stick, got %d", state.Answered(e.sample.Questions[0]))
	}
}

func TestQuizStartFailureIsState(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	state, err := e.svc.Quiz.Start(context.Background(), nil, "run", domain.SelectionParams{Semester: e.sample.Semester.ID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.Status != quiz.StatusFailed || state.Failure.Kind != domain.KindNotAuthorized {
		t.Fatalf("expected NotAuthorized failure, got %+v", state.Snapshot())
	}
}

func TestQuizInvalidOptionIsRejected(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()
	if _, err := e.svc.Quiz.Start(ctx, nil, "run", domain.SelectionParams{IDs: e.sample.Questions}); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := e.svc.Quiz.Answer(ctx, nil, "run", 0)
	expectKind(t, err, domain.KindModelValidation)
}
