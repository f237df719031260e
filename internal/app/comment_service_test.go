package app_test

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/domain"
)

func TestCommentOwnership(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()
	q := e.sample.Questions[0]

	_, err := e.svc.Comments.Create(ctx, nil, q, app.CommentInput{Text: "Anonym"})
	expectKind(t, err, domain.KindNotAuthorized)
	_, err = e.svc.Comments.Create(ctx, e.user, q, app.CommentInput{Text: "  "})
	expectKind(t, err, domain.KindModelValidation)

	view, err := e.svc.Comments.Create(ctx, e.user, q, app.CommentInput{Text: "Husk PSA"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := view.PublicComments[0].ID

	_, err = e.svc.Comments.Edit(ctx, e.other, q, id, app.CommentInput{Text: "Overtaget"})
	expectKind(t, err, domain.KindNotAuthorized)
	_, err = e.svc.Comments.Edit(ctx, e.user, e.sample.Questions[1], id, app.CommentInput{Text: "Forkert spørgsmål"})
	expectKind(t, err, domain.KindNotFound)

	view, err = e.svc.Comments.Edit(ctx, e.admin, q, id, app.CommentInput{Text: "Rettet af admin"})
	if err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	if view.PublicComments[0].Text != "Rettet af admin" {
		t.Fatalf("unexpected comment %+v", view.PublicComments[0])
	}

	view, err = e.svc.Comments.Delete(ctx, e.user, q, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(view.PublicComments) != 0 {
		t.Fatalf("expected comment to be gone")
	}
}

func TestAdminSeesPrivateCommentsSlot(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	view, err := e.svc.Questions.Get(context.Background(), e.admin, e.sample.Questions[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.PrivateComments == nil {
		t.Fatalf("expected empty private comment list for admin")
	}
}

func TestBookmarkRequiresExistingQuestion(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()
	_, err := e.svc.Bookmarks.Create(ctx, e.user, 9999)
	expectKind(t, err, domain.KindNotFound)
	_, err = e.svc.Bookmarks.Create(ctx, nil, e.sample.Questions[0])
	expectKind(t, err, domain.KindNotAuthorized)

	if _, err := e.svc.Bookmarks.Create(ctx, e.user, e.sample.Questions[0]); err != nil {
		t.Fatalf("bookmark: %v", err)
	}
	bookmarks, err := e.svc.Bookmarks.List(ctx, e.user)
	if err != nil || len(bookmarks) != 1 {
		t.Fatalf("list: %+v %v", bookmarks, err)
	}
}

func TestProfileUsesLatestAnswer(t *testing.T) {
	e := newEnv(t, zap.NewNop())
	ctx := context.Background()
	q := e.sample.Questions[0]
	for _, answer := range []int{2, 1} {
		if _, err := e.svc.Questions.Answer(ctx, e.user, q, answer); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}
	profile, err := e.svc.Profiles.Get(ctx, e.user, 0)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Results.N != 1 || profile.Results.Percentage != "100.00%" {
		t.Fatalf("unexpected results %+v", profile.Results)
	}
	if _, err := e.svc.Profiles.Get(ctx, nil, 0); domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected NotAuthorized, got %v", err)
	}
}
