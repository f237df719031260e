package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"medmcq/internal/domain"
)

func (s *Store) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	m := &commentModel{
		QuestionID:  c.QuestionID,
		UserID:      c.UserID,
		Text:        c.Text,
		IsPrivate:   c.IsPrivate,
		IsAnonymous: c.IsAnonymous,
	}
	if _, err := s.db.NewInsert().Model(m).Returning("id, created_at, updated_at").Exec(ctx); err != nil {
		return domain.Comment{}, mapError(err, "comment")
	}
	return s.GetComment(ctx, m.ID)
}

func (s *Store) GetComment(ctx context.Context, id int64) (domain.Comment, error) {
	var rows []commentModel
	if err := s.selectComments(&rows).Where("c.id = ?", id).Scan(ctx); err != nil {
		return domain.Comment{}, mapError(err, "comment")
	}
	if len(rows) == 0 {
		return domain.Comment{}, fmt.Errorf("%w: comment %d", domain.ErrNotFound, id)
	}
	out, err := s.withLikes(ctx, rows)
	if err != nil {
		return domain.Comment{}, err
	}
	return out[0], nil
}

func (s *Store) UpdateComment(ctx context.Context, c domain.Comment) error {
	m := &commentModel{ID: c.ID, Text: c.Text, IsPrivate: c.IsPrivate, IsAnonymous: c.IsAnonymous, UpdatedAt: time.Now()}
	res, err := s.db.NewUpdate().Model(m).
		Column("text", "is_private", "is_anonymous", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return mapError(err, "comment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: comment %d", domain.ErrNotFound, c.ID)
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*commentModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return mapError(err, "comment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: comment %d", domain.ErrNotFound, id)
	}
	return nil
}

func (s *Store) QuestionComments(ctx context.Context, questionID int64) ([]domain.Comment, error) {
	var rows []commentModel
	if err := s.selectComments(&rows).Where("c.question_id = ?", questionID).OrderExpr("c.id").Scan(ctx); err != nil {
		return nil, mapError(err, "comments")
	}
	return s.withLikes(ctx, rows)
}

// ToggleLike removes an existing like or adds a missing one in one transaction.
func (s *Store) ToggleLike(ctx context.Context, commentID, userID int64) (bool, error) {
	var liked bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*commentLikeModel)(nil)).
			Where("comment_id = ?", commentID).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
		liked = true
		_, err = tx.NewInsert().Model(&commentLikeModel{CommentID: commentID, UserID: userID}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		return err
	})
	if err != nil {
		return false, mapError(err, "comment like")
	}
	return liked, nil
}

func (s *Store) selectComments(rows *[]commentModel) *bun.SelectQuery {
	return s.db.NewSelect().Model(rows).
		ColumnExpr("c.*").
		ColumnExpr("u.username").
		Join("JOIN users AS u ON u.id = c.user_id")
}

func (s *Store) withLikes(ctx context.Context, rows []commentModel) ([]domain.Comment, error) {
	out := make([]domain.Comment, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]int64, len(rows))
	index := make(map[int64]int, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
		ids[i] = r.ID
		index[r.ID] = i
	}
	var likes []commentLikeModel
	err := s.db.NewSelect().Model(&likes).
		Where("comment_id IN (?)", bun.In(ids)).
		OrderExpr("comment_id, user_id").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err, "comment likes")
	}
	for _, l := range likes {
		i := index[l.CommentID]
		out[i].Likes = append(out[i].Likes, l.UserID)
	}
	return out, nil
}

func (s *Store) CreateBookmark(ctx context.Context, userID, questionID int64) (domain.Bookmark, error) {
	m := &bookmarkModel{UserID: userID, QuestionID: questionID}
	if _, err := s.db.NewInsert().Model(m).Returning("id, created_at").Exec(ctx); err != nil {
		return domain.Bookmark{}, mapError(err, "bookmark")
	}
	return m.domain(), nil
}

func (s *Store) DeleteBookmark(ctx context.Context, userID, questionID int64) error {
	res, err := s.db.NewDelete().Model((*bookmarkModel)(nil)).
		Where("user_id = ?", userID).
		Where("question_id = ?", questionID).
		Exec(ctx)
	if err != nil {
		return mapError(err, "bookmark")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: bookmark on question %d", domain.ErrNotFound, questionID)
	}
	return nil
}

func (s *Store) UserBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	var rows []bookmarkModel
	if err := s.db.NewSelect().Model(&rows).Where("b.user_id = ?", userID).OrderExpr("b.id").Scan(ctx); err != nil {
		return nil, mapError(err, "bookmarks")
	}
	out := make([]domain.Bookmark, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
	}
	return out, nil
}
