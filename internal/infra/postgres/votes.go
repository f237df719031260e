package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"medmcq/internal/domain"
)

// UpsertVote writes the caller's vote in one statement so concurrent votes by
// the same user converge on a single row.
func (s *Store) UpsertVote(ctx context.Context, v domain.Vote) (domain.Vote, error) {
	t, err := voteTableFor(v.Kind)
	if err != nil {
		return domain.Vote{}, err
	}
	err = s.db.NewRaw(
		`INSERT INTO ? (user_id, question_id, ?, value, updated_at) VALUES (?, ?, ?, ?, now())
		ON CONFLICT (user_id, question_id, ?) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING id, updated_at`,
		bun.Ident(t.table), bun.Ident(t.column), v.UserID, v.QuestionID, v.MetadataID, v.Value, bun.Ident(t.column),
	).Scan(ctx, &v.ID, &v.UpdatedAt)
	if err != nil {
		return domain.Vote{}, mapError(err, "vote")
	}
	return v, nil
}

func (s *Store) DeleteVote(ctx context.Context, kind domain.MetadataKind, userID, questionID, metadataID int64) (int64, error) {
	t, err := voteTableFor(kind)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.NewRaw(
		"DELETE FROM ? WHERE user_id = ? AND question_id = ? AND ? = ? RETURNING id",
		bun.Ident(t.table), userID, questionID, bun.Ident(t.column), metadataID,
	).Scan(ctx, &id)
	if err != nil {
		return 0, mapError(err, fmt.Sprintf("%s vote on question %d", kind, questionID))
	}
	return id, nil
}

func (s *Store) UserVotes(ctx context.Context, kind domain.MetadataKind, userID, questionID int64) ([]domain.Vote, error) {
	t, err := voteTableFor(kind)
	if err != nil {
		return nil, err
	}
	var rows []voteRow
	err = s.selectVotes(t).
		Where("user_id = ?", userID).
		Where("question_id = ?", questionID).
		OrderExpr("metadata_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, mapError(err, "votes")
	}
	out := make([]domain.Vote, len(rows))
	for i, r := range rows {
		out[i] = r.domain(kind)
	}
	return out, nil
}

func (s *Store) selectVotes(t voteTable) *bun.SelectQuery {
	return s.db.NewSelect().
		TableExpr("?", bun.Ident(t.table)).
		ColumnExpr("id, user_id, question_id, ? AS metadata_id, value, updated_at", bun.Ident(t.column))
}

// QuestionCounts counts, per metadata id, the questions whose vote sum is
// above -1.
func (s *Store) QuestionCounts(ctx context.Context, kind domain.MetadataKind, metadataIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(metadataIDs))
	for _, id := range metadataIDs {
		counts[id] = 0
	}
	if len(metadataIDs) == 0 {
		return counts, nil
	}
	t, err := voteTableFor(kind)
	if err != nil {
		return nil, err
	}
	pairs := s.db.NewSelect().
		TableExpr("?", bun.Ident(t.table)).
		ColumnExpr("? AS metadata_id", bun.Ident(t.column)).
		Where("? IN (?)", bun.Ident(t.column), bun.In(metadataIDs)).
		GroupExpr("question_id, ?", bun.Ident(t.column)).
		Having("SUM(value) > ?", -1)

	var rows []metadataCount
	err = s.db.NewSelect().
		TableExpr("(?) AS pairs", pairs).
		ColumnExpr("metadata_id, COUNT(*) AS count").
		GroupExpr("metadata_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, mapError(err, "question counts")
	}
	for _, r := range rows {
		counts[r.MetadataID] = r.Count
	}
	return counts, nil
}

type metadataCount struct {
	MetadataID int64 `bun:"metadata_id"`
	Count      int   `bun:"count"`
}
