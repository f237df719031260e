package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"medmcq/internal/domain"
)

func (s *Store) CreateQuestion(ctx context.Context, in domain.QuestionInput) (int64, error) {
	m := newQuestionModel(in)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
			return err
		}
		return insertCorrectAnswers(ctx, tx, m.ID, in.CorrectAnswers)
	})
	if err != nil {
		return 0, mapError(err, "question")
	}
	return m.ID, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, id int64, in domain.QuestionInput) error {
	m := newQuestionModel(in)
	m.ID = id
	m.UpdatedAt = time.Now()
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(m).
			Column("exam_set_id", "exam_set_qno", "text", "answer1", "answer2", "answer3", "image", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: question %d", domain.ErrNotFound, id)
		}
		if _, err := tx.NewDelete().Model((*correctAnswerModel)(nil)).Where("question_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return insertCorrectAnswers(ctx, tx, id, in.CorrectAnswers)
	})
	return mapError(err, fmt.Sprintf("question %d", id))
}

func insertCorrectAnswers(ctx context.Context, tx bun.Tx, questionID int64, answers []int) error {
	rows := make([]correctAnswerModel, len(answers))
	for i, a := range answers {
		rows[i] = correctAnswerModel{QuestionID: questionID, Answer: a}
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&rows).Exec(ctx)
	return err
}

// DeleteQuestion removes the question; votes, answers, comments and bookmarks
// go with it through the foreign keys.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) (int, error) {
	res, err := s.db.NewDelete().Model((*questionModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return 0, mapError(err, "question")
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) RecordAnswer(ctx context.Context, a domain.UserAnswer) (domain.UserAnswer, error) {
	m := &answerModel{UserID: a.UserID, QuestionID: a.QuestionID, Answer: a.Answer}
	if _, err := s.db.NewInsert().Model(m).Returning("id, created_at").Exec(ctx); err != nil {
		return domain.UserAnswer{}, mapError(err, "answer")
	}
	return m.domain(), nil
}

func (s *Store) UserAnswers(ctx context.Context, userID, semesterID int64) ([]domain.UserAnswer, error) {
	var rows []answerModel
	q := s.db.NewSelect().Model(&rows).Where("qua.user_id = ?", userID).OrderExpr("qua.created_at, qua.id")
	if semesterID > 0 {
		q = q.Where("qua.question_id IN (?)", s.semesterQuestions(semesterID))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, mapError(err, "answers")
	}
	out := make([]domain.UserAnswer, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
	}
	return out, nil
}

func (s *Store) semesterQuestions(semesterID int64) *bun.SelectQuery {
	return s.db.NewSelect().
		TableExpr("questions AS sq").
		ColumnExpr("sq.id").
		Join("JOIN exam_sets AS ses ON ses.id = sq.exam_set_id").
		Where("ses.semester_id = ?", semesterID)
}

func (s *Store) ProfileQuestionIDs(ctx context.Context, userID, semesterID int64) ([]int64, error) {
	answered := s.db.NewSelect().Model((*answerModel)(nil)).Column("question_id").Where("user_id = ?", userID)
	bookmarked := s.db.NewSelect().Model((*bookmarkModel)(nil)).Column("question_id").Where("user_id = ?", userID)

	q := s.questionIDs(semesterID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("q.id IN (?)", answered).WhereOr("q.id IN (?)", bookmarked)
		}).
		OrderExpr("q.id")
	return scanIDs(ctx, q)
}

func (s *Store) ExamSetQuestionIDs(ctx context.Context, setID int64) ([]int64, error) {
	q := s.db.NewSelect().Model((*questionModel)(nil)).
		ColumnExpr("q.id").
		Where("q.exam_set_id = ?", setID).
		OrderExpr("q.exam_set_qno, q.id")
	return scanIDs(ctx, q)
}

// SearchQuestionIDs ORs the tokens against the generated search vector.
func (s *Store) SearchQuestionIDs(ctx context.Context, semesterID int64, tokens []string) ([]int64, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	q := s.questionIDs(semesterID).
		Where("q.search @@ to_tsquery('simple', ?)", strings.Join(tokens, " | ")).
		OrderExpr("q.id")
	return scanIDs(ctx, q)
}

func (s *Store) FilterQuestionIDs(ctx context.Context, f domain.FilteredSelection, excludeAnsweredBy int64) ([]int64, error) {
	q := s.questionIDs(f.Semester)
	if f.Year > 0 {
		q = q.Where("es.year = ?", f.Year)
	}
	if f.Season != "" {
		q = q.Where("es.season = ?", f.Season)
	}
	if len(f.Tags) > 0 {
		t, _ := voteTableFor(domain.MetadataTag)
		q = q.Where("q.id IN (?)", s.activePairs(t, f.Tags))
	}
	if len(f.Specialties) > 0 {
		t, _ := voteTableFor(domain.MetadataSpecialty)
		q = q.Where("q.id IN (?)", s.activePairs(t, f.Specialties))
	}
	if excludeAnsweredBy > 0 {
		answered := s.db.NewSelect().Model((*answerModel)(nil)).Column("question_id").Where("user_id = ?", excludeAnsweredBy)
		q = q.Where("q.id NOT IN (?)", answered)
	}
	if f.N > 0 {
		q = q.OrderExpr("random()").Limit(f.N)
	} else {
		q = q.OrderExpr("q.id")
	}
	return scanIDs(ctx, q)
}

// questionIDs selects question ids joined with their exam set, optionally
// scoped to a semester.
func (s *Store) questionIDs(semesterID int64) *bun.SelectQuery {
	q := s.db.NewSelect().Model((*questionModel)(nil)).
		ColumnExpr("q.id").
		Join("JOIN exam_sets AS es ON es.id = q.exam_set_id")
	if semesterID > 0 {
		q = q.Where("es.semester_id = ?", semesterID)
	}
	return q
}

func scanIDs(ctx context.Context, q *bun.SelectQuery) ([]int64, error) {
	ids := make([]int64, 0)
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, mapError(err, "questions")
	}
	return ids, nil
}
