package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"medmcq/internal/domain"
)

// QuestionLoader builds the cacheable question payload straight from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

const loadQuestionSQL = `
SELECT q.id, q.text, q.answer1, q.answer2, q.answer3, q.image, q.exam_set_id, q.exam_set_qno,
       q.created_at, q.updated_at,
       es.id, es.semester_id, es.year, es.season,
       sem.id, sem.value, sem.name, sem.short_name
FROM questions q
JOIN exam_sets es ON es.id = q.exam_set_id
JOIN semesters sem ON sem.id = es.semester_id
WHERE q.id = $1`

func (l *QuestionLoader) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	var (
		q      domain.Question
		season string
	)
	err := l.pool.QueryRow(ctx, loadQuestionSQL, id).Scan(
		&q.ID, &q.Text, &q.Answer1, &q.Answer2, &q.Answer3, &q.Image, &q.ExamSetID, &q.ExamSetQno,
		&q.CreatedAt, &q.UpdatedAt,
		&q.ExamSet.ID, &q.ExamSet.SemesterID, &q.ExamSet.Year, &season,
		&q.Semester.ID, &q.Semester.Value, &q.Semester.Name, &q.Semester.ShortName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, fmt.Errorf("%w: question %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	q.ExamSet.Season = domain.Season(season)

	if q.CorrectAnswers, err = l.correctAnswers(ctx, id); err != nil {
		return domain.Question{}, err
	}
	if q.Tags, err = l.associations(ctx, domain.MetadataTag, id); err != nil {
		return domain.Question{}, err
	}
	if q.Specialties, err = l.associations(ctx, domain.MetadataSpecialty, id); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

func (l *QuestionLoader) correctAnswers(ctx context.Context, questionID int64) ([]int, error) {
	rows, err := l.pool.Query(ctx, `SELECT answer FROM question_correct_answers WHERE question_id = $1 ORDER BY answer`, questionID)
	if err != nil {
		return nil, fmt.Errorf("load correct answers: %w", err)
	}
	defer rows.Close()
	answers := make([]int, 0, 3)
	for rows.Next() {
		var a int
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan correct answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// associations returns the active tags or specialties of a question with their vote sums.
func (l *QuestionLoader) associations(ctx context.Context, kind domain.MetadataKind, questionID int64) ([]domain.Association, error) {
	t, err := voteTableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT m.id, m.name, SUM(v.value)
FROM %s v
JOIN %s m ON m.id = v.%s
WHERE v.question_id = $1
GROUP BY m.id, m.name
HAVING SUM(v.value) > -1
ORDER BY m.name, m.id`, t.table, t.metadata, t.column)

	rows, err := l.pool.Query(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("load %s associations: %w", kind, err)
	}
	defer rows.Close()
	out := make([]domain.Association, 0)
	for rows.Next() {
		var a domain.Association
		if err := rows.Scan(&a.MetadataID, &a.Name, &a.Votes); err != nil {
			return nil, fmt.Errorf("scan %s association: %w", kind, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (l *QuestionLoader) LoadVote(ctx context.Context, kind domain.MetadataKind, id int64) (domain.Vote, error) {
	t, err := voteTableFor(kind)
	if err != nil {
		return domain.Vote{}, err
	}
	query := fmt.Sprintf(`SELECT id, user_id, question_id, %s, value, updated_at FROM %s WHERE id = $1`, t.column, t.table)
	v := domain.Vote{Kind: kind}
	err = l.pool.QueryRow(ctx, query, id).Scan(&v.ID, &v.UserID, &v.QuestionID, &v.MetadataID, &v.Value, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Vote{}, fmt.Errorf("%w: %s vote %d", domain.ErrNotFound, kind, id)
	}
	if err != nil {
		return domain.Vote{}, fmt.Errorf("load vote: %w", err)
	}
	return v, nil
}
