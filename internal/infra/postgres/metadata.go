package postgres

import (
	"context"
	"fmt"

	"medmcq/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	m := &userModel{Username: u.Username, Email: u.Email, PasswordHash: u.PasswordHash, Role: u.Role}
	if _, err := s.db.NewInsert().Model(m).Returning("id, created_at").Exec(ctx); err != nil {
		return domain.User{}, mapError(err, "user")
	}
	return m.domain(), nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	var m userModel
	if err := s.db.NewSelect().Model(&m).Where("u.username = ?", username).Scan(ctx); err != nil {
		return domain.User{}, mapError(err, fmt.Sprintf("user %q", username))
	}
	return m.domain(), nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (domain.User, error) {
	var m userModel
	if err := s.db.NewSelect().Model(&m).Where("u.id = ?", id).Scan(ctx); err != nil {
		return domain.User{}, mapError(err, fmt.Sprintf("user %d", id))
	}
	return m.domain(), nil
}

func (s *Store) Semesters(ctx context.Context) ([]domain.Semester, error) {
	var rows []semesterModel
	if err := s.db.NewSelect().Model(&rows).OrderExpr("sem.value").Scan(ctx); err != nil {
		return nil, mapError(err, "semesters")
	}
	out := make([]domain.Semester, len(rows))
	for i, r := range rows {
		out[i] = domain.Semester{ID: r.ID, Value: r.Value, Name: r.Name, ShortName: r.ShortName}
	}
	return out, nil
}

// ExamSets lists the sets of a semester, newest first. semesterID 0 lists all.
func (s *Store) ExamSets(ctx context.Context, semesterID int64) ([]domain.ExamSet, error) {
	var rows []examSetModel
	q := s.db.NewSelect().Model(&rows).OrderExpr("es.year DESC, es.season, es.id")
	if semesterID > 0 {
		q = q.Where("es.semester_id = ?", semesterID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, mapError(err, "exam sets")
	}
	out := make([]domain.ExamSet, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
	}
	return out, nil
}

func (s *Store) GetExamSet(ctx context.Context, id int64) (domain.ExamSet, error) {
	var m examSetModel
	if err := s.db.NewSelect().Model(&m).Where("es.id = ?", id).Scan(ctx); err != nil {
		return domain.ExamSet{}, mapError(err, fmt.Sprintf("exam set %d", id))
	}
	return m.domain(), nil
}

func (s *Store) CreateExamSet(ctx context.Context, e domain.ExamSet) (domain.ExamSet, error) {
	m := &examSetModel{SemesterID: e.SemesterID, Year: e.Year, Season: e.Season}
	if _, err := s.db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return domain.ExamSet{}, mapError(err, "exam set")
	}
	return m.domain(), nil
}

func (s *Store) UpdateExamSet(ctx context.Context, e domain.ExamSet) error {
	m := &examSetModel{ID: e.ID, SemesterID: e.SemesterID, Year: e.Year, Season: e.Season}
	res, err := s.db.NewUpdate().Model(m).Column("semester_id", "year", "season").WherePK().Exec(ctx)
	if err != nil {
		return mapError(err, "exam set")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: exam set %d", domain.ErrNotFound, e.ID)
	}
	return nil
}

// DeleteExamSet removes the set; its questions cascade.
func (s *Store) DeleteExamSet(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*examSetModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return mapError(err, "exam set")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: exam set %d", domain.ErrNotFound, id)
	}
	return nil
}

func (s *Store) Metadata(ctx context.Context, kind domain.MetadataKind, semesterID int64) ([]domain.Metadata, error) {
	switch kind {
	case domain.MetadataTag:
		var rows []tagModel
		q := s.db.NewSelect().Model(&rows).OrderExpr("t.name, t.id")
		if semesterID > 0 {
			q = q.Where("t.semester_id = ?", semesterID)
		}
		if err := q.Scan(ctx); err != nil {
			return nil, mapError(err, "tags")
		}
		out := make([]domain.Metadata, len(rows))
		for i, r := range rows {
			out[i] = domain.Metadata{ID: r.ID, Kind: kind, SemesterID: r.SemesterID, ParentID: r.ParentID, Name: r.Name}
		}
		return out, nil
	case domain.MetadataSpecialty:
		var rows []specialtyModel
		q := s.db.NewSelect().Model(&rows).OrderExpr("sp.name, sp.id")
		if semesterID > 0 {
			q = q.Where("sp.semester_id = ?", semesterID)
		}
		if err := q.Scan(ctx); err != nil {
			return nil, mapError(err, "specialties")
		}
		out := make([]domain.Metadata, len(rows))
		for i, r := range rows {
			out[i] = domain.Metadata{ID: r.ID, Kind: kind, SemesterID: r.SemesterID, Name: r.Name}
		}
		return out, nil
	}
	_, err := voteTableFor(kind)
	return nil, err
}

func (s *Store) GetMetadata(ctx context.Context, kind domain.MetadataKind, id int64) (domain.Metadata, error) {
	what := fmt.Sprintf("%s %d", kind, id)
	switch kind {
	case domain.MetadataTag:
		var m tagModel
		if err := s.db.NewSelect().Model(&m).Where("t.id = ?", id).Scan(ctx); err != nil {
			return domain.Metadata{}, mapError(err, what)
		}
		return domain.Metadata{ID: m.ID, Kind: kind, SemesterID: m.SemesterID, ParentID: m.ParentID, Name: m.Name}, nil
	case domain.MetadataSpecialty:
		var m specialtyModel
		if err := s.db.NewSelect().Model(&m).Where("sp.id = ?", id).Scan(ctx); err != nil {
			return domain.Metadata{}, mapError(err, what)
		}
		return domain.Metadata{ID: m.ID, Kind: kind, SemesterID: m.SemesterID, Name: m.Name}, nil
	}
	_, err := voteTableFor(kind)
	return domain.Metadata{}, err
}
