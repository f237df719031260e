package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"medmcq/internal/domain"
)

// Store implements the app store interfaces on Postgres through bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Open connects bun to dsn with the pgdriver connector.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// mapError translates driver errors into the domain taxonomy. what names the
// row for NotFound messages.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case "23505":
			return fmt.Errorf("%w: %s", domain.ErrUniqueViolation, pgErr.Field('M'))
		case "23503", "23502", "23514":
			return fmt.Errorf("%w: %s", domain.ErrModelValidation, pgErr.Field('M'))
		}
	}
	return err
}

// voteTable names the table and metadata column backing a vote kind.
type voteTable struct {
	table    string
	column   string
	metadata string
}

func voteTableFor(kind domain.MetadataKind) (voteTable, error) {
	switch kind {
	case domain.MetadataTag:
		return voteTable{table: "question_tag_votes", column: "tag_id", metadata: "tags"}, nil
	case domain.MetadataSpecialty:
		return voteTable{table: "question_specialty_votes", column: "specialty_id", metadata: "specialties"}, nil
	}
	return voteTable{}, fmt.Errorf("%w: unknown metadata type %q", domain.ErrModelValidation, kind)
}

// activePairs selects question ids carrying any of metadataIDs with a vote
// sum above -1.
func (s *Store) activePairs(t voteTable, metadataIDs []int64) *bun.SelectQuery {
	return s.db.NewSelect().
		TableExpr("?", bun.Ident(t.table)).
		Column("question_id").
		Where("? IN (?)", bun.Ident(t.column), bun.In(metadataIDs)).
		GroupExpr("question_id, ?", bun.Ident(t.column)).
		Having("SUM(value) > ?", -1)
}
