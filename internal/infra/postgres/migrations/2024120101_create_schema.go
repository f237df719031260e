package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_schema.sql
var createSchemaSQL string

var Migrations = migrate.NewMigrations()

var schemaTables = []string{
	"question_bookmarks",
	"question_comment_likes",
	"question_comments",
	"question_user_answers",
	"question_specialty_votes",
	"question_tag_votes",
	"specialties",
	"tags",
	"question_correct_answers",
	"questions",
	"exam_sets",
	"semesters",
	"users",
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createSchemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, table := range schemaTables {
				if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS ? CASCADE", bun.Ident(table)); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
