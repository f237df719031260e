package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
	"medmcq/internal/config"
	"medmcq/internal/infra/postgres"
	pgmigrations "medmcq/internal/infra/postgres/migrations"
	"medmcq/internal/logging"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, rollback)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

func runMigrations(ctx context.Context, configPath string, rollback bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Server.Mode != "release", cfg.Log.File)
	defer func() { _ = log.Sync() }()
	return runMigrationsWithConfig(ctx, cfg, log, rollback)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log *zap.Logger, rollback bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := postgres.Open(cfg.Postgres.URL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	if rollback {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			return err
		}
		log.Info("migrations rolled back", zap.String("group", group.String()))
		return nil
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.Info("migrations applied", zap.String("group", group.String()))
	return nil
}
