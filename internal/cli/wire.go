package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/config"
	"medmcq/internal/infra/amqp"
	"medmcq/internal/infra/memory"
	"medmcq/internal/infra/postgres"
	rediscache "medmcq/internal/infra/redis"
)

const devAuthSecret = "medmcq-dev-secret"

// backends holds the stores chosen from config and how to release them.
type backends struct {
	stores  app.Stores
	closers []func() error
}

func (b *backends) Close(log *zap.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Warn("close backend", zap.Error(err))
		}
	}
}

// openBackends picks Postgres or the seeded in-memory store, Redis or a
// process-local cache, and RabbitMQ or a logging publisher.
func openBackends(ctx context.Context, cfg config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}
	fail := func(err error) (*backends, error) {
		b.Close(log)
		return nil, err
	}

	var loader app.QuestionLoader
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log, false); err != nil {
			return fail(err)
		}
		db := postgres.Open(cfg.Postgres.URL)
		b.closers = append(b.closers, db.Close)
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		b.closers = append(b.closers, func() error { pool.Close(); return nil })

		store := postgres.NewStore(db)
		loader = postgres.NewQuestionLoader(pool)
		b.stores = app.Stores{
			Questions: store,
			Votes:     store,
			Metadata:  store,
			Comments:  store,
			Bookmarks: store,
			Users:     store,
		}
		log.Info("using postgres store")
	} else {
		store := memory.NewStore()
		sample, err := memory.Seed(ctx, store)
		if err != nil {
			return fail(fmt.Errorf("seed memory store: %w", err))
		}
		loader = store
		b.stores = store.Stores(nil, nil, nil)
		log.Info("using in-memory store", zap.Int("questions", len(sample.Questions)))
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("ping redis: %w", err))
		}
		b.stores.Cache = rediscache.NewQuestionCache(client, loader, cacheTTL, log)
		b.stores.Sessions = rediscache.NewSessionStore(client, sessionTTL)
	} else {
		b.stores.Cache = memory.NewQuestionCache(loader, cacheTTL)
		b.stores.Sessions = memory.NewSessionStore()
	}

	if cfg.AMQP.URL != "" {
		pub, err := amqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			return fail(err)
		}
		b.closers = append(b.closers, pub.Close)
		b.stores.Events = pub
	} else {
		b.stores.Events = amqp.NewLogPublisher(log)
	}
	return b, nil
}

// authSecret refuses to run a release build with the development secret.
func authSecret(cfg config.Config, log *zap.Logger) (string, error) {
	if cfg.Auth.Secret != "" {
		return cfg.Auth.Secret, nil
	}
	if cfg.Server.Mode == "release" {
		return "", errors.New("auth.secret or AUTH_SECRET is required in release mode")
	}
	log.Warn("auth secret not configured, using development secret")
	return devAuthSecret, nil
}
