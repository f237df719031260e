package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/config"
	"medmcq/internal/logging"
	"medmcq/internal/metrics"
	"medmcq/internal/transport/graphql"
	transport "medmcq/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP, GraphQL and quiz WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	debug := cfg.Server.Mode != "release"
	log := logging.New(debug, cfg.Log.File)
	defer func() { _ = log.Sync() }()
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	secret, err := authSecret(cfg, log)
	if err != nil {
		return err
	}
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close(log)

	authTTL := config.TTLDuration(cfg.Auth.TTL, 30*24*time.Hour)
	svc := app.NewServices(b.stores, secret, authTTL, log)

	schema, err := graphql.NewSchema(svc, log)
	if err != nil {
		return err
	}
	metrics.Register(prometheus.DefaultRegisterer)
	router := transport.NewRouter(svc, log, transport.Options{
		SecureCookie: cfg.Auth.SecureCookie,
		CookieTTL:    authTTL,
		GraphQL:      graphql.NewHandler(schema, log),
		Metrics:      true,
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting medmcq", zap.String("port", finalPort), zap.String("mode", cfg.Server.Mode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
