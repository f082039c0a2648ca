package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/freee021022/onconet/internal/config"
	"github.com/freee021022/onconet/internal/email"
	"github.com/freee021022/onconet/internal/geocode"
	"github.com/freee021022/onconet/internal/repository"
	"github.com/freee021022/onconet/internal/repository/memory"
	"github.com/freee021022/onconet/internal/repository/postgres"
	"github.com/freee021022/onconet/internal/router"
	"github.com/freee021022/onconet/internal/service/audit"
	"github.com/freee021022/onconet/internal/session"
	"github.com/freee021022/onconet/internal/worker"
	"github.com/freee021022/onconet/pkg/metrics"
	"github.com/freee021022/onconet/pkg/security"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (repository.Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		n, err := postgres.NewMigrator(db).Up(ctx)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Int("applied", n).Msg("database migrations applied")
	}
	return postgres.NewStore(db, m), nil
}

func openSessions(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (session.Store, func(), error) {
	if cfg.Session.Store == config.SessionStoreRedis {
		store, err := session.NewRedisStore(ctx, cfg.Redis.URL, m)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, func() { store.Close() }, nil
	}
	return session.NewMemoryStore(), func() {}, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg, "onconet")

	store, err := openStore(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer store.Close()

	sessionStore, closeSessions, err := openSessions(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeSessions()

	auditor := audit.NewService(store)
	r := router.NewRouter(router.Dependencies{
		Config:   cfg,
		Store:    store,
		Sessions: session.NewManager(sessionStore, cfg.Session.Secret, cfg.Session.TTL),
		Hasher:   security.NewBcryptHasher(bcrypt.DefaultCost),
		Geocoder: geocode.NewClient(cfg.Geocoding, m),
		Mailer:   email.NewService(cfg.Mail),
		Auditor:  auditor,
		Registry: reg,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	workerCtx, stopWorker := context.WithCancel(log.Logger.WithContext(ctx))
	defer stopWorker()
	go worker.NewAuditCleanupWorker(auditor, cfg.Audit.Retention(), cfg.Audit.CleanupInterval, m).Start(workerCtx)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}
