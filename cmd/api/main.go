package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aquaforma/poolquote-backend/api/controllers"
	"github.com/aquaforma/poolquote-backend/api/routes"
	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/internal/configurations"
	"github.com/aquaforma/poolquote-backend/internal/notifications"
	"github.com/aquaforma/poolquote-backend/internal/reconcile"
	"github.com/aquaforma/poolquote-backend/internal/sessions"
	"github.com/aquaforma/poolquote-backend/pkg/config"
	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	"github.com/aquaforma/poolquote-backend/pkg/instance"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
	"github.com/aquaforma/poolquote-backend/pkg/metrics"
	"github.com/aquaforma/poolquote-backend/pkg/migrate"
	"github.com/aquaforma/poolquote-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		redisPinger controllers.Pinger
		locks       sessions.LockFactory
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		locks = func(configurationID uuid.UUID, group enums.CategoryGroup) (reconcile.Lock, error) {
			key := redisClient.ReconcileLockKey(configurationID.String(), group.String())
			return reconcile.NewRedisLock(redisClient, key, cfg.Reconcile.LockTTL)
		}
	} else {
		logg.Warn(ctx, "redis not configured, reconciliation runs without a cross-instance lock")
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}
	configurationService, err := configurations.NewService(configurations.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create configuration service", err)
		os.Exit(1)
	}

	sessionManager, err := sessions.NewManager(sessions.Options{
		Configurations: configurationService,
		Catalog:        catalogService,
		Locks:          locks,
		Sink:           notifications.NewLogSink(logg),
		Metrics:        metrics.NewReconcileMetrics(prometheus.DefaultRegisterer),
		Logger:         logg,
		QuietPeriod:    cfg.Reconcile.QuietPeriod,
		PassTimeout:    cfg.Reconcile.PassTimeout,
		FeedSize:       cfg.Reconcile.FeedSize,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DBPinger:       dbClient,
			RedisPinger:    redisPinger,
			Gatherer:       prometheus.DefaultGatherer,
			Catalog:        catalogService,
			Configurations: configurationService,
			Sessions:       sessionManager,
		}),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "http shutdown incomplete", err)
		}
		if err := sessionManager.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "editing sessions did not drain", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
