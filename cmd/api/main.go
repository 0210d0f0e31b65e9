package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/commands"
	"attendance/tracker/internal/pkg/config"
	"attendance/tracker/internal/pkg/metrics"
	"attendance/tracker/internal/pkg/repository/postgresql"
	"attendance/tracker/internal/repository/postgres/attendance"
	"attendance/tracker/internal/repository/postgres/user"
	"attendance/tracker/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "attendance-api")

	if err := run(log); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		log.Error("startup", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		return err
	}
	log.Info("starting service", "config", cfg.String())

	// =========================================================================
	// Start Database

	db, err := postgresql.New(postgresql.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
		Debug:      cfg.DB.Debug,
	})
	if err != nil {
		return errors.Wrap(err, "connecting to db")
	}
	defer func() {
		log.Info("stopping database", "host", cfg.DB.Host)
		db.Close()
	}()

	ctx := context.Background()

	switch cfg.Args.Num(0) {
	case "migrate":
		return commands.MigrateUP(ctx, db, log)
	case "seed":
		data, err := commands.LoadSeed(cfg.Seed.File)
		if err != nil {
			return err
		}
		res, err := commands.Seed(ctx, data, user.NewRepository(db), attendance.NewRepository(db), log)
		if err != nil {
			return err
		}
		log.Info("seed finished", "users", res.Users, "records", res.Records)
		return nil
	case "":
	default:
		return errors.Errorf("unknown command %q", cfg.Args.Num(0))
	}

	// =========================================================================
	// Start Redis

	var redisDB *redis.Client
	if cfg.Redis.Addr != "" {
		redisDB = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisDB.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, rate limiting fails open", "addr", cfg.Redis.Addr, "error", err)
		}
		defer redisDB.Close()
	}

	// =========================================================================
	// Initialize authentication support

	authenticator, err := auth.New(cfg.Auth.JWTKey, cfg.Auth.TokenTTL)
	if err != nil {
		return errors.Wrap(err, "constructing auth")
	}

	// =========================================================================
	// Start API Service

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	if !cfg.DB.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	app := web.NewApp(log)
	r := router.NewRouter(app, db, redisDB, authenticator, log, registry, m, cfg.Web.AllowedOrigins, cfg.RateLimit.LoginPerMinute)
	r.Init()

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      app,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("api listening", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		log.Info("shutdown started", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return errors.Wrap(err, "could not stop server gracefully")
		}
		log.Info("shutdown complete", "signal", sig.String())
	}

	return nil
}
