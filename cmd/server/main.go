package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/auth"
	"github.com/iliyamo/content-hub/internal/autosave"
	"github.com/iliyamo/content-hub/internal/blob"
	"github.com/iliyamo/content-hub/internal/config"
	"github.com/iliyamo/content-hub/internal/database"
	"github.com/iliyamo/content-hub/internal/handler"
	"github.com/iliyamo/content-hub/internal/logger"
	"github.com/iliyamo/content-hub/internal/mail"
	"github.com/iliyamo/content-hub/internal/middleware"
	"github.com/iliyamo/content-hub/internal/queue"
	"github.com/iliyamo/content-hub/internal/repository"
	"github.com/iliyamo/content-hub/internal/router"
	"github.com/iliyamo/content-hub/internal/seed"
	"github.com/iliyamo/content-hub/internal/service"
	"github.com/iliyamo/content-hub/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile string
	var doSeed, consume bool

	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment (missing file is fine)")
	flags.BoolVar(&doSeed, "seed", false, "create the demo admin, post and event when absent")
	flags.BoolVar(&consume, "consumer", false, "also run the activity consumer (needs AMQP_ENABLED)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		if cfg.Store.Driver == "redis" {
			return err
		}
		log.Warn("redis unavailable, cache and rate limiting disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	st, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, closeBlobs, err := openBlobs(ctx, cfg.Media)
	if err != nil {
		return err
	}
	defer closeBlobs()

	mailer := mail.New(cfg.SMTP, log)
	consumer := &queue.Consumer{URL: cfg.AMQP.URL, Queue: cfg.AMQP.Queue, Log: log, Mailer: mailer}
	pub := service.New(cfg.AMQP, consumer, log)
	if consume && cfg.AMQP.Enabled {
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("activity consumer stopped", zap.Error(err))
			}
		}()
	}

	users := repository.NewUserRepo(st)
	posts := repository.NewPostRepo(st)
	events := repository.NewEventRepo(st)
	formsRepo := repository.NewFormRepo(st)
	subs := repository.NewSubmissionRepo(st)
	authSvc := auth.NewService(cfg.Auth, cfg.PublicURL, users, repository.NewTokenRepo(st), pub, log)

	if doSeed {
		if err := seed.Run(ctx, seed.Deps{Auth: authSvc, Users: users, Posts: posts, Events: events, Log: log}, time.Now().UTC()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	drafts := autosave.New(autosave.DefaultDelay)
	signer := blob.NewSigner(cfg.Media.SigningKey, cfg.PublicURL+cfg.APIPrefix, cfg.Media.URLTTL)

	e := echo.New()
	e.HideBanner = true
	e.Validator = middleware.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dK", cfg.Media.MaxBytes/1024+512)))

	router.Register(e, router.Handlers{
		Auth:   handler.NewAuthHandler(authSvc, log),
		Hero:   handler.NewHeroHandler(repository.NewHeroRepo(st), log),
		Posts:  handler.NewPostHandler(posts, drafts, log),
		Events: handler.NewEventHandler(events, pub, log),
		Forms:  handler.NewFormHandler(formsRepo, subs, pub, log),
		Media:  handler.NewMediaHandler(blobs, signer, cfg.Media.MaxBytes, log),
		Stats:  handler.NewStatsHandler(posts, events, formsRepo, subs, log),
	}, router.Options{
		Prefix:       cfg.APIPrefix,
		Authenticate: middleware.Authenticate(cfg.Auth.AnonKey, authSvc),
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:        middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
	})

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.String("store", cfg.Store.Driver), zap.String("media", cfg.Media.Driver))
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = e.Shutdown(shutdownCtx)
	// Flush drafts that are already being written; pending ones are dropped.
	drafts.Stop()
	return err
}

func openStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case "redis":
		return store.NewRedis(rdb, cfg.Store.Prefix), func() {}, nil
	case "mysql":
		db, err := database.Open(cfg.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		s, err := store.NewMySQL(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, func() { _ = db.Close() }, nil
	case "memory":
		return store.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
}

func openBlobs(ctx context.Context, mc config.MediaConfig) (blob.Store, func(), error) {
	switch mc.Driver {
	case "mongo":
		g, err := blob.OpenGridFS(ctx, mc)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { _ = g.Close(context.Background()) }, nil
	case "memory":
		return blob.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown MEDIA_DRIVER %q", mc.Driver)
}
