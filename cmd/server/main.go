package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/trivia/internal/config"
	"github.com/playperu/trivia/internal/database"
	"github.com/playperu/trivia/internal/game"
	"github.com/playperu/trivia/internal/handler/health"
	"github.com/playperu/trivia/internal/library"
	"github.com/playperu/trivia/internal/migrations"
	"github.com/playperu/trivia/internal/output"
	"github.com/playperu/trivia/internal/quiz"
	"github.com/playperu/trivia/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	version, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "schema_version", version)

	lib := library.NewStore(db)
	checks := map[string]health.Checker{"sqlite": dbChecker{db}}

	// --- Output ---
	broker := output.NewBroker(cfg.StreamBuffer)
	publishers := output.Publishers{broker}

	var relay *output.RedisRelay
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis", "prefix", cfg.RedisPrefix)

		relay = output.NewRedisRelay(rdb, cfg.RedisPrefix, 1024, logger)
		publishers = append(publishers, relay)
	}

	// --- Games ---
	loader := quiz.Router{
		Default: quiz.FileLoader{Dir: cfg.QuizDir},
		Schemes: map[string]quiz.Loader{library.Scheme: lib},
	}
	pool := game.NewPool(publishers, loader, quiz.DefaultSettings(), logger)
	clock := game.NewClock(cfg.TickInterval, pool, logger)

	// --- HTTP Server ---
	if cfg.ModeratorTokenHash == "" {
		logger.Warn("MODERATOR_TOKEN_HASH is not set, moderator commands are disabled")
	}
	healthHandler := health.NewHandler(logger, checks)
	if rdb != nil {
		healthHandler.Optional("redis", redisChecker{rdb})
	}
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Pool:           pool,
		Broker:         broker,
		Library:        lib,
		ModeratorHash:  cfg.ModeratorTokenHash,
		DefaultChannel: output.ChannelID(cfg.DefaultChannel),
	}, func(r chi.Router) {
		r.Mount("/healthz", healthHandler.Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return clock.Run(gctx)
	})

	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
