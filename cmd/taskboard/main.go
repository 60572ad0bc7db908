package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/board"
	"taskboard/internal/celebrate"
	"taskboard/internal/config"
	"taskboard/internal/events"
	"taskboard/internal/notify"
	"taskboard/internal/server"
	"taskboard/internal/storage"
	"taskboard/internal/storage/memory"
	"taskboard/internal/storage/redisstore"
	"taskboard/internal/storage/sqlite"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "Path to config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		slog.Error("unable to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	logger.Info("taskboard starting",
		slog.String("storage", cfg.Storage.Backend),
		slog.String("session", cfg.Session.Backend),
	)

	durable, ephemeral, closers, err := openBackends(cfg, logger)
	if err != nil {
		logger.Error("unable to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	ctx := context.Background()
	bus := events.NewBus(32)

	users := auth.NewDirectory(durable, ephemeral, auth.WithLogger(logger))
	users.Load(ctx)

	inbox := notify.NewInbox(durable, bus, logger)
	inbox.Load(ctx)

	store := board.New(durable, inbox, celebrate.NewHub(bus), board.WithLogger(logger))
	current, _ := users.Current()
	store.Load(ctx, current.Ref())

	srv := server.New(server.Deps{
		Board:  store,
		Users:  users,
		Inbox:  inbox,
		Bus:    bus,
		Tokens: auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}, logger, cfg.HTTP.StaticDir)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// openBackends returns the durable store, the ephemeral session slot and
// what must be closed on exit.
func openBackends(cfg *config.Config, logger *slog.Logger) (storage.KV, storage.KV, []io.Closer, error) {
	var closers []io.Closer

	var rdb *redisstore.Store
	if cfg.UsesRedis() {
		rdb = redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, nil, nil, fmt.Errorf("redis backend: %w", err)
		}
		closers = append(closers, rdb)
	}

	var durable storage.KV
	switch cfg.Storage.Backend {
	case "redis":
		durable = rdb
	default:
		db, err := sqlite.Open(cfg.Storage.DBPath, logger)
		if err != nil {
			for _, c := range closers {
				_ = c.Close()
			}
			return nil, nil, nil, fmt.Errorf("storage backend: %w", err)
		}
		durable = db
		closers = append(closers, db)
	}

	var ephemeral storage.KV = memory.New()
	if cfg.Session.Backend == "redis" {
		ephemeral = rdb.WithPrefix("ephemeral:").WithTTL(cfg.Session.TTL)
	}
	return durable, ephemeral, closers, nil
}
