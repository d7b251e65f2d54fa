package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/vedran77/skillbarter/internal/config"
	"github.com/vedran77/skillbarter/internal/database"
	"github.com/vedran77/skillbarter/internal/repository"
	"github.com/vedran77/skillbarter/internal/repository/memory"
	postgresrepo "github.com/vedran77/skillbarter/internal/repository/postgres"
	"github.com/vedran77/skillbarter/internal/service"
	"github.com/vedran77/skillbarter/internal/transport/http/handlers"
	"github.com/vedran77/skillbarter/internal/transport/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// repos is the storage backend selected at startup.
type repos struct {
	tx       repository.Transactor
	users    repository.UserRepository
	conns    repository.ConnectionRepository
	barters  repository.BarterRepository
	feed     repository.FeedRepository
	messages repository.MessageRepository
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var migrate bool
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.ServerPort, "port", cfg.ServerPort, "HTTP listen port")
	flagSet.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "storage driver (postgres|memory)")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	flagSet.BoolVar(&migrate, "migrate", false, "apply the database schema before serving")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var store repos
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

		if migrate {
			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}
			logger.Info("schema applied")
		}

		store = repos{
			tx:       postgresrepo.NewTxManager(pool),
			users:    postgresrepo.NewUserRepo(pool),
			conns:    postgresrepo.NewConnectionRepo(pool),
			barters:  postgresrepo.NewBarterRepo(pool),
			feed:     postgresrepo.NewFeedRepo(pool),
			messages: postgresrepo.NewMessageRepo(pool),
		}
	case config.StorageMemory:
		mem := memory.NewStore()
		store = repos{
			tx:       mem,
			users:    mem.Users(),
			conns:    mem.Connections(),
			barters:  mem.Barters(),
			feed:     mem.Feed(),
			messages: mem.Messages(),
		}
		logger.Warn("using in-memory storage, data is lost on exit")
	}

	// WebSocket hub
	hub := ws.NewHub(logger)

	// Services
	authService := service.NewAuthService(store.users, cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(store.tx, store.users, store.conns, store.barters, store.feed, store.messages)
	connService := service.NewConnectionService(store.tx, store.conns, store.users)
	barterService := service.NewBarterService(store.tx, store.barters, store.users)
	feedService := service.NewFeedService(store.tx, store.feed, store.users)
	messageService := service.NewMessageService(store.tx, store.messages, store.users)
	messageService.SetNotifier(ws.NewHubNotifier(hub, logger))

	// Handlers
	router := handlers.NewRouter(handlers.Handlers{
		Auth:       handlers.NewAuthHandler(authService, logger),
		User:       handlers.NewUserHandler(userService, logger),
		Connection: handlers.NewConnectionHandler(connService, logger),
		Barter:     handlers.NewBarterHandler(barterService, logger),
		Feed:       handlers.NewFeedHandler(feedService, logger),
		Message:    handlers.NewMessageHandler(messageService, logger),
	}, cfg.JWTSecret, cfg.AllowedOrigins,
		ws.ServeWS(ctx, hub, messageService, cfg.JWTSecret, cfg.AllowedOrigins, logger),
		logger,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}
