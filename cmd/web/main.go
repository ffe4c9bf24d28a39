package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/todo-1m/webclient/internal/app/account"
	"github.com/todo-1m/webclient/internal/app/notify"
	"github.com/todo-1m/webclient/internal/app/webui"
	"github.com/todo-1m/webclient/internal/platform/config"
	"github.com/todo-1m/webclient/internal/platform/dbpool"
	"github.com/todo-1m/webclient/internal/platform/env"
	"github.com/todo-1m/webclient/internal/platform/logging"
	"github.com/todo-1m/webclient/internal/platform/natsutil"
	"github.com/todo-1m/webclient/internal/platform/tracing"
	"github.com/todo-1m/webclient/internal/remote"
	"github.com/todo-1m/webclient/internal/session"
	"github.com/todo-1m/webclient/internal/todo"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file (default $"+config.PathEnv+")")
	flag.Parse()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)

	shutdownTracing, err := tracing.Setup(cfg.TracingExporter, os.Stdout)
	if err != nil {
		logger.Fatal("setup tracing", "err", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing shutdown failed", "err", err)
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("resolve timezone", "err", err)
	}
	todo.DefaultLanguage = cfg.Language()

	store, ready, closeStore, err := openSessionStore(runCtx, cfg, logger)
	if err != nil {
		logger.Fatal("open session store", "store", cfg.SessionStore, "err", err)
	}
	defer closeStore()
	if sweeper, ok := store.(session.Sweeper); ok {
		go session.RunSweeper(runCtx, sweeper, 10*time.Minute, logger)
	}

	var (
		notifier *notify.Notifier
		hub      *notify.Hub
	)
	if cfg.NATSURL != "" {
		client, err := natsutil.ConnectJetStreamWithRetry(runCtx, cfg.NATSURL, env.Duration("NATS_CONNECT_TIMEOUT", 30*time.Second))
		if err != nil {
			logger.Fatal("connect nats", "url", cfg.NATSURL, "err", err)
		}
		defer client.Close()
		notifier = notify.NewNotifier(natsutil.JetStreamPublisher{JS: client.JS}, logger)
		hub = notify.NewHub(natsutil.JetStreamSubscriber{JS: client.JS}, logger)
		ready = append(ready, func(context.Context) error { return client.Ready() })
	} else {
		logger.Info("NATS_URL not set, live refresh disabled")
	}

	api := remote.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
	sessions := session.NewManager(store, cfg.SessionSecret, cfg.SessionTTL, logger)
	sessions.Secure = env.Bool("SESSION_COOKIE_SECURE", false)

	handler := &webui.Handler{
		Todos:            api,
		Accounts:         account.NewService(api),
		Sessions:         sessions,
		Notifier:         notifier,
		Hub:              hub,
		Logger:           logger,
		Location:         loc,
		DefaultLocation:  cfg.DefaultLocation,
		ScopeTodosToUser: cfg.ScopeTodosToUser,
		Ready:            readiness(ready),
	}

	server := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Keep WriteTimeout unset for long-lived SSE streams.
		IdleTimeout: 120 * time.Second,
	}

	logger.Info("todo web listening", "addr", cfg.WebAddr, "api", api.BaseURL(), "session_store", cfg.SessionStore)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Fatal("server stopped", "err", err)
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

type readyCheck func(ctx context.Context) error

// openSessionStore builds the configured store and the readiness checks it
// contributes.
func openSessionStore(ctx context.Context, cfg config.Config, logger *log.Logger) (session.Store, []readyCheck, func(), error) {
	switch cfg.SessionStore {
	case config.StorePostgres:
		pool, err := dbpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		store := session.NewPostgresStore(pool)
		if err := waitForSessionSchema(ctx, store, 30*time.Second, logger); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return store, []readyCheck{pingCheck("postgres", store)}, pool.Close, nil
	case config.StoreSQLite:
		store, err := session.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := store.Close(); err != nil {
				logger.Warn("close sqlite", "err", err)
			}
		}
		return store, []readyCheck{pingCheck("sqlite", store)}, closeFn, nil
	default:
		return session.NewMemoryStore(), nil, func() {}, nil
	}
}

func waitForSessionSchema(ctx context.Context, store *session.PostgresStore, timeout time.Duration, logger *log.Logger) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = store.EnsureSchema(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		logger.Warn("waiting for session schema", "err", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return lastErr
}

func pingCheck(name string, p session.Pinger) readyCheck {
	return func(ctx context.Context) error {
		checkCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
		defer cancel()
		if err := p.Ping(checkCtx); err != nil {
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
		return nil
	}
}

func readiness(checks []readyCheck) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
