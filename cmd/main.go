package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/ledger/internal/config"
	"github.com/finbooks/ledger/internal/httpapi"
	"github.com/finbooks/ledger/internal/ledger"
	"github.com/finbooks/ledger/internal/storage/memory"
	pgstore "github.com/finbooks/ledger/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	var (
		repo    httpapi.Repository
		writer  httpapi.Writer
		ready   httpapi.ReadyChecker
		closeFn func()
	)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		if cfg.DevSeed {
			accs, err := pg.SeedDev(ctx)
			if err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "postgres", accs)
			}
		}
		repo, writer, ready = pg, pg, pg
		logger.Info("storage backend: postgres")
	} else {
		store := memory.New()
		if cfg.DevSeed {
			accs := seedMemory(store)
			logDevSeed(logger, "memory", accs)
		}
		repo, writer, ready = store, store, store
		logger.Info("storage backend: memory")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(repo, writer, ready, logger, cfg.Currency).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("posting engine listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// seedMemory loads a small chart of accounts into the in-memory store.
func seedMemory(store *memory.Store) []ledger.Account {
	accs := []ledger.Account{
		{ID: uuid.New(), Code: "1001", Name: "Cash", Type: ledger.AccountTypeAsset},
		{ID: uuid.New(), Code: "3001", Name: "Capital", Type: ledger.AccountTypeEquity},
		{ID: uuid.New(), Code: "4001", Name: "Sales", Type: ledger.AccountTypeRevenue},
		{ID: uuid.New(), Code: "5001", Name: "Rent", Type: ledger.AccountTypeExpense},
	}
	for _, a := range accs {
		store.SeedAccount(a)
	}
	return accs
}

func logDevSeed(l *slog.Logger, backend string, accs []ledger.Account) {
	for _, a := range accs {
		l.Info("DEV seed ("+backend+")", "code", a.Code, "name", a.Name, "type", string(a.Type), "id", a.ID.String())
	}
}

func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
