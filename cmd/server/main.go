package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/flatbridge/internal/auth"
	"github.com/JonMunkholm/flatbridge/internal/config"
	"github.com/JonMunkholm/flatbridge/internal/core"
	"github.com/JonMunkholm/flatbridge/internal/database"
	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/logging"
	"github.com/JonMunkholm/flatbridge/internal/warehouse"
	"github.com/JonMunkholm/flatbridge/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if cfg.Database.Migrate {
		if err := database.RunMigrations(pool); err != nil {
			return err
		}
	}

	wh, err := warehouse.Open(cfg.Warehouse.Path, cfg.Transfer.OutputDir)
	if err != nil {
		return err
	}
	defer wh.Close()
	wh.WithSchema(cfg.Warehouse.Schema)

	tokens, err := auth.NewIssuer(cfg.Security.JWTSecret, cfg.Security.TokenIssuer, cfg.Security.TokenTTL)
	if err != nil {
		return err
	}

	service := core.NewService(
		database.New(pool),
		core.NewOrchestrator(flatfile.NewEngine(cfg.Transfer.OutputDir), wh),
		tokens,
		core.Options{MaxConcurrent: cfg.Transfer.MaxConcurrent, MaxWait: cfg.Transfer.MaxWaitTime},
	)

	if err := service.StartHistoryPurge(ctx, core.HistoryPurgeConfig{
		RetentionDays: cfg.History.RetentionDays,
		Schedule:      cfg.History.PurgeSchedule,
	}); err != nil {
		return err
	}

	server := web.NewServer(service, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := service.TransferStatus(); st.Active > 0 {
			slog.Info("waiting for transfers to complete", "active", st.Active)
		}
		if err := service.WaitForTransfers(shutdownCtx); err != nil {
			slog.Warn("transfers did not complete in time", "error", err)
		}

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
