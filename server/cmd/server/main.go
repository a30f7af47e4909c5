package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ivfodds/ivfodds/data"
	"github.com/ivfodds/ivfodds/pkg/estimate"
	"github.com/ivfodds/ivfodds/pkg/formula"
	"github.com/ivfodds/ivfodds/server/internal/api"
	"github.com/ivfodds/ivfodds/server/internal/auth"
	"github.com/ivfodds/ivfodds/server/internal/config"
	"github.com/ivfodds/ivfodds/server/internal/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	slog.Info("ivfodds-server starting", "config", *configPath)

	// Secrets such as the API key are referenced by env var name in the
	// config, so the dotenv file has to be applied first.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load env file", "path", *envFile, "err", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Server.Level())

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"log_level", cfg.Server.LogLevel,
		"auth_mode", cfg.Server.Auth.Mode,
		"formulas", cfg.Server.Formulas.Path,
		"metrics", cfg.Server.Metrics.Enabled,
	)

	table, err := loadTable(cfg.Server.Formulas.Path)
	if err != nil {
		slog.Error("failed to load formula table", "err", err)
		os.Exit(1)
	}
	slog.Info("formula table loaded", "rows", table.Len())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Only the log level is applied on reload; everything else needs a restart.
	go func() {
		err := config.Watch(ctx, *configPath, func(c *config.Config) {
			level.Set(c.Server.Level())
		})
		if err != nil {
			slog.Warn("config watch disabled", "err", err)
		}
	}()

	reg := metrics.New()
	reg.SetFormulaRows(table.Len())

	requireKey := auth.APIKey(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	if cfg.Server.Auth.Mode == "apikey" && cfg.Server.Auth.Key() == "" {
		slog.Warn("auth mode is apikey but the key env var is empty; requests are not authenticated",
			"key_env", cfg.Server.Auth.KeyEnv)
	}

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(estimate.New(table), reg, requireKey))
	if cfg.Server.Metrics.Enabled {
		httpMux.Handle(cfg.Server.Metrics.Path, reg)
		slog.Info("metrics endpoint enabled", "path", cfg.Server.Metrics.Path)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("ivfodds-server shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown incomplete", "err", err)
	}
}

// loadTable reads the coefficient table from path, or the embedded copy when
// path is empty.
func loadTable(path string) (*formula.Table, error) {
	if path == "" {
		return formula.LoadFS(data.FS, data.FormulasFile)
	}
	return formula.Load(path)
}
