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

	"github.com/lmittmann/tint"

	"example.com/ai-travel-planner/internal/ai"
	"example.com/ai-travel-planner/internal/config"
	"example.com/ai-travel-planner/internal/database"
	"example.com/ai-travel-planner/internal/handlers"
	"example.com/ai-travel-planner/internal/metrics"
	"example.com/ai-travel-planner/internal/repository"
	"example.com/ai-travel-planner/internal/server"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	meterProvider, recorder, metricsHandler, err := metrics.NewPrometheus()
	if err != nil {
		logger.Error("failed to init metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		_ = meterProvider.Shutdown(context.Background())
	}()

	client := ai.NewOpenRouterClient(ai.NewHTTPClient(), cfg.AI)
	service := ai.NewService(client, recorder, logger)

	var calls handlers.CallRecorder
	if cfg.Database.Enabled {
		db, err := database.Open(context.Background(), cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()

		calls = repository.NewUpstreamCallRepository(db)
		logger.Info("upstream call log enabled")
	}

	e := server.New(cfg, logger, server.Deps{
		Service: service,
		Calls:   calls,
		Metrics: metricsHandler,
	})
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		logger.Info("http server started",
			slog.String("addr", httpServer.Addr),
			slog.String("model", client.Model()),
		)
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func newLogger(env string) *slog.Logger {
	if env == "local" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
