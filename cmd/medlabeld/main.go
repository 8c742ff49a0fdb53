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

	"github.com/joho/godotenv"

	"github.com/medishare/medlabel/internal/async"
	"github.com/medishare/medlabel/internal/cache"
	"github.com/medishare/medlabel/internal/common"
	"github.com/medishare/medlabel/internal/export"
	"github.com/medishare/medlabel/internal/llm"
	"github.com/medishare/medlabel/internal/llm/ollama"
	"github.com/medishare/medlabel/internal/match"
	"github.com/medishare/medlabel/internal/ocr"
	"github.com/medishare/medlabel/internal/pipeline"
	repo "github.com/medishare/medlabel/internal/repository"
	"github.com/medishare/medlabel/internal/selftest"
	"github.com/medishare/medlabel/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL env var is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	medsRepo := repo.NewMedicineRepository(pool, logger)

	// Extraction cache: SQLite file when configured, in-memory otherwise.
	var store cache.Store
	if cfg.Cache.Path != "" {
		store, err = cache.NewSQLite(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			logger.Error("failed to open cache", "path", cfg.Cache.Path, "error", err)
			os.Exit(1)
		}
	} else {
		store = cache.NewMemory(cfg.Cache.TTL)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close cache", "error", cerr)
		}
	}()

	textExtractor := ocr.NewClient(cfg.OCR, logger)

	var fieldExtractor llm.FieldExtractor
	if cfg.LLM.Enabled {
		fieldExtractor = ollama.NewClient(ollama.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("llm client initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("llm disabled, uncertain fields will not be refined")
	}

	queue := async.NewStoreQueue(medsRepo, logger,
		async.WithWorkers(4),
		async.WithQueueSize(256),
		async.WithStoreTimeout(30*time.Second),
	)

	processor := pipeline.NewProcessor(logger, nil, textExtractor, fieldExtractor, store, queue)

	checker := &selftest.Checker{
		OCR:      selftest.HTTPReachable(cfg.OCR.BaseURL),
		Database: selftest.DatabaseReachable(pool),
		Timeout:  10 * time.Second,
		Logger:   logger,
	}
	if cfg.LLM.Enabled {
		checker.LLM = selftest.OllamaReachable(cfg.LLM.BaseURL)
	}

	srv := server.New(
		cfg.Server,
		logger,
		processor,
		medsRepo,
		match.NewMatcher(cfg.Match),
		export.NewService(medsRepo, logger),
		checker,
	)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	logger.Info("medlabeld listening", "addr", cfg.Server.HTTPAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
}
