package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/medishare/medlabel/internal/common"
	"github.com/medishare/medlabel/internal/llm"
	"github.com/medishare/medlabel/internal/llm/ollama"
	"github.com/medishare/medlabel/internal/ocr"
	"github.com/medishare/medlabel/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rawText := flag.Bool("text", false, "treat the argument as a text file with already-extracted label text")
	flag.Parse()

	if flag.NArg() != 1 {
		logger.Error("usage: runextract [-text] <image-path | image-url | text-file>")
		os.Exit(2)
	}
	arg := flag.Arg(0)

	cfg := common.LoadConfig()

	var fieldExtractor llm.FieldExtractor
	if cfg.LLM.Enabled {
		fieldExtractor = ollama.NewClient(ollama.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *rawText {
		data, err := os.ReadFile(arg)
		if err != nil {
			logger.Error("read text file", "path", arg, "error", err)
			os.Exit(1)
		}
		p := pipeline.NewProcessor(logger, nil, nil, fieldExtractor, nil, nil)
		printRecord(p.ProcessText(ctx, string(data), fieldExtractor != nil))
		return
	}

	if cfg.OCR.APIKey == "" {
		logger.Error("OCR_API_KEY env var is required")
		os.Exit(2)
	}

	var in ocr.Input
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		in = ocr.Input{URL: arg}
	} else {
		data, err := os.ReadFile(arg)
		if err != nil {
			logger.Error("read image", "path", arg, "error", err)
			os.Exit(1)
		}
		in = ocr.Input{FileName: filepath.Base(arg), Data: data}
	}

	p := pipeline.NewProcessor(logger, nil, ocr.NewClient(cfg.OCR, logger), fieldExtractor, nil, nil)

	start := time.Now()
	rec, err := p.ProcessImage(ctx, in, 0, fieldExtractor != nil)
	if err != nil {
		logger.Error("extraction failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("extraction ok", "elapsed_ms", time.Since(start).Milliseconds())
	printRecord(rec)
}

func printRecord(rec any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		slog.Error("encode record", "error", err)
		os.Exit(1)
	}
}
