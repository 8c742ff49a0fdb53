package ollama

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the Ollama client.
type Config struct {
	BaseURL     string        // default http://localhost:11434
	Model       string        // e.g. "tinyllama"
	Temperature float32       // 0..2; kept low for deterministic-ish output
	MaxTokens   int           // num_predict cap
	Timeout     time.Duration // hard per-request deadline
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "tinyllama"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}
