package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Match    MatchConfig
	Cache    CacheConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr       string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// OCRConfig holds OCR.space client configuration
type OCRConfig struct {
	APIKey        string
	BaseURL       string
	RatePerMinute int
	MaxRetries    int
	RetryDelay    time.Duration
	Timeout       time.Duration
}

// LLMConfig holds Ollama client configuration
type LLMConfig struct {
	Enabled     bool
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// MatchConfig holds similarity matching thresholds (percent overlap).
type MatchConfig struct {
	MinSimilarity int
	MaxSimilarity int
}

// CacheConfig holds extraction cache configuration
type CacheConfig struct {
	Path string
	TTL  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		OCR: OCRConfig{
			APIKey:        getEnv("OCR_API_KEY", ""),
			BaseURL:       getEnv("OCR_BASE_URL", "https://api.ocr.space/parse/image"),
			RatePerMinute: getEnvAsInt("OCR_RATE_PER_MINUTE", 30),
			MaxRetries:    getEnvAsInt("OCR_MAX_RETRIES", 3),
			RetryDelay:    getEnvAsDuration("OCR_RETRY_DELAY", time.Second),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			Enabled:     getEnvAsBool("LLM_ENABLED", true),
			BaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:       getEnv("OLLAMA_MODEL", "tinyllama"),
			Temperature: getEnvAsFloat32("OLLAMA_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt("OLLAMA_MAX_TOKENS", 256),
			Timeout:     getEnvAsDuration("OLLAMA_TIMEOUT", 8*time.Second),
		},
		Match: MatchConfig{
			MinSimilarity: getEnvAsInt("MATCH_MIN_SIMILARITY", 70),
			MaxSimilarity: getEnvAsInt("MATCH_MAX_SIMILARITY", 80),
		},
		Cache: CacheConfig{
			Path: getEnv("CACHE_PATH", ""),
			TTL:  getEnvAsDuration("CACHE_TTL", 24*time.Hour),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for required values and
// consistent thresholds.
func (c *Config) Validate() error {
	if c.OCR.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OCR_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Match.MinSimilarity < 0 || c.Match.MaxSimilarity > 100 || c.Match.MinSimilarity > c.Match.MaxSimilarity {
		return NewAppError("CONFIG_ERROR", "similarity band must satisfy 0 <= min <= max <= 100", ErrInvalidInput)
	}
	return nil
}
