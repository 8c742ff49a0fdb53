// Package ocr reads label images through the OCR.space API. The client owns
// the free-tier constraints: a rolling request budget, bounded retries on
// throttling, and a hard distinction between transient upstream failures and
// the terminal no-text-in-image outcome.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/medishare/medlabel/constants"
	"github.com/medishare/medlabel/internal/common"
)

// Client calls OCR.space. Safe for concurrent use; the shared limiter keeps
// all callers inside the per-minute budget.
type Client struct {
	cfg     common.OCRConfig
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewClient(cfg common.OCRConfig, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.ocr.space/parse/image"
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 30
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1),
		log:     logger,
	}
}

type parseResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
	OCRExitCode           int             `json:"OCRExitCode"`
}

// Extract implements TextExtractor. Transient upstream failures (throttling,
// 5xx) are retried a bounded number of times; an image the engine read but
// found no text in returns common.ErrNoText and is never retried.
func (c *Client) Extract(ctx context.Context, in Input) (Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	if in.URL == "" {
		if len(in.Data) == 0 {
			return Result{}, common.NewAppError("OCR_INPUT", "no image data or url", common.ErrInvalidInput)
		}
		if !supportedExtension(in.FileName) {
			return Result{}, common.NewAppError("OCR_INPUT",
				fmt.Sprintf("unsupported image type %q", filepath.Ext(in.FileName)), common.ErrInvalidInput)
		}
	}

	c.log.Info("ocr.extract.start",
		"req_id", rid,
		"file", in.FileName,
		"bytes", len(in.Data),
		"via_url", in.URL != "",
	)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return Result{}, err
		}

		text, retryable, err := c.parseOnce(ctx, in)
		if err == nil {
			res := Result{Text: text, Duration: time.Since(start)}
			if strings.TrimSpace(text) == "" {
				c.log.Warn("ocr.extract.no_text", "req_id", rid, "elapsed_ms", res.Duration.Milliseconds())
				return res, common.ErrNoText
			}
			c.log.Info("ocr.extract.ok",
				"req_id", rid,
				"text_len", len(text),
				"attempts", attempt,
				"elapsed_ms", res.Duration.Milliseconds(),
			)
			return res, nil
		}

		lastErr = err
		if !retryable {
			break
		}
		c.log.Warn("ocr.extract.retry",
			"req_id", rid, "attempt", attempt, "error", err,
		)
		if attempt < c.cfg.MaxRetries {
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return Result{}, ctx.Err()
			}
		}
	}

	c.log.Error("ocr.extract.failed",
		"req_id", rid, "error", lastErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{}, common.NewAppError("OCR_UPSTREAM", "ocr request failed", lastErr)
}

// parseOnce performs a single API call. retryable marks throttling and
// server-side failures; client-side rejections are terminal.
func (c *Client) parseOnce(ctx context.Context, in Input) (text string, retryable bool, err error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"language":          constants.OCRLanguage,
		"OCREngine":         constants.OCREngine,
		"scale":             constants.OCRScale,
		"detectOrientation": constants.OCRDetectOrientation,
		"isOverlayRequired": "false",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", false, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if in.URL != "" {
		if err := w.WriteField("url", in.URL); err != nil {
			return "", false, fmt.Errorf("write url field: %w", err)
		}
	} else {
		part, err := w.CreateFormFile("file", in.FileName)
		if err != nil {
			return "", false, fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(in.Data); err != nil {
			return "", false, fmt.Errorf("write file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", false, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, &body)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, err
	}
	defer func(rc io.ReadCloser) {
		if cerr := rc.Close(); cerr != nil {
			c.log.Warn("ocr response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", true, fmt.Errorf("%w: status 429", common.ErrRateLimited)
	case resp.StatusCode >= 500:
		return "", true, fmt.Errorf("ocr status %d: %s", resp.StatusCode, raw)
	case resp.StatusCode != http.StatusOK:
		return "", false, fmt.Errorf("ocr status %d: %s", resp.StatusCode, raw)
	}

	var pr parseResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return "", false, fmt.Errorf("decode ocr response: %w", err)
	}
	if pr.IsErroredOnProcessing {
		return "", false, fmt.Errorf("ocr processing error: %s", flattenErrorMessage(pr.ErrorMessage))
	}
	if len(pr.ParsedResults) == 0 {
		return "", false, fmt.Errorf("ocr response has no parsed results")
	}
	return pr.ParsedResults[0].ParsedText, false, nil
}

// flattenErrorMessage handles the API's habit of returning ErrorMessage as
// either a string or an array of strings.
func flattenErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return string(raw)
}

func supportedExtension(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := constants.SupportedImageExtensions[ext]
	return ok
}
