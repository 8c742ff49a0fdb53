package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medishare/medlabel/constants"
	"github.com/medishare/medlabel/internal/llm"
)

// ExtractFields implements llm.FieldExtractor against a local Ollama server.
// The reply is parsed leniently: brace-delimited JSON first, then a per-field
// line scan. A reply that yields nothing is an error; the caller decides
// whether that is fatal (it never is in the pipeline).
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (map[constants.Field]string, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.OCRText),
		"fields", len(req.Fields),
		"candidates", len(req.Candidates),
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body := map[string]any{
		"model":  c.cfg.Model,
		"system": llm.BuildSystemPrompt(req),
		"prompt": llm.BuildUserPrompt(req),
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": c.cfg.Temperature,
			"num_predict": c.cfg.MaxTokens,
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/generate"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, err
	}

	var gen struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("decode ollama response: %w", err)
	}
	reply := []byte(strings.TrimSpace(gen.Response))

	fields, perr := c.parseReply(reply, req.Fields)
	if perr != nil {
		c.log.Error("llm.extract.parse_failed",
			"req_id", rid, "error", perr, "reply_bytes", len(reply),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, reply, perr
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"answered", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, reply, nil
}

// parseReply runs the lenient parse ladder: schema-valid JSON object, then
// sanitized JSON object, then the raw line scan.
func (c *Client) parseReply(reply []byte, want []constants.Field) (map[constants.Field]string, error) {
	schema := llm.BuildLabelJSONSchema(want)

	if obj, ok := llm.ExtractJSONObject(reply); ok {
		if err := llm.ValidateJSONAgainstSchema(schema, obj); err == nil {
			fields, _, serr := llm.SanitizeFields(obj, want)
			if serr == nil {
				return fields, nil
			}
		}
		// schema rejected it; salvage what matches the requested subset
		if fields, dropped, serr := llm.SanitizeFields(obj, want); serr == nil && len(fields) > 0 {
			c.log.Warn("llm.extract.lenient_sanitize_applied", "dropped", dropped)
			return fields, nil
		}
	}

	if fields := llm.FallbackFieldScan(reply, want); len(fields) > 0 {
		c.log.Warn("llm.extract.line_scan_applied", "answered", len(fields))
		return fields, nil
	}
	return nil, fmt.Errorf("no parseable fields in model reply")
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if err := rc.Close(); err != nil {
			c.log.Warn("ollama response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ollama status %d: %s", resp.StatusCode, raw)
	}
	return raw, nil
}
