// Package selftest probes the pipeline's external dependencies in parallel
// and reports per-dependency health. A failed probe degrades the report, not
// the process: the pipeline keeps serving with whatever still works.
package selftest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Probe checks one dependency. It should respect ctx and come back fast.
type Probe func(ctx context.Context) error

// Report is the outcome of one self-test run.
type Report struct {
	OCR      bool              `json:"ocr"`
	LLM      bool              `json:"llm"`
	Database bool              `json:"database"`
	Healthy  bool              `json:"healthy"`
	Errors   map[string]string `json:"errors,omitempty"`
	Elapsed  time.Duration     `json:"-"`
}

// Checker runs the dependency probes. A nil probe marks its dependency
// healthy by definition (the deployment does not use it).
type Checker struct {
	OCR      Probe
	LLM      Probe
	Database Probe
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Run executes all configured probes concurrently and collates the report.
func (c *Checker) Run(ctx context.Context) Report {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	rep := Report{OCR: true, LLM: true, Database: true, Errors: map[string]string{}}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	run := func(name string, probe Probe, ok *bool) {
		if probe == nil {
			return
		}
		g.Go(func() error {
			if err := probe(ctx); err != nil {
				logger.Warn("selftest.probe.failed", "dependency", name, "error", err)
				mu.Lock()
				*ok = false
				rep.Errors[name] = err.Error()
				mu.Unlock()
			}
			// failures are recorded, not returned: one bad dependency must
			// not cancel the sibling probes
			return nil
		})
	}

	run("ocr", c.OCR, &rep.OCR)
	run("llm", c.LLM, &rep.LLM)
	run("database", c.Database, &rep.Database)
	_ = g.Wait()

	rep.Healthy = rep.OCR && rep.LLM && rep.Database
	rep.Elapsed = time.Since(start)
	if len(rep.Errors) == 0 {
		rep.Errors = nil
	}

	logger.Info("selftest.done",
		"ocr", rep.OCR, "llm", rep.LLM, "database", rep.Database,
		"elapsed_ms", rep.Elapsed.Milliseconds(),
	)
	return rep
}
