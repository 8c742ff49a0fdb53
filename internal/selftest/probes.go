package selftest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HTTPReachable probes a URL with a GET and accepts any response below 500.
// Enough to prove connectivity and TLS without spending API quota.
func HTTPReachable(url string) Probe {
	client := &http.Client{Timeout: 5 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("status %d from %s", resp.StatusCode, url)
		}
		return nil
	}
}

// OllamaReachable probes the model server's tag listing endpoint.
func OllamaReachable(baseURL string) Probe {
	return HTTPReachable(strings.TrimRight(baseURL, "/") + "/api/tags")
}

// DatabaseReachable probes the pool with a ping.
func DatabaseReachable(pool *pgxpool.Pool) Probe {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}
