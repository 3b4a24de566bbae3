// Package lookup talks to the external word lookup services: a dictionary,
// a lexical-metadata source and a translator.
package lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vocabsheet/internal/backoff"

	"golang.org/x/time/rate"
)

const userAgent = "vocabsheet/1.0"

// maxErrorBody bounds how much of a failed response is kept in the error
const maxErrorBody = 512

// httpSource is the transport shared by every lookup client: one rate limiter
// per source, every request retried by the backoff executor.
type httpSource struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *backoff.Executor
}

func newHTTPSource(timeout time.Duration, ratePerSecond float64, exec *backoff.Executor) httpSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
		burst = int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	if exec == nil {
		exec = backoff.New(backoff.DefaultPolicy(), backoff.IsTransient, nil)
	}
	return httpSource{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		exec:       exec.WithClassifier(backoff.IsTransient),
	}
}

// get fetches url and returns the body of a 200 response
func (s httpSource) get(ctx context.Context, name, url string) ([]byte, error) {
	return backoff.Do(ctx, s.exec, name, func(ctx context.Context) ([]byte, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request: %w", name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, &backoff.StatusError{
				Code:    resp.StatusCode,
				Message: strings.TrimSpace(string(body)),
			}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s response: %w", name, err)
		}
		return body, nil
	})
}
