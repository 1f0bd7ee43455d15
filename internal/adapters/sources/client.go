package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mmradar/internal/adapters/sources/ratelimit"
	"mmradar/internal/adapters/sources/retry"
	"mmradar/pkg/errors"
)

const maxBodyBytes = 10 << 20

// apiError carries the HTTP status of a failed provider call so the
// retry middleware can tell transient failures from permanent ones
type apiError struct {
	code int
	url  string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.code, e.url)
}

func (e *apiError) StatusCode() int {
	return e.code
}

// client is the shared HTTP plumbing of every market-data source:
// one rate limiter and one retry policy per provider, JSON decoding
// and status handling in one place.
type client struct {
	http    *http.Client
	limiter *ratelimit.Limiter
	retrier *retry.Middleware
	headers map[string]string
}

func newClient(name string, perSecond float64, burst int, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		limiter: ratelimit.NewLimiter(name, perSecond, burst),
		retrier: retry.New(retry.DefaultConfig()),
		headers: map[string]string{},
	}
}

func (c *client) withHeader(key, value string) *client {
	c.headers[key] = value
	return c
}

// getJSON fetches url and decodes the body into out. Rate limiting,
// retries and non-2xx handling are applied uniformly.
func (c *client) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	return c.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrap(err, "build request")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "mmradar/1.0")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return errors.Wrap(errors.ErrSourceUnavailable, err.Error())
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			return &apiError{code: resp.StatusCode, url: url}
		}

		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
			return errors.Wrap(errors.ErrMalformedPayload, err.Error())
		}
		return nil
	})
}
