// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"
)

// RetryBaseDelay is the starting backoff after a transient failure. The
// delay doubles per attempt up to retryMaxDelay. Tests override this to
// avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const (
	retryMaxDelay      = 8 * time.Second
	defaultMaxAttempts = 6
)

// ErrBackendUnavailable is returned once retries are exhausted. Callers must
// treat it as "backend unavailable", not "no matching results".
var ErrBackendUnavailable = errors.New("backend unavailable")

// Client is the rate-limited, retrying HTTP client shared by every backend
// adapter. Pacer may be nil for unpaced callers.
type Client struct {
	HTTP        *http.Client
	Pacer       *Pacer
	UserAgent   string
	MaxAttempts int
	Log         *slog.Logger
}

// retriable reports whether an HTTP status should trigger a backoff retry.
func retriable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Get issues a paced GET with retry and returns the response body. Transient
// failures (429, 5xx, connect/read timeouts) back off exponentially; other
// statuses fail immediately. Exhausted retries yield ErrBackendUnavailable.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	log := c.Log
	if log == nil {
		log = slog.Default()
	}
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	backoff := RetryBaseDelay
	for attempt := 1; ; attempt++ {
		if c.Pacer != nil {
			if err := c.Pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, status, err := c.once(ctx, reqURL, headers)
		switch {
		case err == nil && status == http.StatusOK:
			if attempt > 1 {
				log.Info("recovered after retries", "url", rawURL, "attempts", attempt)
			}
			return body, nil
		case err == nil && !retriable(status):
			return nil, fmt.Errorf("GET %s: HTTP %d", rawURL, status)
		case err != nil && !timeoutErr(err):
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("GET %s: %w", rawURL, err)
		}

		if attempt >= maxAttempts {
			return nil, fmt.Errorf("GET %s after %d attempts: %w", rawURL, attempt, ErrBackendUnavailable)
		}

		log.Warn("transient failure, backing off",
			"url", rawURL, "status", status, "err", err, "delay", backoff, "attempt", attempt)

		wait := backoff
		if JitterMax > 0 {
			wait += time.Duration(rand.Int63n(int64(JitterMax)))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
		if backoff > retryMaxDelay {
			backoff = retryMaxDelay
		}
	}
}

// GetJSON issues a paced GET and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, v any) error {
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["Accept"]; !ok {
		headers["Accept"] = "application/json"
	}
	body, err := c.Get(ctx, rawURL, params, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response from %s: %w", rawURL, err)
	}
	return nil
}

// once performs a single request and drains the body.
func (c *Client) once(ctx context.Context, reqURL string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// timeoutErr reports whether err is a connect or read timeout.
func timeoutErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
