// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Tiny delays so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
	JitterMax = 0
}

func TestGetImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client()}
	body, err := c.Get(context.Background(), ts.URL, nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetRetriesTransientStatuses(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client()}
	_, err := c.Get(context.Background(), ts.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryClientError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client()}
	_, err := c.Get(context.Background(), ts.URL, nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

func TestGetExhaustionYieldsUnavailable(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client(), MaxAttempts: 3}
	_, err := c.Get(context.Background(), ts.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetCancelledDuringBackoff(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Client{HTTP: ts.Client()}
	_, err := c.Get(ctx, ts.URL, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetJSONDecodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"total":42}`))
	}))
	defer ts.Close()

	var out struct {
		Total int `json:"total"`
	}
	c := &Client{HTTP: ts.Client()}
	err := c.GetJSON(context.Background(), ts.URL, url.Values{"limit": {"7"}}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Total)
}

func TestPacerSpacesRequests(t *testing.T) {
	p := NewPacer(50) // 20ms interval
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))
	elapsed := time.Since(start)

	// Two inter-request gaps of 20ms each.
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestPacerHonorsCancellation(t *testing.T) {
	p := NewPacer(0.1) // 10s interval
	ctx := context.Background()
	require.NoError(t, p.Wait(ctx))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := p.Wait(ctx)
	assert.Error(t, err)
}
