// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the shared outbound-call discipline: per-backend
// request pacing and bounded retry with exponential backoff.
package httputil

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// JitterMax bounds the random delay added after each pacing wait, breaking
// lockstep between callers that share a gate. Tests set it to zero.
var JitterMax = 50 * time.Millisecond

// Pacer enforces a minimum inter-request interval toward one backend class.
// All adapters that target the same class share a single Pacer; concurrent
// callers serialize on the underlying limiter.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a pacer admitting rps requests per second. Rates at or
// below zero are clamped to a conservative 0.05 rps.
func NewPacer(rps float64) *Pacer {
	if rps <= 0 {
		rps = 0.05
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the pacer admits the next request or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if JitterMax > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(rand.Int63n(int64(JitterMax)))):
		}
	}
	return nil
}
