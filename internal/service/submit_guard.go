package service

import (
	"context"
	"sync/atomic"
	"time"

	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
)

// SubmitGuard lets one simulated save run at a time. Work runs once after the delay and is
// never retried.
type SubmitGuard struct {
	busy    atomic.Bool
	delay   time.Duration
	failure func() error
}

// NewSubmitGuard builds a guard. failure, when set, is consulted after the delay and its error
// aborts the call before any work runs.
func NewSubmitGuard(delay time.Duration, failure func() error) *SubmitGuard {
	return &SubmitGuard{delay: delay, failure: failure}
}

// Busy reports whether a call is in flight.
func (g *SubmitGuard) Busy() bool {
	return g.busy.Load()
}

// Run waits for the delay and then calls fn. A second Run while one is in flight fails with ErrBusy.
// Once started, a call runs to completion even if ctx is cancelled; fn gets ctx's values only.
func (g *SubmitGuard) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !g.busy.CompareAndSwap(false, true) {
		return appErrors.ErrBusy
	}
	defer g.busy.Store(false)

	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.failure != nil {
		if err := g.failure(); err != nil {
			return err
		}
	}
	return fn(context.WithoutCancel(ctx))
}
