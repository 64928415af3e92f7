// Package worker provides goroutine pool management.
//
// Naked goroutines are forbidden outside cmd/server; all fan-out goes
// through a Pool so panics are recovered and shutdown is bounded.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission. The listing path uses
// it to hydrate per-game graph data with bounded concurrency.
type Pool struct {
	pool *ants.Pool
	name string
}

// New creates a named pool of the given size.
func New(name string, size int) (*Pool, error) {
	panicHandler := func(p interface{}) {
		logger.Error("worker panic recovered",
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	p, err := ants.NewPool(size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p, name: name}, nil
}

// Submit submits a context-aware task. If the context is already cancelled,
// Submit returns ctx.Err() without submitting. Once Submit returns nil the
// task runs exactly once, even when the context is cancelled while the task
// sits in the queue, so callers may hang completion bookkeeping (wait
// groups, channels) on the task itself. The task receives the caller's
// context and SHOULD check ctx.Done() at blocking points.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return p.pool.Submit(func() {
		task(ctx)
	})
}

// Shutdown releases the pool, waiting at most the given timeout for running
// tasks.
func (p *Pool) Shutdown(timeout time.Duration) {
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		logger.Warn("worker pool shutdown timeout",
			zap.String("pool", p.name),
			zap.Error(err),
		)
	}
}

// Running returns the number of currently running workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}
