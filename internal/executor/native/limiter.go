package native

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sakif/interview-runner/internal/apperror"
)

// Limiter bounds the number of native programs running at once. Requests
// beyond MaxConcurrent wait in a queue of at most MaxQueue entries; anything
// past that, or anything that waits longer than QueueWait, is rejected.
type Limiter struct {
	slots    chan struct{}
	maxQueue int64
	waiting  atomic.Int64
	wait     time.Duration
	logger   *slog.Logger
}

// NewLimiter initializes a limiter from cfg.
func NewLimiter(cfg Config, logger *slog.Logger) *Limiter {
	size := cfg.MaxConcurrent
	if size < 1 {
		size = 1
	}
	return &Limiter{
		slots:    make(chan struct{}, size),
		maxQueue: int64(max(cfg.MaxQueue, 0)),
		wait:     cfg.QueueWait,
		logger:   logger,
	}
}

// Acquire reserves a slot. The returned release func must be called exactly
// once. It fails with apperror.ErrBusy when the queue is full or the wait
// expires, and with the context error when ctx ends first.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	// Fast path: a free slot, no queueing.
	select {
	case l.slots <- struct{}{}:
		return l.release, nil
	default:
	}

	if l.waiting.Add(1) > l.maxQueue {
		l.waiting.Add(-1)
		l.logger.Warn("native execution queue full", slog.Int("running", len(l.slots)))
		return nil, apperror.Busy("Too many code executions in progress. Please try again shortly.")
	}
	defer l.waiting.Add(-1)

	var timeout <-chan time.Time
	if l.wait > 0 {
		t := time.NewTimer(l.wait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case l.slots <- struct{}{}:
		return l.release, nil
	case <-timeout:
		l.logger.Warn("timed out waiting for an execution slot", slog.Duration("wait", l.wait))
		return nil, apperror.Busy("Timed out waiting for an execution slot. Please try again shortly.")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Limiter) release() {
	<-l.slots
}

// Running reports how many slots are held.
func (l *Limiter) Running() int {
	return len(l.slots)
}

// Waiting reports how many callers are queued.
func (l *Limiter) Waiting() int {
	return int(l.waiting.Load())
}
