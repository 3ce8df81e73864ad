package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of analyses running at once.
type Limiter interface {
	Acquire(ctx context.Context) (release func(), err error)
	InFlight() int64
}

type limiter struct {
	sem         *semaphore.Weighted
	concurrency int64
	queueWait   time.Duration
	inFlight    atomic.Int64
}

// NewLimiter allows concurrency analyses at a time. A request waits up to
// queueWait for a free slot; with no wait it is turned away immediately.
func NewLimiter(concurrency int, queueWait time.Duration) Limiter {
	concurrency = max(concurrency, 1)
	log.Printf("🚀 Analyzer admits %d concurrent requests (queue wait %s)", concurrency, queueWait)

	return &limiter{
		sem:         semaphore.NewWeighted(int64(concurrency)),
		concurrency: int64(concurrency),
		queueWait:   queueWait,
	}
}

// Acquire implements Limiter.
func (l *limiter) Acquire(ctx context.Context) (func(), error) {
	if l.queueWait <= 0 {
		if !l.sem.TryAcquire(1) {
			return nil, newError(KindBusy, fmt.Errorf("all %d analysis slots are in use", l.concurrency))
		}
		return l.release(), nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.queueWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(KindBusy, fmt.Errorf("no analysis slot freed within %s", l.queueWait))
		}
		return nil, newError(KindBusy, err)
	}
	return l.release(), nil
}

// InFlight implements Limiter.
func (l *limiter) InFlight() int64 {
	return l.inFlight.Load()
}

func (l *limiter) release() func() {
	l.inFlight.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			l.inFlight.Add(-1)
			l.sem.Release(1)
		}
	}
}
