package audit

import (
	"context"
	"sync"
	"time"

	"marketplace-portal/backend/internal/audit/domain"
)

// asyncTimeout bounds a single background write.
const asyncTimeout = 5 * time.Second

// Async runs the wrapped recorder in a goroutine per event so slow sinks do not hold up logins.
// The write runs on a context detached from the request's cancellation. Wait blocks until in-flight writes finish.
type Async struct {
	next Recorder
	wg   sync.WaitGroup
}

// NewAsync wraps next. A nil next records nothing.
func NewAsync(next Recorder) *Async {
	return &Async{next: next}
}

func (a *Async) Record(ctx context.Context, e domain.Event) {
	if a.next == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		writeCtx, cancel := context.WithTimeout(detached, asyncTimeout)
		defer cancel()
		a.next.Record(writeCtx, e)
	}()
}

// Wait blocks until every started write has returned or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
