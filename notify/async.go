package notify

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/warp/vacationflow/vacation"
)

// ErrClosed is returned by NotifyStatus after Close.
var ErrClosed = errors.New("notifier closed")

// Async hands notifications to a background worker so a slow transport
// never delays a decision. Close drains the queue.
type Async struct {
	next  vacation.Notifier
	queue chan vacation.StatusNotification

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ vacation.Notifier = (*Async)(nil)

// NewAsync starts one worker delivering to next with a queue of the
// given size.
func NewAsync(next vacation.Notifier, size int) *Async {
	a := &Async{
		next:  next,
		queue: make(chan vacation.StatusNotification, size),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for n := range a.queue {
		if err := a.next.NotifyStatus(context.Background(), n); err != nil {
			log.Printf("[Notify] delivery for request %s failed: %v", n.RequestID, err)
		}
	}
}

// NotifyStatus enqueues n. It blocks while the queue is full until ctx
// is done.
func (a *Async) NotifyStatus(ctx context.Context, n vacation.StatusNotification) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting notifications and waits for queued ones to be
// delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	a.wg.Wait()
}
