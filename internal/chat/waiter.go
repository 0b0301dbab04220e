package chat

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Waiter parks callers until a dispatched message satisfies their predicate.
// Adapters feed every incoming message to Dispatch and implement
// Transport.WaitForMessage with Wait.
type Waiter struct {
	mu      sync.Mutex
	pending []*pendingWait
	backlog []Message
}

// maxBacklog bounds the messages Offer keeps for later waits; the oldest are
// dropped first.
const maxBacklog = 256

type pendingWait struct {
	match func(Message) bool
	ch    chan Message
}

// NewWaiter returns an empty Waiter.
func NewWaiter() *Waiter {
	return &Waiter{}
}

// Wait returns the oldest matching message queued by Offer, or blocks until a
// matching message is dispatched, the timeout elapses or ctx is done.
func (w *Waiter) Wait(ctx context.Context, match func(Message) bool, timeout time.Duration) (Message, error) {
	p := &pendingWait{match: match, ch: make(chan Message, 1)}

	w.mu.Lock()
	if i := slices.IndexFunc(w.backlog, match); i >= 0 {
		m := w.backlog[i]
		w.backlog = slices.Delete(w.backlog, i, i+1)
		w.mu.Unlock()
		return m, nil
	}
	w.pending = append(w.pending, p)
	w.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var err error
	select {
	case m := <-p.ch:
		return m, nil
	case <-timer.C:
		err = ErrTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	// A dispatch may have won the race against the timer.
	if !w.remove(p) {
		return <-p.ch, nil
	}
	return Message{}, err
}

// Dispatch hands m to the oldest waiter that matches it and reports whether
// anyone took it.
func (w *Waiter) Dispatch(m Message) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dispatchLocked(m)
}

// Offer is Dispatch for streams read ahead of the conversation: a message
// nobody is waiting for is queued for the next Wait that matches it.
func (w *Waiter) Offer(m Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dispatchLocked(m) {
		return
	}
	if len(w.backlog) == maxBacklog {
		w.backlog = slices.Delete(w.backlog, 0, 1)
	}
	w.backlog = append(w.backlog, m)
}

// Queued is the number of offered messages nobody has taken yet.
func (w *Waiter) Queued() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.backlog)
}

func (w *Waiter) dispatchLocked(m Message) bool {
	for i, p := range w.pending {
		if !p.match(m) {
			continue
		}
		w.pending = slices.Delete(w.pending, i, i+1)
		p.ch <- m
		return true
	}
	return false
}

// Pending is the number of callers currently waiting.
func (w *Waiter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Waiter) remove(p *pendingWait) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := slices.Index(w.pending, p)
	if i < 0 {
		return false
	}
	w.pending = slices.Delete(w.pending, i, i+1)
	return true
}
