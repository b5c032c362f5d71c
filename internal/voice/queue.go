package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/sonify/pkg/channels"
)

// DefaultQueueSize bounds how many utterances may wait behind the current one.
const DefaultQueueSize = 16

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("speech queue closed")

// SayFunc speaks one utterance and blocks until it is done. It must return
// promptly once ctx is cancelled.
type SayFunc func(ctx context.Context, u Utterance) error

type queued struct {
	u   Utterance
	gen uint64
}

// Queue serializes utterances onto a single worker, the way platform speech
// engines do. Engines embed it to get Speak and Cancel.
type Queue struct {
	say   SayFunc
	items chan queued

	mu      sync.Mutex
	gen     uint64
	current context.CancelFunc
	pending int
	closed  bool

	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewQueue starts a worker that feeds utterances to say one at a time.
func NewQueue(say SayFunc, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}

	ctx, stop := context.WithCancel(context.Background())
	q := &Queue{
		say:   say,
		items: make(chan queued, size),
		stop:  stop,
	}

	q.wg.Go(func() {
		q.run(ctx)
	})

	return q
}

// Speak enqueues u without waiting for it to be spoken.
func (q *Queue) Speak(_ context.Context, u Utterance) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	if err := channels.SendNonBlock(q.items, queued{u: u, gen: q.gen}); err != nil {
		return fmt.Errorf("failed to enqueue utterance: %w", err)
	}
	q.pending++

	return nil
}

// Cancel drops everything queued and interrupts the current utterance.
// It is safe to call when nothing is playing.
func (q *Queue) Cancel() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.gen++
	if q.current != nil {
		q.current()
		q.current = nil
	}

	return nil
}

// Busy reports whether an utterance is being spoken.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.current != nil
}

// Idle reports whether nothing is being spoken or waiting to be.
func (q *Queue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.pending == 0
}

// Close cancels speech and stops the worker.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	_ = q.Cancel()
	q.stop()
	q.wg.Wait()
}

func (q *Queue) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-q.items:
			q.speak(ctx, item)
		}
	}
}

func (q *Queue) speak(parent context.Context, item queued) {
	q.mu.Lock()
	if item.gen != q.gen {
		// Cancelled while waiting.
		q.pending--
		q.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(parent)
	q.current = cancel
	q.mu.Unlock()

	err := q.say(ctx, item.u)

	q.mu.Lock()
	if ctx.Err() == nil {
		q.current = nil
	}
	q.pending--
	q.mu.Unlock()
	cancel()

	if err != nil && ctx.Err() == nil {
		slog.Warn("speech engine error", "error", err)
	}
}
