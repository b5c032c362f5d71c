package voice_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alkime/sonify/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingSay records utterances and holds each one until released or
// cancelled.
type blockingSay struct {
	mu      sync.Mutex
	started []string
	release chan struct{}
}

func (b *blockingSay) say(ctx context.Context, u voice.Utterance) error {
	b.mu.Lock()
	b.started = append(b.started, u.Text)
	b.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.release:
		return nil
	}
}

func (b *blockingSay) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.started...)
}

func TestQueue_SpeaksInOrder(t *testing.T) {
	t.Parallel()

	b := &blockingSay{release: make(chan struct{})}
	close(b.release)

	q := voice.NewQueue(b.say, 4)
	defer q.Close()

	require.NoError(t, q.Speak(context.Background(), voice.Utterance{Text: "one"}))
	require.NoError(t, q.Speak(context.Background(), voice.Utterance{Text: "two"}))

	require.Eventually(t, func() bool { return len(b.texts()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one", "two"}, b.texts())
}

func TestQueue_CancelDropsPending(t *testing.T) {
	t.Parallel()

	b := &blockingSay{release: make(chan struct{})}
	q := voice.NewQueue(b.say, 4)
	defer q.Close()

	require.NoError(t, q.Speak(context.Background(), voice.Utterance{Text: "long"}))
	require.Eventually(t, q.Busy, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Speak(context.Background(), voice.Utterance{Text: "stale"}))
	require.NoError(t, q.Cancel())
	assert.False(t, q.Busy())

	require.NoError(t, q.Speak(context.Background(), voice.Utterance{Text: "fresh"}))
	require.Eventually(t, func() bool { return len(b.texts()) == 2 }, time.Second, 5*time.Millisecond)
	assert.False(t, q.Idle())

	close(b.release)
	require.Eventually(t, q.Idle, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"long", "fresh"}, b.texts())
}

func TestQueue_CancelWhenIdle(t *testing.T) {
	t.Parallel()

	q := voice.NewQueue(func(context.Context, voice.Utterance) error { return nil }, 1)
	defer q.Close()

	assert.NoError(t, q.Cancel())
	assert.False(t, q.Busy())
}

func TestQueue_Full(t *testing.T) {
	t.Parallel()

	b := &blockingSay{release: make(chan struct{})}
	q := voice.NewQueue(b.say, 1)
	defer q.Close()

	require.NoError(t, q.Speak(context.Background(), voice.Utterance{Text: "playing"}))
	require.Eventually(t, q.Busy, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Speak(context.Background(), voice.Utterance{Text: "waiting"}))

	err := q.Speak(context.Background(), voice.Utterance{Text: "overflow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enqueue utterance")
}

func TestQueue_Close(t *testing.T) {
	t.Parallel()

	b := &blockingSay{release: make(chan struct{})}
	q := voice.NewQueue(b.say, 1)

	require.NoError(t, q.Speak(context.Background(), voice.Utterance{Text: "playing"}))
	require.Eventually(t, q.Busy, time.Second, 5*time.Millisecond)

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Speak(context.Background(), voice.Utterance{Text: "late"}), voice.ErrQueueClosed)
}
