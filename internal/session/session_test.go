package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/alkime/sonify/internal/backend"
	"github.com/alkime/sonify/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolver(file string) analysis.AudioReference {
	return analysis.AudioReference("http://backend.test/download/" + file)
}

func graphImage(name string) *backend.Image {
	return &backend.Image{Name: name, MIMEType: "image/png", Data: []byte("png")}
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	resp  *backend.Response
	err   error
	// block, when set, holds the upload until the context is done.
	block bool
}

func (f *fakeUploader) Upload(ctx context.Context, _ *backend.Image) (*backend.Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	return f.resp, f.err
}

func TestWorkflow_Select(t *testing.T) {
	t.Run("nil image is a no-op", func(t *testing.T) {
		w := session.New(resolver)

		_, notice, ok := w.Select(context.Background(), nil)
		assert.False(t, ok)
		assert.True(t, notice.IsZero())
		assert.Equal(t, session.StateIdle, w.Snapshot().State)
	})

	t.Run("starts uploading with an interrupting notice", func(t *testing.T) {
		w := session.New(resolver)

		ticket, notice, ok := w.Select(context.Background(), graphImage("line.png"))
		require.True(t, ok)
		assert.Equal(t, uint64(1), ticket.ID)
		assert.Equal(t, session.MsgStarting, notice.Text)
		assert.True(t, notice.Interrupt)

		snap := w.Snapshot()
		assert.Equal(t, session.StateUploading, snap.State)
		assert.Equal(t, "line.png", snap.FileName)
		assert.True(t, snap.Audio.IsZero())
		assert.Nil(t, snap.Result)
	})

	t.Run("new selection clears previous results immediately", func(t *testing.T) {
		w := session.New(resolver)

		first, _, _ := w.Select(context.Background(), graphImage("a.png"))
		_, ok := w.Complete(first.ID, &backend.Response{
			AudioFile: "sonified_a.wav",
			Analysis:  &analysis.Result{Trend: "increasing"},
		})
		require.True(t, ok)
		require.False(t, w.Snapshot().Audio.IsZero())

		_, _, ok = w.Select(context.Background(), graphImage("b.png"))
		require.True(t, ok)

		snap := w.Snapshot()
		assert.Equal(t, session.StateUploading, snap.State)
		assert.True(t, snap.Audio.IsZero())
		assert.Nil(t, snap.Result)
	})
}

func TestWorkflow_Complete(t *testing.T) {
	t.Run("summary names trend and intercepts verbatim", func(t *testing.T) {
		w := session.New(resolver)
		ticket, _, _ := w.Select(context.Background(), graphImage("g.png"))

		notice, ok := w.Complete(ticket.ID, &backend.Response{
			AudioFile: "sonified_g.wav",
			Analysis: &analysis.Result{
				GraphType:  "linear",
				Trend:      "increasing",
				XIntercept: analysis.Number(3),
				YIntercept: analysis.Number(-2),
			},
		})
		require.True(t, ok)
		assert.False(t, notice.Interrupt)
		assert.Contains(t, notice.Text, "increasing")
		assert.Contains(t, notice.Text, "3")
		assert.Contains(t, notice.Text, "-2")

		snap := w.Snapshot()
		assert.Equal(t, session.StateSucceeded, snap.State)
		assert.Equal(t, analysis.AudioReference("http://backend.test/download/sonified_g.wav"), snap.Audio)
		require.NotNil(t, snap.Result)
		assert.Equal(t, "increasing", snap.Result.Trend)
	})

	t.Run("no analysis gives the generic message", func(t *testing.T) {
		w := session.New(resolver)
		ticket, _, _ := w.Select(context.Background(), graphImage("g.png"))

		notice, ok := w.Complete(ticket.ID, &backend.Response{AudioFile: "sonified_g.wav"})
		require.True(t, ok)
		assert.Equal(t, session.MsgComplete, notice.Text)

		snap := w.Snapshot()
		assert.Equal(t, session.StateSucceeded, snap.State)
		assert.Nil(t, snap.Result)
		assert.False(t, snap.Audio.IsZero())
	})

	t.Run("stale completion is ignored", func(t *testing.T) {
		w := session.New(resolver)
		first, _, _ := w.Select(context.Background(), graphImage("a.png"))
		second, _, _ := w.Select(context.Background(), graphImage("b.png"))

		assert.ErrorIs(t, first.Ctx.Err(), context.Canceled)
		assert.NoError(t, second.Ctx.Err())

		notice, ok := w.Complete(first.ID, &backend.Response{AudioFile: "sonified_a.wav"})
		assert.False(t, ok)
		assert.True(t, notice.IsZero())

		snap := w.Snapshot()
		assert.Equal(t, session.StateUploading, snap.State)
		assert.Equal(t, "b.png", snap.FileName)
		assert.True(t, snap.Audio.IsZero())
	})

	t.Run("completion outside uploading is ignored", func(t *testing.T) {
		w := session.New(resolver)

		_, ok := w.Complete(0, &backend.Response{AudioFile: "x.wav"})
		assert.False(t, ok)
		assert.Equal(t, session.StateIdle, w.Snapshot().State)
	})
}

func TestWorkflow_Fail(t *testing.T) {
	t.Run("failure then acknowledge equals a fresh workflow", func(t *testing.T) {
		fresh := session.New(resolver).Snapshot()

		w := session.New(resolver)
		ticket, _, _ := w.Select(context.Background(), graphImage("g.png"))

		uploadErr := errors.New("connection refused")
		notice, ok := w.Fail(ticket.ID, uploadErr)
		require.True(t, ok)
		assert.Equal(t, session.MsgUploadFailed, notice.Text)
		assert.True(t, notice.Interrupt)

		failed := w.Snapshot()
		assert.Equal(t, session.StateFailed, failed.State)
		assert.ErrorIs(t, failed.Err, uploadErr)
		assert.True(t, failed.Audio.IsZero())
		assert.Nil(t, failed.Result)

		w.Acknowledge()

		snap := w.Snapshot()
		assert.Equal(t, fresh.State, snap.State)
		assert.Equal(t, fresh.FileName, snap.FileName)
		assert.Equal(t, fresh.Audio, snap.Audio)
		assert.Equal(t, fresh.Result, snap.Result)
		assert.NoError(t, snap.Err)
	})

	t.Run("acknowledge is ignored unless failed", func(t *testing.T) {
		w := session.New(resolver)
		_, _, _ = w.Select(context.Background(), graphImage("g.png"))

		w.Acknowledge()
		assert.Equal(t, session.StateUploading, w.Snapshot().State)
	})

	t.Run("nil response counts as failure", func(t *testing.T) {
		w := session.New(resolver)
		ticket, _, _ := w.Select(context.Background(), graphImage("g.png"))

		_, ok := w.Complete(ticket.ID, nil)
		require.True(t, ok)

		snap := w.Snapshot()
		assert.Equal(t, session.StateFailed, snap.State)
		assert.ErrorIs(t, snap.Err, backend.ErrMissingAudioFile)
	})
}

func TestProcess(t *testing.T) {
	t.Run("dispatches notices in order", func(t *testing.T) {
		w := session.New(resolver)
		up := &fakeUploader{resp: &backend.Response{
			AudioFile: "sonified_g.wav",
			Analysis:  &analysis.Result{Trend: "decreasing", XIntercept: analysis.Number(1)},
		}}

		var notices []session.Notice
		snap := session.Process(context.Background(), w, up, graphImage("g.png"), func(n session.Notice) {
			notices = append(notices, n)
		})

		assert.Equal(t, 1, up.calls)
		assert.Equal(t, session.StateSucceeded, snap.State)
		require.Len(t, notices, 2)
		assert.Equal(t, session.MsgStarting, notices[0].Text)
		assert.Contains(t, notices[1].Text, "decreasing")
	})

	t.Run("upload error fails the workflow", func(t *testing.T) {
		w := session.New(resolver)
		up := &fakeUploader{err: &backend.StatusError{Op: "upload", Code: 500, Detail: "boom"}}

		var notices []session.Notice
		snap := session.Process(context.Background(), w, up, graphImage("g.png"), func(n session.Notice) {
			notices = append(notices, n)
		})

		assert.Equal(t, session.StateFailed, snap.State)
		var statusErr *backend.StatusError
		require.ErrorAs(t, snap.Err, &statusErr)
		assert.Equal(t, "boom", statusErr.Detail)
		require.Len(t, notices, 2)
		assert.Equal(t, session.MsgUploadFailed, notices[1].Text)
	})

	t.Run("nil image makes no network call", func(t *testing.T) {
		w := session.New(resolver)
		up := &fakeUploader{}

		snap := session.Process(context.Background(), w, up, nil, nil)
		assert.Equal(t, 0, up.calls)
		assert.Equal(t, session.StateIdle, snap.State)
	})
}

func TestRun_Superseded(t *testing.T) {
	w := session.New(resolver)
	up := &fakeUploader{block: true}

	first, _, _ := w.Select(context.Background(), graphImage("a.png"))

	done := make(chan bool, 1)
	go func() {
		_, ok := session.Run(w, up, first)
		done <- ok
	}()

	_, _, _ = w.Select(context.Background(), graphImage("b.png"))

	select {
	case ok := <-done:
		assert.False(t, ok, "superseded upload must not apply")
	case <-time.After(time.Second):
		t.Fatal("superseded upload was not cancelled")
	}

	snap := w.Snapshot()
	assert.Equal(t, session.StateUploading, snap.State)
	assert.Equal(t, "b.png", snap.FileName)
}

func TestWithUploadTimeout(t *testing.T) {
	w := session.New(resolver, session.WithUploadTimeout(10*time.Millisecond))
	up := &fakeUploader{block: true}

	snap := session.Process(context.Background(), w, up, graphImage("slow.png"), nil)
	assert.Equal(t, session.StateFailed, snap.State)
	assert.ErrorIs(t, snap.Err, context.DeadlineExceeded)
}
