package voice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alkime/sonify/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu       sync.Mutex
	spoken   []voice.Utterance
	events   []string
	cancels  int
	voices   []voice.Voice
	voiceErr error
	polls    int
}

func (f *fakeEngine) Speak(_ context.Context, u voice.Utterance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, u)
	f.events = append(f.events, "speak:"+u.Text)
	return nil
}

func (f *fakeEngine) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	f.events = append(f.events, "cancel")
	return nil
}

func (f *fakeEngine) Voices(context.Context) ([]voice.Voice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.voices, f.voiceErr
}

func (f *fakeEngine) setVoices(v []voice.Voice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voices = v
}

func (f *fakeEngine) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.spoken))
	for i, u := range f.spoken {
		out[i] = u.Text
	}
	return out
}

func (f *fakeEngine) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func TestService_Speak(t *testing.T) {
	t.Run("queues when not interrupting", func(t *testing.T) {
		eng := &fakeEngine{}
		svc := voice.New(eng)

		svc.Speak("one", false)
		svc.Speak("two", false)

		assert.Equal(t, []string{"speak:one", "speak:two"}, eng.log())
	})

	t.Run("interrupt cancels first", func(t *testing.T) {
		eng := &fakeEngine{}
		svc := voice.New(eng)

		svc.Speak("Upload failed.", true)

		assert.Equal(t, []string{"cancel", "speak:Upload failed."}, eng.log())
	})

	t.Run("disabled is a no-op", func(t *testing.T) {
		eng := &fakeEngine{}
		svc := voice.New(eng, voice.WithEnabled(false))

		svc.Speak("hello", true)

		assert.Empty(t, eng.log())
	})

	t.Run("carries prosody defaults", func(t *testing.T) {
		eng := &fakeEngine{}
		svc := voice.New(eng)

		svc.Speak("hello", false)

		require.Len(t, eng.spoken, 1)
		assert.InDelta(t, voice.DefaultRate, eng.spoken[0].Rate, 1e-9)
		assert.InDelta(t, voice.DefaultPitch, eng.spoken[0].Pitch, 1e-9)
		assert.InDelta(t, voice.DefaultVolume, eng.spoken[0].Volume, 1e-9)
	})

	t.Run("nil engine degrades silently", func(t *testing.T) {
		svc := voice.New(nil)

		assert.NotPanics(t, func() {
			svc.Start(context.Background())
			svc.Speak("hello", true)
			svc.Stop()
			assert.False(t, svc.Toggle())
			assert.True(t, svc.Toggle())
			svc.Repeat()
		})
	})
}

func TestService_Toggle(t *testing.T) {
	t.Run("twice restores flag with one announcement", func(t *testing.T) {
		eng := &fakeEngine{}
		svc := voice.New(eng)
		before := svc.Enabled()

		svc.Toggle()
		svc.Toggle()

		assert.Equal(t, before, svc.Enabled())
		assert.Equal(t, []string{voice.EnabledMessage}, eng.texts())
	})

	t.Run("from disabled announces immediately", func(t *testing.T) {
		eng := &fakeEngine{}
		svc := voice.New(eng, voice.WithEnabled(false))

		assert.True(t, svc.Toggle())
		assert.Equal(t, []string{voice.EnabledMessage}, eng.texts())
	})
}

func TestService_Stop(t *testing.T) {
	eng := &fakeEngine{}
	svc := voice.New(eng)

	svc.Stop()

	assert.True(t, svc.Enabled())
	assert.Equal(t, 1, eng.cancels)
	assert.Empty(t, eng.texts())
}

func TestService_Disable(t *testing.T) {
	eng := &fakeEngine{}
	svc := voice.New(eng)

	svc.Disable()
	svc.Speak("ignored", false)

	assert.False(t, svc.Enabled())
	assert.Equal(t, []string{"cancel"}, eng.log())
}

func TestService_Repeat(t *testing.T) {
	eng := &fakeEngine{}
	svc := voice.New(eng)

	assert.False(t, svc.Repeat())

	svc.Speak("Trend: increasing.", false)
	assert.True(t, svc.Repeat())

	assert.Equal(t, []string{"speak:Trend: increasing.", "cancel", "speak:Trend: increasing."}, eng.log())
	assert.Equal(t, "Trend: increasing.", svc.Last())
}

func TestService_Prosody(t *testing.T) {
	svc := voice.New(&fakeEngine{})

	svc.SetRate(20)
	svc.SetPitch(-1)
	svc.SetVolume(0.5)

	rate, pitch, volume := svc.Prosody()
	assert.InDelta(t, 10, rate, 1e-9)
	assert.InDelta(t, 0, pitch, 1e-9)
	assert.InDelta(t, 0.5, volume, 1e-9)
}

func TestService_Start(t *testing.T) {
	t.Run("prefers an english voice", func(t *testing.T) {
		eng := &fakeEngine{voices: []voice.Voice{
			{ID: "de", Name: "German", Lang: "de"},
			{ID: "en-gb", Name: "English", Lang: "en-GB"},
		}}
		svc := voice.New(eng, voice.WithPollInterval(5*time.Millisecond))

		svc.Start(context.Background())

		require.Eventually(t, func() bool {
			_, ok := svc.Voice()
			return ok
		}, time.Second, 5*time.Millisecond)

		v, _ := svc.Voice()
		assert.Equal(t, "en-gb", v.ID)

		svc.Speak("hi", false)
		assert.Equal(t, "en-gb", eng.spoken[0].Voice.ID)
	})

	t.Run("falls back to the first voice", func(t *testing.T) {
		eng := &fakeEngine{voices: []voice.Voice{{ID: "fr", Lang: "fr"}, {ID: "de", Lang: "de"}}}
		svc := voice.New(eng, voice.WithPollInterval(5*time.Millisecond))

		svc.Start(context.Background())

		require.Eventually(t, func() bool {
			v, ok := svc.Voice()
			return ok && v.ID == "fr"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("polls until voices appear", func(t *testing.T) {
		eng := &fakeEngine{voiceErr: nil}
		svc := voice.New(eng, voice.WithPollInterval(5*time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc.Start(ctx)

		time.Sleep(20 * time.Millisecond)
		_, ok := svc.Voice()
		assert.False(t, ok)

		eng.setVoices([]voice.Voice{{ID: "en", Lang: "en"}})

		require.Eventually(t, func() bool {
			_, ok := svc.Voice()
			return ok
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("engine errors keep polling", func(t *testing.T) {
		eng := &fakeEngine{voiceErr: errors.New("not ready")}
		svc := voice.New(eng, voice.WithPollInterval(5*time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		svc.Start(ctx)

		require.Eventually(t, func() bool {
			eng.mu.Lock()
			defer eng.mu.Unlock()
			return eng.polls >= 2
		}, time.Second, 5*time.Millisecond)
		cancel()

		_, ok := svc.Voice()
		assert.False(t, ok)
	})
}

// queuedEngine speaks through a real Queue so Wait has something to watch.
type queuedEngine struct {
	*voice.Queue
}

func (queuedEngine) Voices(context.Context) ([]voice.Voice, error) { return nil, nil }

func TestService_Wait(t *testing.T) {
	t.Run("returns once queued speech is done", func(t *testing.T) {
		release := make(chan struct{})
		q := voice.NewQueue(func(ctx context.Context, _ voice.Utterance) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		}, 4)
		defer q.Close()

		s := voice.New(queuedEngine{Queue: q})
		s.Speak("Starting sonification.", true)
		s.Speak("Sonification complete.", false)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)

		close(release)
		require.NoError(t, s.Wait(context.Background()))
		assert.True(t, q.Idle())
	})

	t.Run("engines without progress return immediately", func(t *testing.T) {
		s := voice.New(&fakeEngine{})
		require.NoError(t, s.Wait(context.Background()))

		require.NoError(t, voice.New(nil).Wait(context.Background()))
	})
}
