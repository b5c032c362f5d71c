package audio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alkime/sonify/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAV_EncodeDecode(t *testing.T) {
	t.Parallel()

	clip := audio.Sketch("increasing", true, true)
	path := filepath.Join(t.TempDir(), "sketch.wav")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, audio.EncodeWAV(f, clip))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := audio.DecodeWAV(f)
	require.NoError(t, err)
	assert.Equal(t, clip.SampleRate, decoded.SampleRate)
	assert.Equal(t, 1, decoded.Channels)
	assert.Equal(t, clip.Samples, decoded.Samples)
}

func TestDecodeWAV_Invalid(t *testing.T) {
	t.Parallel()

	_, err := audio.DecodeWAV(bytes.NewReader([]byte("definitely not RIFF data")))
	require.Error(t, err)
}

func TestClip_Duration(t *testing.T) {
	t.Parallel()

	clip := audio.Clip{Samples: make([]int16, 16000), SampleRate: 8000, Channels: 2}
	assert.Equal(t, time.Second, clip.Duration())
	assert.Equal(t, 8000, clip.Frames())
	assert.Len(t, clip.Mono(), 8000)
}

func TestEncodeMP3(t *testing.T) {
	t.Parallel()

	t.Run("mono clip", func(t *testing.T) {
		t.Parallel()

		out := bytes.NewBuffer(nil)
		clip := audio.Clip{
			Samples:    audio.Tone(440, time.Second, 16000, 0.5),
			SampleRate: 16000,
			Channels:   1,
		}

		require.NoError(t, audio.EncodeMP3(out, clip))
		assert.Greater(t, out.Len(), 0, "expected MP3 data to be written")
	})

	t.Run("invalid clip", func(t *testing.T) {
		t.Parallel()

		err := audio.EncodeMP3(bytes.NewBuffer(nil), audio.Clip{SampleRate: 16000, Channels: 3})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported channel count")
	})

	t.Run("nil writer", func(t *testing.T) {
		t.Parallel()

		err := audio.EncodeMP3(nil, audio.Clip{SampleRate: 16000, Channels: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output writer cannot be nil")
	})
}

func TestSketch(t *testing.T) {
	t.Parallel()

	plain := audio.Sketch("decreasing", false, false)
	chimed := audio.Sketch("decreasing", true, true)

	assert.Equal(t, audio.DefaultSampleRate, plain.SampleRate)
	assert.Equal(t, 3*time.Second, plain.Duration())
	assert.Len(t, chimed.Samples, len(plain.Samples))
	assert.NotEqual(t, plain.Samples, chimed.Samples, "chimes should alter the sketch")
}

func TestMix_Clips(t *testing.T) {
	t.Parallel()

	dst := []int16{32000, 1, 2}
	audio.Mix(dst, []int16{1000, 1, 1, 1}, 0)
	assert.Equal(t, []int16{32767, 2, 3}, dst)

	audio.Mix(dst, []int16{5}, -1)
	assert.Equal(t, []int16{32767, 2, 3}, dst)
}
