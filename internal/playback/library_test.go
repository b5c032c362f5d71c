package playback_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/alkime/sonify/internal/audio"
	"github.com/alkime/sonify/internal/playback"
	"github.com/alkime/sonify/internal/workdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDownloader serves bodies in order, repeating the last one.
type fakeDownloader struct {
	bodies [][]byte
	err    error
	calls  int
}

func (f *fakeDownloader) Download(context.Context, analysis.AudioReference) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bodies[min(f.calls, len(f.bodies))-1], nil
}

func sketchWAV(t *testing.T, trend string) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sketch.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, audio.EncodeWAV(f, audio.Sketch(trend, false, true)))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

const ref = analysis.AudioReference("http://localhost:8000/download/sonified_line.wav")

func TestLibrary_FetchCachesPerUpload(t *testing.T) {
	home := t.TempDir()
	t.Setenv(workdir.HomeEnv, home)

	dl := &fakeDownloader{bodies: [][]byte{[]byte("first"), []byte("second")}}
	lib := playback.NewLibrary(dl)

	first, err := lib.Fetch(context.Background(), 1, ref)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "downloads"), filepath.Dir(first))
	assert.Contains(t, filepath.Base(first), "sonified_line.wav")

	again, err := lib.Fetch(context.Background(), 1, ref)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, dl.calls)

	// The backend reuses the file name for a new upload of the same graph.
	second, err := lib.Fetch(context.Background(), 2, ref)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, dl.calls)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	_, err = os.Stat(first)
	assert.ErrorIs(t, err, os.ErrNotExist, "audio of the earlier upload should be dropped")
}

func TestLibrary_IgnoresFilesFromEarlierRuns(t *testing.T) {
	home := t.TempDir()
	t.Setenv(workdir.HomeEnv, home)

	stale, err := playback.NewLibrary(&fakeDownloader{bodies: [][]byte{[]byte("old run")}}).
		Fetch(context.Background(), 1, ref)
	require.NoError(t, err)

	path, err := playback.NewLibrary(&fakeDownloader{bodies: [][]byte{[]byte("new run")}}).
		Fetch(context.Background(), 1, ref)
	require.NoError(t, err)
	assert.NotEqual(t, stale, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new run", string(data))
}

func TestLibrary_LoadServesLatestUpload(t *testing.T) {
	t.Setenv(workdir.HomeEnv, t.TempDir())

	increasing, decreasing := sketchWAV(t, "increasing"), sketchWAV(t, "decreasing")
	lib := playback.NewLibrary(&fakeDownloader{bodies: [][]byte{increasing, decreasing}})

	firstClip, err := lib.Load(context.Background(), 1, ref)
	require.NoError(t, err)

	secondClip, err := lib.Load(context.Background(), 2, ref)
	require.NoError(t, err)

	want, err := audio.DecodeWAV(bytes.NewReader(decreasing))
	require.NoError(t, err)
	assert.Equal(t, want.Samples, secondClip.Samples)
	assert.NotEqual(t, firstClip.Samples, secondClip.Samples)
}

func TestLibrary_FetchErrors(t *testing.T) {
	t.Setenv(workdir.HomeEnv, t.TempDir())

	lib := playback.NewLibrary(&fakeDownloader{err: errors.New("404")})

	_, err := lib.Fetch(context.Background(), 1, "")
	require.Error(t, err)

	_, err = lib.Fetch(context.Background(), 1, ref)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download audio")
}

func TestLibrary_LoadAndExport(t *testing.T) {
	home := t.TempDir()
	t.Setenv(workdir.HomeEnv, home)

	lib := playback.NewLibrary(&fakeDownloader{bodies: [][]byte{sketchWAV(t, "increasing")}})

	clip, err := lib.Load(context.Background(), 1, ref)
	require.NoError(t, err)
	assert.Equal(t, audio.DefaultSampleRate, clip.SampleRate)

	dest := filepath.Join(home, "exports", "line.mp3")
	require.NoError(t, lib.Export(context.Background(), 1, ref, dest))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	head := make([]byte, 2)
	_, err = io.ReadFull(f, head)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(head, []byte("RI")), "export should not be a WAV copy")
}
