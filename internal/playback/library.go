// Package playback fetches sonified audio on demand, caches it in the work
// directory and turns it into playable clips.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/alkime/sonify/internal/audio"
	"github.com/alkime/sonify/internal/workdir"
)

// Downloader retrieves the bytes behind an audio reference.
type Downloader interface {
	Download(ctx context.Context, ref analysis.AudioReference) ([]byte, error)
}

// Library loads the audio of completed uploads. Each upload's audio is
// downloaded at most once per Library and never served to another upload,
// even when the backend reuses the file name.
type Library struct {
	downloader Downloader

	mu     sync.Mutex
	cached map[cacheKey]string
}

type cacheKey struct {
	upload uint64
	ref    analysis.AudioReference
}

func NewLibrary(d Downloader) *Library {
	return &Library{downloader: d, cached: make(map[cacheKey]string)}
}

// Fetch returns the local path of the audio ref produced by upload,
// downloading it on first use. Files cached for earlier uploads are removed.
func (l *Library) Fetch(ctx context.Context, upload uint64, ref analysis.AudioReference) (string, error) {
	if ref.IsZero() {
		return "", errors.New("no audio to fetch")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := cacheKey{upload: upload, ref: ref}
	if path, ok := l.cached[key]; ok {
		slog.Debug("audio cache hit", "path", path, "upload", upload)
		return path, nil
	}

	dir, pattern, err := workdir.DownloadPattern(ref.String(), upload)
	if err != nil {
		return "", err
	}

	data, err := l.downloader.Download(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to download audio: %w", err)
	}

	if err := workdir.Prep(); err != nil {
		return "", err
	}

	path, err := writeUnique(dir, pattern, data)
	if err != nil {
		return "", err
	}

	l.evictBefore(upload)
	l.cached[key] = path

	slog.Info("audio downloaded", "path", path, "upload", upload, "bytes", len(data))

	return path, nil
}

// evictBefore drops the files of uploads older than upload. Callers hold mu.
func (l *Library) evictBefore(upload uint64) {
	for key, path := range l.cached {
		if key.upload >= upload {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove cached audio", "path", path, "error", err)
		}
		delete(l.cached, key)
	}
}

func writeUnique(dir, pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to cache audio: %w", err)
	}

	path := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to cache audio %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to cache audio %s: %w", path, err)
	}

	return path, nil
}

// Load fetches the audio of upload and decodes it.
func (l *Library) Load(ctx context.Context, upload uint64, ref analysis.AudioReference) (audio.Clip, error) {
	path, err := l.Fetch(ctx, upload, ref)
	if err != nil {
		return audio.Clip{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to open audio %s: %w", path, err)
	}
	defer f.Close()

	clip, err := audio.DecodeWAV(f)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return clip, nil
}

// Export writes the audio of upload as an MP3 file at dest, creating parent
// directories.
func (l *Library) Export(ctx context.Context, upload uint64, ref analysis.AudioReference, dest string) error {
	clip, err := l.Load(ctx, upload, ref)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if err := audio.EncodeMP3(f, clip); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}

	slog.Info("audio exported", "path", dest)

	return nil
}
