// Package workdir manages the client's working directory: downloaded audio,
// exports and the TUI log.
package workdir

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// HomeEnv overrides the working directory location.
const HomeEnv = "SONIFY_HOME"

// LogFile receives logs while the TUI owns the terminal.
const LogFile = "sonify.log"

// Root returns the base directory for all working files: HomeEnv when set,
// otherwise ~/.sonify.
func Root() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".sonify"), nil
}

// DownloadsPath is where fetched audio is cached.
func DownloadsPath() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "downloads"), nil
}

// DownloadPattern returns the cache directory and an os.CreateTemp pattern
// for the audio of one upload. The pattern keeps the last path segment of the
// URL so cached files stay recognizable.
func DownloadPattern(audioURL string, upload uint64) (dir, pattern string, err error) {
	u, err := url.Parse(audioURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid audio url %q: %w", audioURL, err)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || strings.Contains(name, "..") {
		return "", "", fmt.Errorf("audio url %q has no file name", audioURL)
	}

	dir, err = DownloadsPath()
	if err != nil {
		return "", "", err
	}
	return dir, fmt.Sprintf("%d-*-%s", upload, name), nil
}

// FilePath returns the full path for a file directly under the root.
func FilePath(filename string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filename), nil
}

// Prep ensures that the working directories exist.
func Prep() error {
	dir, err := DownloadsPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create working directory %s: %w", dir, err)
	}

	return nil
}
