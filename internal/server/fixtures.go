package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alkime/sonify/internal/audio"
	"github.com/tidwall/gjson"
)

// DefaultFixture is used for images without their own fixture files.
const DefaultFixture = "default"

// knownTrends are recognized in file names when no fixture exists.
var knownTrends = []string{"concave_up", "concave_down", "increasing", "decreasing"}

// Fixtures resolves canned analysis records and audio for uploaded images.
//
// For an image "line.png" it looks for line.json and line.wav, then
// default.json and default.wav. The JSON file holds the "analysis" value
// verbatim, so malformed records can be served on purpose. Missing audio is
// synthesized from the trend.
type Fixtures struct {
	dir string
}

func NewFixtures(dir string) *Fixtures {
	return &Fixtures{dir: dir}
}

// Analysis returns the raw analysis JSON for an image stem.
func (f *Fixtures) Analysis(stem string) ([]byte, error) {
	for _, name := range []string{stem, DefaultFixture} {
		data, err := os.ReadFile(filepath.Join(f.dir, name+".json"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
		}

		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("fixture %s.json is not valid JSON", name)
		}

		return data, nil
	}

	return GuessAnalysis(stem), nil
}

// WriteAudio places the audio for stem at dest, copying a fixture WAV when
// one exists and synthesizing one otherwise.
func (f *Fixtures) WriteAudio(stem string, analysis []byte, dest string) error {
	for _, name := range []string{stem, DefaultFixture} {
		data, err := os.ReadFile(filepath.Join(f.dir, name+".wav"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read fixture audio %s: %w", name, err)
		}

		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("failed to write audio %s: %w", dest, err)
		}
		return nil
	}

	parsed := gjson.ParseBytes(analysis)
	clip := audio.Sketch(
		parsed.Get("trend").String(),
		present(parsed.Get("x_intercept")),
		present(parsed.Get("y_intercept")),
	)

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create audio %s: %w", dest, err)
	}

	if err := audio.EncodeWAV(out, clip); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}

// GuessAnalysis derives a plausible record from the file name alone: a
// trend keyword if present, and "square" graphs for names containing "_s".
func GuessAnalysis(stem string) []byte {
	lower := strings.ToLower(stem)

	graphType := "linear"
	trend := "increasing"
	if strings.Contains(lower, "_s") {
		graphType = "square"
		trend = "concave_up"
	}

	for _, t := range knownTrends {
		if strings.Contains(lower, t) {
			trend = t
			break
		}
	}

	return []byte(fmt.Sprintf(
		`{"graph_type":%q,"trend":%q,"x_intercept":null,"y_intercept":[0,0]}`,
		graphType, trend))
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
