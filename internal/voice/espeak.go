package voice

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// espeak-ng prosody baselines.
const (
	espeakBaseWPM   = 175
	espeakBasePitch = 50
	espeakBaseAmp   = 100
)

// ErrEngineUnavailable means the speech backend cannot be used here.
var ErrEngineUnavailable = errors.New("speech engine unavailable")

// Runner executes the speech binary with args and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// Espeak speaks through the espeak-ng command line synthesizer.
type Espeak struct {
	*Queue
	run Runner
}

// FindEspeak returns the path of espeak-ng (or espeak) on PATH, or the
// given path when it is set.
func FindEspeak(path string) (string, error) {
	if path != "" {
		return exec.LookPath(path)
	}

	for _, name := range []string{"espeak-ng", "espeak"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("espeak-ng not found on PATH: %w", ErrEngineUnavailable)
}

// NewEspeak creates an engine running the binary at path.
func NewEspeak(path string) *Espeak {
	return NewEspeakWithRunner(func(ctx context.Context, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, path, args...).Output()
	})
}

// NewEspeakWithRunner creates an engine around a custom runner.
func NewEspeakWithRunner(run Runner) *Espeak {
	e := &Espeak{run: run}
	e.Queue = NewQueue(func(ctx context.Context, u Utterance) error {
		if _, err := e.run(ctx, EspeakArgs(u)...); err != nil {
			return fmt.Errorf("espeak-ng failed: %w", err)
		}
		return nil
	}, DefaultQueueSize)

	return e
}

// Voices lists installed espeak-ng voices.
func (e *Espeak) Voices(ctx context.Context) ([]Voice, error) {
	out, err := e.run(ctx, "--voices")
	if err != nil {
		return nil, fmt.Errorf("failed to list espeak-ng voices: %w", err)
	}

	return ParseEspeakVoices(out), nil
}

// EspeakArgs maps an utterance onto espeak-ng flags.
func EspeakArgs(u Utterance) []string {
	wpm := int(math.Round(espeakBaseWPM * u.Rate))
	pitch := int(math.Round(espeakBasePitch * u.Pitch))
	amp := int(math.Round(espeakBaseAmp * u.Volume))

	args := []string{
		"-s", strconv.Itoa(max(80, min(450, wpm))),
		"-p", strconv.Itoa(max(0, min(99, pitch))),
		"-a", strconv.Itoa(max(0, min(200, amp))),
	}

	if u.Voice.ID != "" {
		args = append(args, "-v", u.Voice.ID)
	}

	// text may start with "-"
	return append(args, "--", u.Text)
}

// ParseEspeakVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func ParseEspeakVoices(out []byte) []Voice {
	var voices []Voice

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}

		voices = append(voices, Voice{
			ID:   fields[1],
			Lang: fields[1],
			Name: strings.ReplaceAll(fields[3], "_", " "),
		})
	}

	return voices
}
