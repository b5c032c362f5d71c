package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// EncodeMP3 writes clip to w as MP3.
func EncodeMP3(w io.Writer, clip Clip) error {
	if w == nil {
		return errors.New("output writer cannot be nil")
	}

	if err := clip.Validate(); err != nil {
		return fmt.Errorf("invalid clip: %w", err)
	}

	samples := clip.Samples

	// WORKAROUND: shine-mp3 Write() has a bug for mono (always increments by samples_per_pass * 2)
	// Convert mono to stereo by duplicating samples (L=R)
	if clip.Channels == 1 {
		samples = make([]int16, len(clip.Samples)*2)
		for i, sample := range clip.Samples {
			samples[i*2] = sample   // Left channel
			samples[i*2+1] = sample // Right channel (duplicate)
		}
	}

	slog.Debug("encoding MP3",
		"frames", clip.Frames(),
		"sampleRate", clip.SampleRate,
		"channels", clip.Channels)

	encoder := mp3encoder.NewEncoder(clip.SampleRate, 2)
	if err := encoder.Write(w, samples); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	return nil
}
