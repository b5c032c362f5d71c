package audio

import (
	"errors"
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Clip is decoded audio: interleaved signed 16-bit samples.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Validate reports whether the clip can be played or encoded.
func (c Clip) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("unsupported channel count %d", c.Channels)
	}

	return nil
}

// Frames is the number of sample frames, one sample per channel each.
func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}

	return len(c.Samples) / c.Channels
}

func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}

	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Mono returns the first channel of every frame.
func (c Clip) Mono() []int16 {
	if c.Channels <= 1 {
		return c.Samples
	}

	out := make([]int16, c.Frames())
	for i := range out {
		out[i] = c.Samples[i*c.Channels]
	}

	return out
}

// DecodeWAV reads a PCM WAV stream into a clip, scaling any bit depth to 16.
func DecodeWAV(r io.ReadSeeker) (Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Clip{}, errors.New("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("failed to decode WAV: %w", err)
	}

	clip := Clip{
		Samples:    make([]int16, len(buf.Data)),
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}

	depth := int(dec.BitDepth)
	for i, v := range buf.Data {
		clip.Samples[i] = scaleTo16(v, depth)
	}

	if err := clip.Validate(); err != nil {
		return Clip{}, fmt.Errorf("unsupported WAV: %w", err)
	}

	return clip, nil
}

// EncodeWAV writes clip as a 16-bit PCM WAV file.
func EncodeWAV(w io.WriteSeeker, clip Clip) error {
	if err := clip.Validate(); err != nil {
		return fmt.Errorf("invalid clip: %w", err)
	}

	enc := wav.NewEncoder(w, clip.SampleRate, 16, clip.Channels, 1)

	data := make([]int, len(clip.Samples))
	for i, s := range clip.Samples {
		data[i] = int(s)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: clip.Channels, SampleRate: clip.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV samples: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}

	return nil
}

func scaleTo16(v, depth int) int16 {
	switch depth {
	case 8:
		// 8-bit WAV is unsigned.
		return int16((v - 128) << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	default:
		return int16(v)
	}
}
