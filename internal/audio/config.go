package audio

import (
	"github.com/gen2brain/malgo"
)

// DefaultSampleRate is used for synthesized clips.
const DefaultSampleRate = 22050

type DeviceConfig struct {
	Format     malgo.FormatType
	Channels   int
	SampleRate int
}

// ConfigFor returns a signed 16-bit playback config matching clip.
func ConfigFor(clip Clip) *DeviceConfig {
	return &DeviceConfig{
		Format:     malgo.FormatS16,
		Channels:   clip.Channels,
		SampleRate: clip.SampleRate,
	}
}
