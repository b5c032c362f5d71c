package workflow

import (
	"context"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/alkime/sonify/internal/audio"
	"github.com/alkime/sonify/internal/session"
)

// SnapshotFunc reports the current workflow state.
type SnapshotFunc func() session.Snapshot

// AudioLibrary loads and exports sonified audio.
type AudioLibrary interface {
	Load(ctx context.Context, upload uint64, ref analysis.AudioReference) (audio.Clip, error)
	Export(ctx context.Context, upload uint64, ref analysis.AudioReference, dest string) error
}

// Player plays clips and exposes what it is playing for the meters.
type Player interface {
	Start(ctx context.Context, clip audio.Clip) error
	Stop(ctx context.Context) error
	IsPlaying() bool
	Progress() float64
	ReadSamples(n int) []int16
}
