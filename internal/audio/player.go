package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// levelBufferSize holds about one second of levels at common rates.
const levelBufferSize = 48000

// Player plays one clip at a time on a freshly allocated device and keeps
// recent samples for level meters.
type Player struct {
	newDevice DeviceFactory
	levels    *SampleRingBuffer

	mu      sync.Mutex
	current *playback
}

// playback is the state of one clip on one device.
type playback struct {
	pcm      []byte
	channels int
	levels   *SampleRingBuffer

	mu  sync.Mutex
	pos int

	finished   chan struct{}
	finishOnce sync.Once
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{}
}

// NewPlayer creates a player. A nil factory uses the system's default
// playback device.
func NewPlayer(newDevice DeviceFactory) *Player {
	if newDevice == nil {
		newDevice = NewDevice
	}

	return &Player{
		newDevice: newDevice,
		levels:    NewSampleRingBuffer(levelBufferSize),
	}
}

// Start begins playing clip and returns immediately. Anything already
// playing is stopped first.
func (p *Player) Start(ctx context.Context, clip Clip) error {
	if err := clip.Validate(); err != nil {
		return fmt.Errorf("invalid clip: %w", err)
	}

	if err := p.Stop(ctx); err != nil {
		return err
	}

	pb := &playback{
		pcm:      Int16ToBytes(clip.Samples),
		channels: clip.Channels,
		levels:   p.levels,
		finished: make(chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	dev := p.newDevice(ConfigFor(clip))
	if err := dev.Playback(ctx, pb.fill); err != nil {
		return fmt.Errorf("failed to prepare playback: %w", err)
	}

	if err := dev.Start(ctx); err != nil {
		dev.Dealloc(ctx)
		return fmt.Errorf("failed to start playback: %w", err)
	}

	p.mu.Lock()
	p.current = pb
	p.mu.Unlock()

	slog.Debug("playback started", "duration", clip.Duration(), "channels", clip.Channels)

	go p.watch(ctx, dev, pb)

	return nil
}

// Play plays clip to the end, or until ctx is done or Stop is called.
func (p *Player) Play(ctx context.Context, clip Clip) error {
	if err := p.Start(ctx, clip); err != nil {
		return err
	}

	p.mu.Lock()
	pb := p.current
	p.mu.Unlock()

	<-pb.done

	return ctx.Err()
}

// Stop halts playback and waits for the device to be released. It is safe
// to call when nothing is playing.
func (p *Player) Stop(ctx context.Context) error {
	p.mu.Lock()
	pb := p.current
	p.mu.Unlock()

	if pb == nil {
		return nil
	}

	pb.stopOnce.Do(func() { close(pb.stop) })

	select {
	case <-pb.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for playback to stop: %w", ctx.Err())
	}
}

// IsPlaying reports whether a clip is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	pb := p.current
	p.mu.Unlock()

	if pb == nil {
		return false
	}

	select {
	case <-pb.done:
		return false
	default:
		return true
	}
}

// Progress returns the played fraction of the current clip in [0,1].
func (p *Player) Progress() float64 {
	p.mu.Lock()
	pb := p.current
	p.mu.Unlock()

	if pb == nil || len(pb.pcm) == 0 {
		return 0
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()

	return float64(pb.pos) / float64(len(pb.pcm))
}

// ReadSamples returns up to n of the most recently played mono samples.
func (p *Player) ReadSamples(n int) []int16 {
	return p.levels.ReadSamples(n)
}

func (p *Player) watch(ctx context.Context, dev Device, pb *playback) {
	defer close(pb.done)

	select {
	case <-pb.finished:
	case <-pb.stop:
	case <-ctx.Done():
	}

	if err := dev.Stop(context.Background()); err != nil {
		slog.Error("failed to stop playback device", "error", err)
	}
	dev.Dealloc(context.Background())

	slog.Debug("playback ended")
}

func (pb *playback) fill(out []byte) {
	pb.mu.Lock()
	n := copy(out, pb.pcm[pb.pos:])
	pb.pos += n
	ended := pb.pos >= len(pb.pcm)
	pb.mu.Unlock()

	clear(out[n:])

	if n > 0 {
		clip := Clip{Samples: BytesToInt16(out[:n]), Channels: pb.channels}
		pb.levels.Write(clip.Mono())
	}

	if ended {
		pb.finishOnce.Do(func() { close(pb.finished) })
	}
}
