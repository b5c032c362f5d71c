package voice

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alkime/sonify/pkg/collections"
)

// Defaults for prosody and voice discovery.
const (
	DefaultRate         = 1.0
	DefaultPitch        = 1.0
	DefaultVolume       = 0.8
	DefaultPollInterval = 200 * time.Millisecond
)

const waitInterval = 50 * time.Millisecond

// EnabledMessage is spoken whenever guidance is switched on.
const EnabledMessage = "Voice guidance enabled."

// Service speaks notices through an engine when enabled. Create one per
// user; instances share nothing.
type Service struct {
	engine Engine
	poll   time.Duration

	mu      sync.Mutex
	enabled bool
	voice   Voice
	picked  bool
	rate    float64
	pitch   float64
	volume  float64
	last    string
}

// Option configures a Service.
type Option func(*Service)

// WithEnabled sets the initial guidance state. Services start enabled.
func WithEnabled(enabled bool) Option {
	return func(s *Service) {
		s.enabled = enabled
	}
}

// WithPollInterval sets how often Start asks the engine for voices.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithProsody sets rate, pitch and volume, clamped to their valid ranges.
func WithProsody(rate, pitch, volume float64) Option {
	return func(s *Service) {
		s.rate = clampRate(rate)
		s.pitch = clampPitch(pitch)
		s.volume = clampVolume(volume)
	}
}

// New creates a service around engine, which may be nil.
func New(engine Engine, opts ...Option) *Service {
	s := &Service{
		engine:  engine,
		poll:    DefaultPollInterval,
		enabled: true,
		rate:    DefaultRate,
		pitch:   DefaultPitch,
		volume:  DefaultVolume,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start discovers voices in the background until one is found or ctx ends.
func (s *Service) Start(ctx context.Context) {
	if s.engine == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()

		for {
			if s.pickVoice(ctx) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// pickVoice prefers the first English voice and falls back to the first
// voice offered.
func (s *Service) pickVoice(ctx context.Context) bool {
	voices, err := s.engine.Voices(ctx)
	if err != nil {
		slog.Debug("voice list unavailable", "error", err)
		return false
	}

	if len(voices) == 0 {
		return false
	}

	v, _ := collections.FindOrFirst(voices, func(v Voice) bool {
		return strings.Contains(strings.ToLower(v.Lang), "en")
	})

	s.mu.Lock()
	s.voice = v
	s.picked = true
	s.mu.Unlock()

	slog.Debug("voice selected", "name", v.Name, "lang", v.Lang)

	return true
}

// Voice returns the selected voice, if discovery has finished.
func (s *Service) Voice() (Voice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.voice, s.picked
}

// Speak says text when guidance is enabled. With interrupt set, anything
// being spoken is cancelled first; otherwise text queues behind it.
func (s *Service) Speak(text string, interrupt bool) {
	if text == "" {
		return
	}

	s.mu.Lock()
	s.last = text
	enabled := s.enabled
	s.mu.Unlock()

	if !enabled {
		return
	}

	s.say(text, interrupt)
}

// Stop cancels any speech in progress. It does not change the enabled flag.
func (s *Service) Stop() {
	if s.engine == nil {
		return
	}

	if err := s.engine.Cancel(); err != nil {
		slog.Debug("speech cancel failed", "error", err)
	}
}

// Toggle flips guidance and returns the new state, announcing it when
// switched on.
func (s *Service) Toggle() bool {
	s.mu.Lock()
	s.enabled = !s.enabled
	enabled := s.enabled
	s.mu.Unlock()

	if enabled {
		s.say(EnabledMessage, false)
	} else {
		s.Stop()
	}

	return enabled
}

// Disable turns guidance off and silences any speech.
func (s *Service) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()

	s.Stop()
}

// Enabled reports whether guidance is on.
func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled
}

// Last returns the most recent instruction passed to Speak.
func (s *Service) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

// Repeat speaks the last instruction again, interrupting current speech.
// It reports whether there was anything to repeat.
func (s *Service) Repeat() bool {
	last := s.Last()
	if last == "" {
		return false
	}

	s.Speak(last, true)

	return true
}

// Wait blocks until the engine has spoken everything queued, or ctx ends.
// Engines that cannot report progress return immediately.
func (s *Service) Wait(ctx context.Context) error {
	idler, ok := s.engine.(interface{ Idle() bool })
	if !ok {
		return nil
	}

	ticker := time.NewTicker(waitInterval)
	defer ticker.Stop()

	for !idler.Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return nil
}

func (s *Service) SetRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = clampRate(rate)
}

func (s *Service) SetPitch(pitch float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitch = clampPitch(pitch)
}

func (s *Service) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = clampVolume(volume)
}

// Prosody returns the current rate, pitch and volume.
func (s *Service) Prosody() (rate, pitch, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rate, s.pitch, s.volume
}

func (s *Service) say(text string, interrupt bool) {
	if s.engine == nil {
		return
	}

	if interrupt {
		s.Stop()
	}

	s.mu.Lock()
	u := Utterance{
		Text:   text,
		Voice:  s.voice,
		Rate:   s.rate,
		Pitch:  s.pitch,
		Volume: s.volume,
	}
	s.mu.Unlock()

	if err := s.engine.Speak(context.Background(), u); err != nil {
		slog.Debug("speech failed", "error", err, "text", text)
	}
}

func clampRate(v float64) float64 {
	return clamp(v, 0.1, 10)
}

func clampPitch(v float64) float64 {
	return clamp(v, 0, 2)
}

func clampVolume(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
