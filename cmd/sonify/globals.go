package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alkime/sonify/internal/audio"
	"github.com/alkime/sonify/internal/backend"
	"github.com/alkime/sonify/internal/config"
	"github.com/alkime/sonify/internal/keyring"
	"github.com/alkime/sonify/internal/logger"
	"github.com/alkime/sonify/internal/session"
	"github.com/alkime/sonify/internal/voice"
)

// Globals are flags shared by all commands. Set flags override the
// environment.
type Globals struct {
	Backend     string `flag:"" optional:"" help:"Sonification service URL (default: SONIFY_BACKEND_URL)"`
	VoiceEngine string `flag:"" optional:"" help:"Speech engine: auto, espeak, openai or none (default: SONIFY_VOICE_ENGINE)"`
	Mute        bool   `flag:"" help:"Start with voice guidance off"`
	LogLevel    string `flag:"" optional:"" help:"Log level: debug, info, warn or error (default: LOG_LEVEL)"`
}

// load reads the client configuration, applies flags and resolves API keys
// from the keychain.
func (g *Globals) load() (*config.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if g.Backend != "" {
		cfg.BackendURL = g.Backend
	}
	if g.VoiceEngine != "" {
		cfg.VoiceEngine = g.VoiceEngine
	}
	if g.Mute {
		cfg.VoiceEnabled = false
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}

	cfg.OpenAIAPIKey = keyring.Resolve(keyring.OpenAI, cfg.OpenAIAPIKey)
	cfg.AnthropicAPIKey = keyring.Resolve(keyring.Anthropic, cfg.AnthropicAPIKey)

	logger.SetupText(os.Stdout, cfg.LogLevel)

	return cfg, nil
}

// speech is a running voice service and the engine behind it.
type speech struct {
	*voice.Service
	engine voice.Engine
	player *audio.Player
}

// startSpeech builds the configured engine and a service around it.
// Synthesized speech gets its own player so it never cuts off graph audio.
func startSpeech(ctx context.Context, cfg *config.Client) (*speech, error) {
	player := audio.NewPlayer(nil)

	engine, err := voice.NewEngine(voice.EngineConfig{
		Kind:        cfg.VoiceEngine,
		EspeakPath:  cfg.EspeakPath,
		OpenAIKey:   cfg.OpenAIAPIKey,
		OpenAIVoice: cfg.OpenAIVoice,
		Speaker:     player,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up voice engine: %w", err)
	}

	svc := voice.New(engine,
		voice.WithEnabled(cfg.VoiceEnabled),
		voice.WithPollInterval(cfg.VoicePoll),
		voice.WithProsody(cfg.VoiceRate, cfg.VoicePitch, cfg.VoiceVolume),
	)
	svc.Start(ctx)

	return &speech{Service: svc, engine: engine, player: player}, nil
}

// Close silences and releases the engine.
func (s *speech) Close() {
	s.Stop()
	voice.Close(s.engine)
	_ = s.player.Stop(context.Background())
}

// Dispatch speaks a workflow notice.
func (s *speech) Dispatch(n session.Notice) {
	s.Speak(n.Text, n.Interrupt)
}

func newWorkflow(cfg *config.Client) (*backend.Client, *session.Workflow, error) {
	client, err := backend.NewClient(cfg.BackendURL)
	if err != nil {
		return nil, nil, err
	}

	return client, session.New(client.AudioURL, session.WithUploadTimeout(cfg.UploadTimeout)), nil
}
