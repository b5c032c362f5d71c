package voice

import (
	"errors"
	"fmt"
	"log/slog"
)

// Engine kinds accepted by NewEngine.
const (
	KindAuto   = "auto"
	KindEspeak = "espeak"
	KindOpenAI = "openai"
	KindNone   = "none"
)

// EngineConfig selects and configures a speech engine.
type EngineConfig struct {
	Kind        string
	EspeakPath  string
	OpenAIKey   string
	OpenAIVoice string
	// Speaker plays OpenAI speech. Required for the openai engine.
	Speaker Speaker
}

// NewEngine builds the configured engine. "auto" prefers a local espeak-ng,
// then OpenAI when a key is present; it returns a nil engine when neither is
// available so the service degrades to silence. Explicit kinds fail instead.
func NewEngine(cfg EngineConfig) (Engine, error) {
	switch cfg.Kind {
	case KindNone:
		return nil, nil

	case KindEspeak:
		path, err := FindEspeak(cfg.EspeakPath)
		if err != nil {
			return nil, err
		}
		return NewEspeak(path), nil

	case KindOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("openai engine needs an API key: %w", ErrEngineUnavailable)
		}
		if cfg.Speaker == nil {
			return nil, errors.New("openai engine needs an audio speaker")
		}
		return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIVoice, cfg.Speaker), nil

	case KindAuto, "":
		if path, err := FindEspeak(cfg.EspeakPath); err == nil {
			slog.Debug("using espeak-ng speech engine", "path", path)
			return NewEspeak(path), nil
		}

		if cfg.OpenAIKey != "" && cfg.Speaker != nil {
			slog.Debug("using OpenAI speech engine", "voice", cfg.OpenAIVoice)
			return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIVoice, cfg.Speaker), nil
		}

		slog.Info("no speech engine available, voice guidance will be silent")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown voice engine %q", cfg.Kind)
	}
}

// Close releases an engine's worker, if it has one.
func Close(e Engine) {
	if c, ok := e.(interface{ Close() }); ok {
		c.Close()
	}
}
