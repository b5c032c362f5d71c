package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alkime/sonify/internal/voice"
)

// SayCmd speaks text, mainly to check the voice setup.
type SayCmd struct {
	Text []string `arg:"" help:"Text to speak"`
}

// Run executes the say command.
func (c *SayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sp, err := startSpeech(ctx, cfg)
	if err != nil {
		return err
	}
	defer sp.Close()

	if sp.engine == nil {
		return fmt.Errorf("no speech engine available: %w", voice.ErrEngineUnavailable)
	}

	sp.Speak(strings.Join(c.Text, " "), false)
	drainSpeech(sp)

	return nil
}

// VoicesCmd lists the voices the configured engine offers.
type VoicesCmd struct{}

// Run executes the voices command.
func (c *VoicesCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sp, err := startSpeech(ctx, cfg)
	if err != nil {
		return err
	}
	defer sp.Close()

	if sp.engine == nil {
		return fmt.Errorf("no speech engine available: %w", voice.ErrEngineUnavailable)
	}

	voices, err := sp.engine.Voices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}

	selected := waitForVoice(ctx, sp.Service, cfg.VoicePoll)

	for _, v := range voices {
		marker := " "
		if v.ID == selected.ID {
			marker = "*"
		}
		fmt.Printf("%s %-24s %-8s %s\n", marker, v.ID, v.Lang, v.Name)
	}

	return nil
}

func waitForVoice(ctx context.Context, svc *voice.Service, poll time.Duration) voice.Voice {
	ticker := time.NewTicker(max(poll/2, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		if v, ok := svc.Voice(); ok {
			return v
		}

		select {
		case <-ctx.Done():
			return voice.Voice{}
		case <-ticker.C:
		}
	}
}
