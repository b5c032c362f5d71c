package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/sonify/internal/audio"
)

// DevicesCmd lists available audio playback devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run(g *Globals) error {
	if _, err := g.load(); err != nil {
		return err
	}

	slog.Info("Enumerating playback devices...")

	devices, err := audio.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}
