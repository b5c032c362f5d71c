package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alkime/sonify/internal/audio"
	"github.com/alkime/sonify/internal/logger"
	"github.com/alkime/sonify/internal/playback"
	"github.com/alkime/sonify/internal/tui"
	"github.com/alkime/sonify/internal/tutor"
	"github.com/alkime/sonify/internal/voice"
	"github.com/alkime/sonify/internal/workdir"
	tea "github.com/charmbracelet/bubbletea"
)

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	Dir string `arg:"" optional:"" type:"existingdir" help:"Directory to browse for graph images (default: current directory)"`
}

// Run executes the TUI command.
func (c *TUICmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	if err := workdir.Prep(); err != nil {
		return fmt.Errorf("failed to prepare working directory: %w", err)
	}

	// stdout belongs to the TUI from here on
	logPath, err := workdir.FilePath(workdir.LogFile)
	if err != nil {
		return err
	}
	//nolint:gosec // Log file needs to be readable
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.SetupText(logFile, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, wf, err := newWorkflow(cfg)
	if err != nil {
		return err
	}
	defer wf.Close()

	sp, err := startSpeech(ctx, cfg)
	if err != nil {
		return err
	}
	defer sp.Close()

	dir := c.Dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	m, err := tui.New(ctx, tui.Config{
		Workflow:  wf,
		Uploader:  client,
		Voice:     sp.Service,
		Library:   playback.NewLibrary(client),
		Player:    audio.NewPlayer(nil),
		Explainer: tutor.New(cfg.AnthropicAPIKey),
		StartDir:  dir,
		Cancel:    cancel,
	})
	if err != nil {
		return fmt.Errorf("failed to build TUI: %w", err)
	}

	if sp.Enabled() {
		sp.Speak(voice.EnabledMessage+" Choose a graph image and press enter.", false)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	fmt.Println("\nfinished. bye!")

	return nil
}
