package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/alkime/sonify/internal/audio"
	"github.com/alkime/sonify/internal/backend"
	"github.com/alkime/sonify/internal/playback"
	"github.com/alkime/sonify/internal/session"
	"github.com/alkime/sonify/internal/tutor"
	"github.com/alkime/sonify/internal/workdir"
)

// speechDrainTimeout bounds how long a headless run waits for narration.
const speechDrainTimeout = 30 * time.Second

// UploadCmd sonifies one image without the TUI.
type UploadCmd struct {
	Image   string `arg:"" type:"existingfile" help:"Graph image (PNG or JPEG)"`
	Play    bool   `flag:"" help:"Play the sonified audio when it is ready"`
	Save    string `flag:"" optional:"" type:"path" help:"Export the audio as MP3 to this path"`
	Explain bool   `flag:"" help:"Explain the result in plain words"`
}

// Run executes the upload command.
func (c *UploadCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, err := backend.LoadImage(c.Image)
	if err != nil {
		return err
	}

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
	defer drainSpeech(sp)

	fmt.Printf("Uploading %s to %s\n", img.Name, client.BaseURL())

	snap := session.Process(ctx, wf, client, img, sp.Dispatch)
	if snap.State == session.StateFailed {
		return fmt.Errorf("%s %w", session.MsgUploadFailed, snap.Err)
	}

	printResult(snap)

	if c.Explain && snap.Result != nil {
		text, err := tutor.New(cfg.AnthropicAPIKey).Explain(ctx, *snap.Result)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", text)
		sp.Speak(text, false)
	}

	if c.Save == "" && !c.Play {
		return nil
	}

	if err := workdir.Prep(); err != nil {
		return fmt.Errorf("failed to prepare working directory: %w", err)
	}
	lib := playback.NewLibrary(client)

	if c.Save != "" {
		if err := lib.Export(ctx, snap.UploadID, snap.Audio, c.Save); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", c.Save)
	}

	if c.Play {
		return playAudio(ctx, lib, sp, snap)
	}

	return nil
}

func playAudio(ctx context.Context, lib *playback.Library, sp *speech, snap session.Snapshot) error {
	ref := snap.Audio
	clip, err := lib.Load(ctx, snap.UploadID, ref)
	if err != nil {
		return err
	}

	// let the summary finish before the graph starts
	drainSpeech(sp)
	sp.Speak(session.MsgPlaybackStart, true)
	drainSpeech(sp)

	fmt.Printf("Playing %s (%s)\n", ref, clip.Duration().Round(time.Millisecond))

	err = audio.NewPlayer(nil).Play(ctx, clip)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func drainSpeech(sp *speech) {
	ctx, cancel := context.WithTimeout(context.Background(), speechDrainTimeout)
	defer cancel()

	_ = sp.Wait(ctx)
}

func printResult(snap session.Snapshot) {
	fmt.Println()
	if snap.Result == nil {
		fmt.Println("No analysis was returned for this image.")
	} else {
		r := snap.Result
		fmt.Printf("Graph type:  %s\n", orNone(analysis.Humanize(r.GraphType)))
		fmt.Printf("Trend:       %s\n", orNone(r.Trend))
		fmt.Printf("X-intercept: %s\n", r.XIntercept)
		fmt.Printf("Y-intercept: %s\n", r.YIntercept)
	}
	fmt.Printf("Audio:       %s\n", snap.Audio)
}

func orNone(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
