package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alkime/sonify/internal/audio"
	"github.com/alkime/sonify/internal/tutor"
	"github.com/alkime/sonify/pkg/collections"
)

// LearnCmd plays the built-in lessons.
type LearnCmd struct {
	Trend   string `arg:"" optional:"" help:"Only this trend (e.g. increasing, decreasing, constant)"`
	NoSound bool   `flag:"" help:"Print and speak the lessons without example audio"`
}

// Run executes the learn command.
func (c *LearnCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lessons := tutor.Lessons()
	if c.Trend != "" {
		l, ok := tutor.LessonFor(c.Trend)
		if !ok {
			trends := collections.Apply(lessons, func(l tutor.Lesson) string { return l.Trend })
			return fmt.Errorf("no lesson for trend %q, try one of: %s", c.Trend, strings.Join(trends, ", "))
		}
		lessons = []tutor.Lesson{l}
	}

	sp, err := startSpeech(ctx, cfg)
	if err != nil {
		return err
	}
	defer sp.Close()

	player := audio.NewPlayer(nil)

	for _, l := range append(lessons, tutor.Lesson{Title: "Axis crossings", Text: tutor.InterceptLesson}) {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Printf("%s\n  %s\n\n", l.Title, l.Text)
		sp.Speak(l.Spoken(), true)
		drainSpeech(sp)

		if c.NoSound || l.Trend == "" {
			continue
		}

		if err := player.Play(ctx, l.Example()); err != nil && ctx.Err() == nil {
			return fmt.Errorf("failed to play example: %w", err)
		}
	}

	return nil
}
