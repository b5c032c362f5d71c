// Command sonify turns images of graphs into sound, with spoken guidance.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/alkime/sonify/internal/logger"
)

// CLI defines the sonify command structure.
type CLI struct {
	Globals

	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Pick and sonify graph images interactively"`

	// Subcommands
	Upload  UploadCmd  `cmd:"" help:"Sonify one image and print the analysis"`
	Learn   LearnCmd   `cmd:"" help:"Hear what each kind of graph sounds like"`
	Say     SayCmd     `cmd:"" help:"Speak text through the configured voice engine"`
	Voices  VoicesCmd  `cmd:"" help:"List the voices of the configured engine"`
	Devices DevicesCmd `cmd:"" help:"List available audio playback devices"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration"`
}

func main() {
	// Text logger for CLI output; the TUI command redirects it to a file.
	logger.SetupText(os.Stdout, "info")

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("sonify"),
		kong.Description("Voice-guided graph sonification."),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
