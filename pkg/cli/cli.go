// Package cli provides the command-line interface for reel-publisher.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config.yaml (default: config.yaml or config.yml in the current directory)",
		EnvVars: []string{"REEL_PUBLISHER_CONFIG"},
	},
	&cli.StringFlag{
		Name:  "env-file",
		Usage: "Dotenv file holding EMAIL and PASSWORD",
		Value: ".env",
	},
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Directory for the report, log and screenshots",
	},
	&cli.BoolFlag{
		Name:  "flatten",
		Usage: "Write into --output directly instead of a timestamped subfolder",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Echo the log to stderr",
		EnvVars: []string{"REEL_PUBLISHER_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "Minimum log level (debug, info, warn, error)",
	},
	&cli.BoolFlag{
		Name:  "headless",
		Usage: "Run the browser without a window (overrides config and HEADLESS)",
	},
	&cli.BoolFlag{
		Name:  "install",
		Usage: "Download the playwright driver and Chromium if missing",
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "reel-publisher",
		Usage:   "Publish a short video through the Buffer composer",
		Version: Version,
		Description: `reel-publisher logs into Buffer once, keeps the session cookies,
and drives the post composer to upload a video with its caption.

Examples:
  reel-publisher login
  reel-publisher post
  reel-publisher --headless=false post --media videos/clip.mp4
  reel-publisher session show`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				colorsEnabled = false
			}
			return nil
		},
		Commands: []*cli.Command{
			loginCommand,
			postCommand,
			sessionCommand,
			validateCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
