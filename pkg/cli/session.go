package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/reel-publisher/pkg/session"
)

var sessionCommand = &cli.Command{
	Name:  "session",
	Usage: "Inspect or remove the saved session",
	Subcommands: []*cli.Command{
		{
			Name:   "show",
			Usage:  "Show the saved session",
			Action: runSessionShow,
		},
		{
			Name:   "clear",
			Usage:  "Delete the saved session so the next run logs in again",
			Action: runSessionClear,
		},
	},
}

func runSessionShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fatal("config", err)
	}

	path := cfg.SessionFile()
	s, err := session.NewFileStore(path).Load()
	if err != nil {
		return fatal("session", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Session file: %s\n", path)
	if s == nil {
		fmt.Fprintln(w, "No saved session")
		return nil
	}
	fmt.Fprintf(w, "Cookies:      %d\n", len(s.Cookies))
	fmt.Fprintf(w, "Domains:      %s\n", strings.Join(s.Domains(), ", "))
	if s.Origin != "" {
		fmt.Fprintf(w, "Origin:       %s\n", s.Origin)
	}
	if !s.SavedAt.IsZero() {
		fmt.Fprintf(w, "Saved:        %s\n", s.SavedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runSessionClear(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fatal("config", err)
	}

	path := cfg.SessionFile()
	if err := session.NewFileStore(path).Clear(); err != nil {
		return fatal("session", err)
	}
	fmt.Fprintf(c.App.Writer, "Removed %s\n", path)
	return nil
}
