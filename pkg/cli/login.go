package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/reel-publisher/pkg/config"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
	"github.com/devicelab-dev/reel-publisher/pkg/session"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Establish a session and save its cookies",
	Description: `Restores the saved session when it is still valid, otherwise logs in
with EMAIL and PASSWORD and saves the new cookies.`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Ignore the saved session and log in with credentials",
		},
	},
	Action: runLogin,
}

func runLogin(c *cli.Context) error {
	rt, err := setup(c, "login")
	if err != nil {
		return fatal("config", err)
	}
	defer logger.Close()

	// Credentials are checked before any browser is launched.
	cred, err := config.Credentials()
	if err != nil {
		return fatal("config", err)
	}

	b, err := launchBrowser(rt.cfg, rt.install)
	if err != nil {
		return fatal("browser", err)
	}
	defer closeBrowser(b)

	mgr := session.NewManager(session.NewFileStore(rt.cfg.SessionFile()), sessionOptions(rt.cfg), rt.diag)
	ctx := context.Background()

	var res *session.Result
	if c.Bool("force") {
		res, err = mgr.Login(ctx, b, cred)
	} else {
		res, err = mgr.Acquire(ctx, b, cred)
	}
	if err != nil {
		return fatal("session", err)
	}

	w := c.App.Writer
	printSession(w, res)
	switch {
	case res.Persisted:
		fmt.Fprintf(w, "  Cookies saved to %s\n\n", rt.cfg.SessionFile())
	case res.Source == session.SourceLogin:
		fmt.Fprintf(w, "  %s⚠%s Cookies were not saved, see the run log\n\n", color(colorYellow), color(colorReset))
	default:
		fmt.Fprintln(w)
	}
	return nil
}

func printSession(w io.Writer, res *session.Result) {
	switch res.Source {
	case session.SourceRestored:
		fmt.Fprintf(w, "\n  %s✓%s Session restored (%d cookies", color(colorGreen), color(colorReset), res.Cookies)
		if res.Skipped > 0 {
			fmt.Fprintf(w, ", %d skipped", res.Skipped)
		}
		fmt.Fprintln(w, ")")
	default:
		fmt.Fprintf(w, "\n  %s✓%s Logged in (%d cookies)\n", color(colorGreen), color(colorReset), res.Cookies)
	}
	fmt.Fprintf(w, "  %s%s%s\n", color(colorGray), res.URL, color(colorReset))
}
