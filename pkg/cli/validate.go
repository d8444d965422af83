package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/reel-publisher/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "Check the configuration without launching a browser",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "media",
			Usage: "Also require a matching file in the media directory",
		},
		&cli.BoolFlag{
			Name:  "credentials",
			Usage: "Also require EMAIL and PASSWORD",
		},
	},
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fatal("config", err)
	}

	result := validator.New(c.Bool("credentials"), c.Bool("media")).Validate(cfg)
	w := c.App.Writer
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  %s⚠%s %s\n", color(colorYellow), color(colorReset), warning)
	}
	if !result.IsValid() {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s✗%s %s\n", color(colorRed), color(colorReset), e.Error())
		}
		return cli.Exit(fmt.Sprintf("%d configuration error(s)", len(result.Errors)), 1)
	}

	fmt.Fprintf(w, "  %s✓%s Configuration is valid\n", color(colorGreen), color(colorReset))
	return nil
}
