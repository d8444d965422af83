package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/reel-publisher/pkg/config"
	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/executor"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
	"github.com/devicelab-dev/reel-publisher/pkg/report"
	"github.com/devicelab-dev/reel-publisher/pkg/session"
	"github.com/devicelab-dev/reel-publisher/pkg/validator"
)

var postCommand = &cli.Command{
	Name:  "post",
	Usage: "Publish a video through the composer",
	Description: `Acquires a session, opens the composer, uploads the first video
matching the media pattern, enters the caption and schedules the post.

A live report.json is written to the output directory after every step.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "media",
			Usage: "Upload this file instead of searching the media directory",
		},
		&cli.StringFlag{
			Name:  "caption",
			Usage: "Override the configured caption",
		},
	},
	Action: runPost,
}

func runPost(c *cli.Context) error {
	rt, err := setup(c, "post")
	if err != nil {
		return fatal("config", err)
	}
	defer logger.Close()

	if c.IsSet("caption") {
		rt.cfg.Post.Caption = c.String("caption")
	}

	result := validator.New(false, false).Validate(rt.cfg)
	for _, w := range result.Warnings {
		logger.Warn("config: %s", w)
	}
	if !result.IsValid() {
		return fatal("config", result.Errors[0])
	}

	f := rt.cfg.ComposerFlow()
	writer, err := report.NewWriter(rt.outputDir, report.BuildSkeleton(f, report.BuilderConfig{
		RunnerVersion: Version,
		DriverName:    "playwright",
	}))
	if err != nil {
		return fatal("report", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flowResult, err := publish(ctx, rt, f, mediaSource(c, rt.cfg), writer)
	if err != nil {
		return err
	}

	printSummary(flowResult, writer.Path())
	if !flowResult.Success() {
		return cli.Exit(fmt.Sprintf("post failed at %s: %s", flowResult.FailedStep, flowResult.Error), 1)
	}
	return nil
}

// publish acquires the session and runs the composer pipeline. Errors
// before the pipeline starts are recorded in the report and returned as
// exit errors.
func publish(ctx context.Context, rt *runEnv, f *flow.Flow, media executor.MediaSource, writer *report.Writer) (*core.FlowResult, error) {
	stageErr := func(stage string, err error) error {
		writer.Fail(stage, err)
		generateHTML(rt.outputDir)
		return fatal(stage, err)
	}

	store := session.NewFileStore(rt.cfg.SessionFile())

	// The credential is only needed when there is no session to restore.
	cred, credErr := config.Credentials()
	if credErr != nil {
		persisted, err := store.Load()
		if err != nil {
			return nil, stageErr("session", err)
		}
		if persisted == nil || len(persisted.Cookies) == 0 {
			return nil, stageErr("config", credErr)
		}
	}

	b, err := launchBrowser(rt.cfg, rt.install)
	if err != nil {
		return nil, stageErr("browser", err)
	}
	defer closeBrowser(b)

	writer.Start()

	mgr := session.NewManager(store, sessionOptions(rt.cfg), rt.diag)
	sess, err := mgr.Acquire(ctx, b, cred)
	if err != nil {
		return nil, stageErr("session", err)
	}
	writer.SetSession(sess.Info())
	printSession(os.Stdout, sess)

	if err := openComposerPage(b, rt.cfg.Site.ComposerURL); err != nil {
		return nil, stageErr("navigate", err)
	}

	fmt.Printf("\n  %s%s%s\n\n", color(colorBold), f.Name, color(colorReset))
	p := executor.New(b, f, executor.Config{
		Media:       media,
		Diagnostics: rt.diag,
		OnStepStart: func(idx, total int, step flow.Step) {
			writer.CommandStart(idx)
		},
		OnStepComplete: func(idx, total int, sr *core.StepResult) {
			writer.CommandEnd(idx, sr)
			printStep(idx, total, sr)
		},
	})

	flowResult := p.Run(ctx)
	flowResult.Session = sess.Info()
	writer.End(flowResult, p.Media())
	generateHTML(rt.outputDir)
	return flowResult, nil
}

// generateHTML renders the HTML report next to report.json. Failures are
// reported but do not change the run outcome.
func generateHTML(outputDir string) {
	if err := report.GenerateHTML(outputDir, report.HTMLConfig{EmbedAssets: true}); err != nil {
		logger.Warn("html report: %v", err)
		fmt.Printf("  %s⚠%s Warning: failed to generate HTML report: %v\n", color(colorYellow), color(colorReset), err)
	}
}

// openComposerPage navigates to url unless the browser is already there.
func openComposerPage(b core.Browser, url string) error {
	if url == "" || b.CurrentURL() == url {
		return nil
	}
	logger.Info("navigating to composer page %s", url)
	return b.Navigate(url)
}

func mediaSource(c *cli.Context, cfg *config.Config) executor.MediaSource {
	if path := c.String("media"); path != "" {
		return executor.StaticSource(path)
	}
	return executor.DirSource{Dir: cfg.MediaDir(), Pattern: cfg.Post.MediaPattern}
}
