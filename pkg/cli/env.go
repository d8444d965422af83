package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/reel-publisher/pkg/config"
	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/driver/playwright"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
	"github.com/devicelab-dev/reel-publisher/pkg/session"
)

// launchBrowser starts the browser for a run. Tests replace it.
var launchBrowser = func(cfg *config.Config, install bool) (core.Browser, error) {
	return playwright.Launch(browserOptions(cfg, install))
}

// runEnv is the state shared by commands that drive a browser.
type runEnv struct {
	cfg       *config.Config
	outputDir string
	diag      *core.Diagnostics
	install   bool
}

// loadConfig loads the dotenv file and the configuration, then applies
// environment and flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadEnv(c.String("env-file")); err != nil {
		return nil, err
	}

	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if c.IsSet("headless") {
		cfg.Browser.Headless = c.Bool("headless")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, nil
}

// setup loads the configuration, creates the output directory and
// initializes logging. The caller must call logger.Close.
func setup(c *cli.Context, name string) (*runEnv, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	outputDir, err := resolveOutputDir(c.String("output"), c.Bool("flatten"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	logPath := filepath.Join(outputDir, "reel-publisher.log")
	if err := logger.Init(logPath); err != nil {
		fmt.Printf("Warning: Failed to initialize logger: %v\n", err)
	}
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			return nil, core.ErrInvalidConfig.WithCause(err)
		}
	}
	if c.Bool("verbose") {
		logger.SetConsole(os.Stderr)
	}

	artifactsDir := cfg.Artifacts.Dir
	if artifactsDir == "" {
		artifactsDir = outputDir
	}

	logger.Info("=== %s started ===", name)
	logger.Info("Output directory: %s", outputDir)
	logger.Info("Session file: %s", cfg.SessionFile())

	return &runEnv{
		cfg:       cfg,
		outputDir: outputDir,
		diag:      core.NewDiagnostics(artifactsDir, cfg.ArtifactConfig()),
		install:   c.Bool("install"),
	}, nil
}

// resolveOutputDir determines the output directory based on flags.
// - No --output: <home>/reports/<timestamp>/
// - --output given: <output>/<timestamp>/
// - --output + --flatten: <output>/ (error if --output not given)
func resolveOutputDir(output string, flatten bool) (string, error) {
	if flatten && output == "" {
		return "", fmt.Errorf("--flatten requires --output to be specified")
	}

	baseDir := output
	if baseDir == "" {
		baseDir = config.GetReportsDir()
	}

	if flatten {
		return filepath.Clean(baseDir), nil
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(baseDir, timestamp), nil
}

func browserOptions(cfg *config.Config, install bool) playwright.Options {
	return playwright.Options{
		Headless:       cfg.Browser.Headless,
		NoSandbox:      cfg.Browser.NoSandbox,
		Width:          cfg.Browser.Width,
		Height:         cfg.Browser.Height,
		ExecutablePath: cfg.Browser.ExecutablePath,
		Args:           cfg.Browser.Args,
		NavTimeout:     config.Ms(cfg.Timeouts.NavigationMs),
		Install:        install,
		DriverDir:      config.GetBrowsersDir(),
	}
}

func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		RootURL:           cfg.Site.RootURL,
		LoginURL:          cfg.Site.LoginURL,
		ValidateURL:       cfg.Site.ValidateURL,
		AuthenticatedURLs: cfg.Site.AuthenticatedURLs,
		SettleDelay:       config.Ms(cfg.Session.SettleDelayMs),
		FieldTimeout:      config.Ms(cfg.Timeouts.FieldMs),
		ConsentTimeout:    config.Ms(cfg.Timeouts.ConsentMs),
		ChallengeTimeout:  config.Ms(cfg.Timeouts.ChallengeMs),
		ChallengeSettle:   config.Ms(cfg.Timeouts.ChallengeSettleMs),
		LoginTimeout:      config.Ms(cfg.Timeouts.LoginMs),
		PollInterval:      config.Ms(cfg.Timeouts.PollMs),
		Selectors:         cfg.Selectors.Login,
	}
}

// fatal converts a stage error to the process exit error.
func fatal(stage string, err error) error {
	logger.Error("%s failed: %v", stage, err)
	return cli.Exit(fmt.Sprintf("%s failed: %v", stage, err), 1)
}

// closeBrowser closes b and logs failures.
func closeBrowser(b core.Browser) {
	if err := b.Close(); err != nil {
		logger.Warn("browser close: %v", err)
	}
}
