// Package config handles configuration for reel-publisher.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	LogLevel  string             `yaml:"logLevel"`
	Site      SiteConfig         `yaml:"site"`
	Session   SessionConfig      `yaml:"session"`
	Browser   BrowserConfig      `yaml:"browser"`
	Post      PostConfig         `yaml:"post"`
	Timeouts  Timeouts           `yaml:"timeouts"`
	Artifacts ArtifactsConfig    `yaml:"artifacts"`
	Selectors Selectors          `yaml:"selectors"`
	Steps     flow.StepOverrides `yaml:"steps"` // Per-step settings on top of the built-in pipeline
}

// SiteConfig holds the URLs of the target application.
type SiteConfig struct {
	RootURL     string `yaml:"rootURL"`     // Visited before cookie replay
	LoginURL    string `yaml:"loginURL"`    // Credential login page
	ValidateURL string `yaml:"validateURL"` // Authenticated-only page
	ComposerURL string `yaml:"composerURL"` // Page holding the New Post button

	// AuthenticatedURLs are host+path prefixes of the authenticated area.
	AuthenticatedURLs []string `yaml:"authenticatedURLs"`
}

// SessionConfig controls the session store.
type SessionConfig struct {
	File          string `yaml:"file"`          // Relative paths resolve against the home directory
	SettleDelayMs int    `yaml:"settleDelayMs"` // Pause before checking the validation URL
}

// BrowserConfig controls the launched browser.
type BrowserConfig struct {
	Headless       bool     `yaml:"headless"`
	NoSandbox      bool     `yaml:"noSandbox"`
	Width          int      `yaml:"width"`
	Height         int      `yaml:"height"`
	ExecutablePath string   `yaml:"executablePath"`
	Args           []string `yaml:"args"` // Extra launch arguments
}

// PostConfig holds the content of the post.
type PostConfig struct {
	Caption      string `yaml:"caption"`
	NetworkTag   string `yaml:"networkTag"`
	MediaDir     string `yaml:"mediaDir"`
	MediaPattern string `yaml:"mediaPattern"`
}

// Timeouts in milliseconds.
type Timeouts struct {
	CandidateMs       int `yaml:"candidateMs"` // Per locator candidate
	FieldMs           int `yaml:"fieldMs"`     // Login fields
	ConsentMs         int `yaml:"consentMs"`   // Cookie consent prompt
	ChallengeMs       int `yaml:"challengeMs"` // Bot-verification frame and checkbox
	ChallengeSettleMs int `yaml:"challengeSettleMs"`
	LoginMs           int `yaml:"loginMs"` // Outcome of the login submission
	PollMs            int `yaml:"pollMs"`
	OpenSettleMs      int `yaml:"openSettleMs"`
	ComposerMs        int `yaml:"composerMs"` // Composer marker confirmation
	UploadSettleMs    int `yaml:"uploadSettleMs"`
	UploadMs          int `yaml:"uploadMs"` // Upload completion confirmation
	NavigationMs      int `yaml:"navigationMs"`
}

// ArtifactsConfig controls diagnostic screenshots.
type ArtifactsConfig struct {
	Dir       string `yaml:"dir"` // Empty means the run output directory
	OnFailure bool   `yaml:"onFailure"`
	OnSuccess bool   `yaml:"onSuccess"`
}

// Selectors holds the locator candidate lists.
type Selectors struct {
	Login    flow.LoginSelectors    `yaml:"login"`
	Composer flow.ComposerSelectors `yaml:"composer"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	params := flow.DefaultParams()
	return &Config{
		LogLevel: "debug",
		Site: SiteConfig{
			RootURL:     "https://buffer.com",
			LoginURL:    "https://login.buffer.com/login",
			ValidateURL: "https://publish.buffer.com/all-channels",
			ComposerURL: "https://publish.buffer.com/all-channels",
			AuthenticatedURLs: []string{
				"publish.buffer.com",
				"buffer.com/app",
			},
		},
		Session: SessionConfig{
			File:          "buffer_cookies.json",
			SettleDelayMs: 3000,
		},
		Browser: BrowserConfig{
			Headless:  true,
			NoSandbox: true,
			Width:     1920,
			Height:    1080,
		},
		Post: PostConfig{
			Caption:      params.Caption,
			NetworkTag:   params.NetworkTag,
			MediaDir:     "videos",
			MediaPattern: "*.mp4",
		},
		Timeouts: Timeouts{
			CandidateMs:       params.CandidateTimeoutMs,
			FieldMs:           10000,
			ConsentMs:         5000,
			ChallengeMs:       10000,
			ChallengeSettleMs: 3000,
			LoginMs:           20000,
			PollMs:            500,
			OpenSettleMs:      params.OpenSettleMs,
			ComposerMs:        params.ComposerConfirmMs,
			UploadSettleMs:    params.UploadSettleMs,
			UploadMs:          params.UploadConfirmMs,
			NavigationMs:      60000,
		},
		Artifacts: ArtifactsConfig{
			OnFailure: true,
			OnSuccess: true,
		},
		Selectors: Selectors{
			Login:    flow.DefaultLoginSelectors(),
			Composer: flow.DefaultComposerSelectors(),
		},
	}
}

// Load loads configuration from a file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("invalid " + filepath.Base(path)).WithCause(err)
	}

	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return defaults
	return Default(), nil
}

// Params returns the composer pipeline inputs.
func (c *Config) Params() flow.Params {
	return flow.Params{
		Caption:            c.Post.Caption,
		NetworkTag:         c.Post.NetworkTag,
		CandidateTimeoutMs: c.Timeouts.CandidateMs,
		OpenSettleMs:       c.Timeouts.OpenSettleMs,
		ComposerConfirmMs:  c.Timeouts.ComposerMs,
		UploadSettleMs:     c.Timeouts.UploadSettleMs,
		UploadConfirmMs:    c.Timeouts.UploadMs,
	}
}

// ComposerFlow builds the composer pipeline with the steps section applied.
func (c *Config) ComposerFlow() *flow.Flow {
	f := flow.ComposerFlow(c.Selectors.Composer, c.Params())
	c.Steps.Apply(f)
	return f
}

// ArtifactConfig returns the screenshot capture policy.
func (c *Config) ArtifactConfig() core.ArtifactConfig {
	return core.ArtifactConfig{
		CaptureOnFailure: c.Artifacts.OnFailure,
		CaptureOnSuccess: c.Artifacts.OnSuccess,
	}
}

// SessionFile returns the session store path, resolved against the home
// directory when relative.
func (c *Config) SessionFile() string {
	return ResolvePath(c.Session.File)
}

// MediaDir returns the media directory, resolved against the home
// directory when relative.
func (c *Config) MediaDir() string {
	return ResolvePath(c.Post.MediaDir)
}

// Ms converts a millisecond setting to a duration.
func Ms(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
