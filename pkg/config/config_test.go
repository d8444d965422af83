package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Site.LoginURL != "https://login.buffer.com/login" {
		t.Errorf("LoginURL = %s", cfg.Site.LoginURL)
	}
	if cfg.Site.ValidateURL != "https://publish.buffer.com/all-channels" {
		t.Errorf("ValidateURL = %s", cfg.Site.ValidateURL)
	}
	if len(cfg.Site.AuthenticatedURLs) != 2 {
		t.Errorf("AuthenticatedURLs = %v", cfg.Site.AuthenticatedURLs)
	}
	if cfg.Session.File != "buffer_cookies.json" {
		t.Errorf("Session.File = %s", cfg.Session.File)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Browser.Width != 1920 || cfg.Browser.Height != 1080 {
		t.Errorf("window = %dx%d, want 1920x1080", cfg.Browser.Width, cfg.Browser.Height)
	}
	if cfg.Post.MediaPattern != "*.mp4" {
		t.Errorf("MediaPattern = %s", cfg.Post.MediaPattern)
	}
	if cfg.Timeouts.LoginMs != 20000 {
		t.Errorf("LoginMs = %d, want 20000", cfg.Timeouts.LoginMs)
	}
	if cfg.Selectors.Composer.NewPost.Len() != 5 {
		t.Errorf("NewPost candidates = %d, want 5", cfg.Selectors.Composer.NewPost.Len())
	}
}

func TestLoad_OverridesOnTopOfDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
logLevel: info
browser:
  headless: false
post:
  caption: "hello #world"
  mediaDir: /data/videos
timeouts:
  candidateMs: 2000
selectors:
  composer:
    newPost:
      - text=New Post
      - css=button.new-post
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.Browser.Headless {
		t.Error("Headless should be overridden to false")
	}
	if cfg.Browser.Width != 1920 {
		t.Errorf("Width = %d, absent keys should keep defaults", cfg.Browser.Width)
	}
	if cfg.Post.Caption != "hello #world" {
		t.Errorf("Caption = %q", cfg.Post.Caption)
	}
	if cfg.Post.NetworkTag != "#reels" {
		t.Errorf("NetworkTag = %q, should keep default", cfg.Post.NetworkTag)
	}
	if cfg.Timeouts.CandidateMs != 2000 {
		t.Errorf("CandidateMs = %d, want 2000", cfg.Timeouts.CandidateMs)
	}
	if cfg.Timeouts.UploadMs != 120000 {
		t.Errorf("UploadMs = %d, should keep default", cfg.Timeouts.UploadMs)
	}

	newPost := cfg.Selectors.Composer.NewPost
	if newPost.Len() != 2 || newPost.Candidates[0] != flow.Text("New Post") {
		t.Errorf("NewPost = %+v, want overridden list", newPost.Candidates)
	}
	if newPost.Label != "New Post button" {
		t.Errorf("NewPost label = %q, should keep default", newPost.Label)
	}
	if cfg.Selectors.Composer.Caption.Len() != 3 {
		t.Errorf("Caption candidates = %d, should keep default", cfg.Selectors.Composer.Caption.Len())
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `post: [invalid yaml`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !core.IsCategory(err, core.ErrCategoryConfig) {
		t.Errorf("error category = %s, want config", core.CategoryOf(err))
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(``), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Site.RootURL != "https://buffer.com" {
		t.Errorf("empty file should yield defaults, got RootURL %q", cfg.Site.RootURL)
	}
}

func TestLoadFromDir_ConfigYaml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`logLevel: warn`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected logLevel warn, got %s", cfg.LogLevel)
	}
}

func TestLoadFromDir_ConfigYml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`logLevel: error`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected logLevel error, got %s", cfg.LogLevel)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected defaults, got logLevel %q", cfg.LogLevel)
	}
}

func TestConfig_Params(t *testing.T) {
	cfg := Default()
	cfg.Post.Caption = "c"
	cfg.Timeouts.UploadMs = 7

	p := cfg.Params()
	if p.Caption != "c" || p.NetworkTag != "#reels" {
		t.Errorf("Params() text = %+v", p)
	}
	if p.UploadConfirmMs != 7 {
		t.Errorf("UploadConfirmMs = %d, want 7", p.UploadConfirmMs)
	}
	if p.CandidateTimeoutMs != 5000 {
		t.Errorf("CandidateTimeoutMs = %d, want 5000", p.CandidateTimeoutMs)
	}
}

func TestConfig_ArtifactConfig(t *testing.T) {
	cfg := Default()
	cfg.Artifacts.OnSuccess = false

	ac := cfg.ArtifactConfig()
	if !ac.CaptureOnFailure || ac.CaptureOnSuccess {
		t.Errorf("ArtifactConfig() = %+v", ac)
	}
}

func TestConfig_SessionFile(t *testing.T) {
	ResetHome()
	t.Setenv("REEL_PUBLISHER_HOME", "/home/reels")

	cfg := Default()
	if got, want := cfg.SessionFile(), filepath.Join("/home/reels", "buffer_cookies.json"); got != want {
		t.Errorf("SessionFile() = %q, want %q", got, want)
	}
	cfg.Session.File = "/var/lib/cookies.json"
	if got := cfg.SessionFile(); got != "/var/lib/cookies.json" {
		t.Errorf("SessionFile() = %q, absolute path should be kept", got)
	}
}

func TestMs(t *testing.T) {
	if got := Ms(1500); got != 1500*time.Millisecond {
		t.Errorf("Ms(1500) = %v", got)
	}
}

func TestLoad_StepOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
timeouts:
  uploadMs: 60000
steps:
  uploadMedia:
    confirmTimeout: 300000
  finish:
    label: "Ready to publish"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := cfg.ComposerFlow()
	upload := f.Steps[1].(*flow.UploadMediaStep)
	if upload.ConfirmTimeoutMs != 300000 {
		t.Errorf("ConfirmTimeoutMs = %d, the steps section wins over timeouts", upload.ConfirmTimeoutMs)
	}
	if f.Steps[8].Label() != "Ready to publish" {
		t.Errorf("finish label = %q", f.Steps[8].Label())
	}
	if f.Steps[0].Label() != "Open composer" {
		t.Errorf("openComposer label = %q, want the built-in label", f.Steps[0].Label())
	}
}

func TestLoad_InvalidStepOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("steps:\n  clickPost:\n    label: x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected error for an unknown step type")
	}
	if !core.IsCategory(err, core.ErrCategoryConfig) {
		t.Errorf("error category = %s, want config", core.CategoryOf(err))
	}
	var parseErr *flow.ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 2 {
		t.Errorf("error = %v, want a ParseError at line 2", err)
	}
}
