package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/reel-publisher/pkg/config"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
)

func hasError(r *Result, field string) bool {
	for _, err := range r.Errors {
		if ve, ok := err.(*ValidationError); ok && ve.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_Defaults(t *testing.T) {
	r := New(false, false).Validate(config.Default())
	if !r.IsValid() {
		t.Errorf("default config invalid: %v", r.Errors)
	}
}

func TestValidate_URLs(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(c *config.Config)
		field string
	}{
		{"empty root", func(c *config.Config) { c.Site.RootURL = "" }, "site.rootURL"},
		{"no scheme", func(c *config.Config) { c.Site.LoginURL = "login.buffer.com/login" }, "site.loginURL"},
		{"ftp", func(c *config.Config) { c.Site.ComposerURL = "ftp://publish.buffer.com" }, "site.composerURL"},
		{"validate outside app", func(c *config.Config) { c.Site.ValidateURL = "https://buffer.com/pricing" }, "site.validateURL"},
		{"login inside app", func(c *config.Config) { c.Site.LoginURL = "https://publish.buffer.com/login" }, "site.loginURL"},
		{"no prefixes", func(c *config.Config) { c.Site.AuthenticatedURLs = nil }, "site.authenticatedURLs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.edit(cfg)
			r := New(false, false).Validate(cfg)
			if !hasError(r, tt.field) {
				t.Errorf("expected error on %s, got %v", tt.field, r.Errors)
			}
		})
	}
}

func TestValidate_Timeouts(t *testing.T) {
	cfg := config.Default()
	cfg.Timeouts.CandidateMs = 0
	cfg.Timeouts.ConsentMs = 0
	cfg.Timeouts.UploadSettleMs = -1
	cfg.Timeouts.PollMs = 30000

	r := New(false, false).Validate(cfg)
	if !hasError(r, "timeouts.candidateMs") {
		t.Error("zero candidate wait should be rejected")
	}
	if hasError(r, "timeouts.consentMs") {
		t.Error("zero consent wait disables the prompt check and is allowed")
	}
	if !hasError(r, "timeouts.uploadSettleMs") {
		t.Error("negative settle should be rejected")
	}
	if len(r.Warnings) == 0 || !strings.Contains(r.Warnings[0], "timeouts.pollMs") {
		t.Errorf("Warnings = %v", r.Warnings)
	}
}

func TestValidate_Selectors(t *testing.T) {
	cfg := config.Default()
	cfg.Selectors.Composer.Caption = flow.Selector{}
	cfg.Selectors.Composer.UploadProgress = flow.Selector{}
	cfg.Selectors.Login.Submit = flow.Selector{Candidates: []flow.Locator{{Strategy: "id", Value: "x"}}}

	r := New(false, false).Validate(cfg)
	if !hasError(r, "selectors.composer.caption") {
		t.Error("empty caption selector should be rejected")
	}
	if hasError(r, "selectors.composer.uploadProgress") {
		t.Error("upload progress marker is optional")
	}
	if !hasError(r, "selectors.login.submit") {
		t.Error("unknown strategy should be rejected")
	}
}

func TestValidate_Misc(t *testing.T) {
	cfg := config.Default()
	cfg.Session.File = ""
	cfg.Browser.Width = 0
	cfg.Post.Caption = ""
	cfg.Post.MediaPattern = "["

	r := New(false, false).Validate(cfg)
	for _, field := range []string{"session.file", "browser", "post.mediaPattern"} {
		if !hasError(r, field) {
			t.Errorf("expected error on %s", field)
		}
	}
	if len(r.Warnings) != 1 {
		t.Errorf("Warnings = %v, want caption warning", r.Warnings)
	}
}

func TestValidate_RequireMedia(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Post.MediaDir = dir

	if r := New(false, true).Validate(cfg); !hasError(r, "post.mediaDir") {
		t.Error("empty media dir should be rejected")
	}

	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := New(false, true).Validate(cfg); !r.IsValid() {
		t.Errorf("Errors = %v", r.Errors)
	}
}

func TestValidate_RequireCredential(t *testing.T) {
	t.Setenv(config.EnvEmail, "")
	t.Setenv(config.EnvPassword, "")

	if r := New(true, false).Validate(config.Default()); !hasError(r, "credentials") {
		t.Error("missing credentials should be rejected")
	}

	t.Setenv(config.EnvEmail, "me@example.com")
	t.Setenv(config.EnvPassword, "secret")
	if r := New(true, false).Validate(config.Default()); !r.IsValid() {
		t.Errorf("Errors = %v", r.Errors)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "site.rootURL", Message: "must not be empty"}
	if err.Error() != "site.rootURL: must not be empty" {
		t.Errorf("Error() = %s", err.Error())
	}
}
