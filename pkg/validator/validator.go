// Package validator checks a configuration before any browser is launched.
// It collects every problem instead of stopping at the first one.
package validator

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"

	"github.com/devicelab-dev/reel-publisher/pkg/config"
	"github.com/devicelab-dev/reel-publisher/pkg/executor"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
	"github.com/devicelab-dev/reel-publisher/pkg/session"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Errors contains all validation errors found.
	Errors []error
	// Warnings are problems that do not stop a run.
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *Result) fail(field, format string, args ...interface{}) {
	r.Errors = append(r.Errors, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) warn(field, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, field+": "+fmt.Sprintf(format, args...))
}

// Validator validates configurations.
type Validator struct {
	requireCredential bool
	requireMedia      bool
}

// New creates a new Validator. requireCredential checks EMAIL and PASSWORD;
// requireMedia checks that the media directory holds a matching file.
func New(requireCredential, requireMedia bool) *Validator {
	return &Validator{
		requireCredential: requireCredential,
		requireMedia:      requireMedia,
	}
}

// optionalSelectors may be empty: their steps are best-effort.
var optionalSelectors = map[string]bool{
	"login.consent":           true,
	"login.challengeFrame":    true,
	"login.challengeCheckbox": true,
	"login.error":             true,
	"composer.composerMarker": true,
	"composer.uploadProgress": true,
	"composer.uploadComplete": true,
	"composer.ready":          true,
}

// Validate checks cfg and returns every problem found.
func (v *Validator) Validate(cfg *config.Config) *Result {
	result := &Result{}

	v.validateSite(cfg, result)
	v.validateTimeouts(cfg, result)
	v.validateSelectors(cfg, result)

	if cfg.Session.File == "" {
		result.fail("session.file", "must not be empty")
	}
	if cfg.Browser.Width <= 0 || cfg.Browser.Height <= 0 {
		result.fail("browser", "window size %dx%d is invalid", cfg.Browser.Width, cfg.Browser.Height)
	}
	if cfg.Post.Caption == "" {
		result.warn("post.caption", "empty caption")
	}
	if _, err := filepath.Match(cfg.Post.MediaPattern, ""); err != nil {
		result.fail("post.mediaPattern", "invalid pattern %q", cfg.Post.MediaPattern)
	} else if v.requireMedia {
		src := executor.DirSource{Dir: cfg.MediaDir(), Pattern: cfg.Post.MediaPattern}
		if _, err := src.Select(); err != nil {
			result.fail("post.mediaDir", "%v", err)
		}
	}

	if v.requireCredential {
		if _, err := config.Credentials(); err != nil {
			result.fail("credentials", "%v", err)
		}
	}
	return result
}

func (v *Validator) validateSite(cfg *config.Config, result *Result) {
	urls := map[string]string{
		"site.rootURL":     cfg.Site.RootURL,
		"site.loginURL":    cfg.Site.LoginURL,
		"site.validateURL": cfg.Site.ValidateURL,
		"site.composerURL": cfg.Site.ComposerURL,
	}
	for _, field := range sortedKeys(urls) {
		if err := checkURL(urls[field]); err != nil {
			result.fail(field, "%v", err)
		}
	}

	if len(cfg.Site.AuthenticatedURLs) == 0 {
		result.fail("site.authenticatedURLs", "at least one prefix is required")
		return
	}
	if cfg.Site.ValidateURL != "" && !session.IsAuthenticatedURL(cfg.Site.ValidateURL, cfg.Site.AuthenticatedURLs) {
		result.fail("site.validateURL", "%s is outside the authenticated area %v", cfg.Site.ValidateURL, cfg.Site.AuthenticatedURLs)
	}
	if cfg.Site.LoginURL != "" && session.IsAuthenticatedURL(cfg.Site.LoginURL, cfg.Site.AuthenticatedURLs) {
		result.fail("site.loginURL", "%s is inside the authenticated area; failed logins would look successful", cfg.Site.LoginURL)
	}
}

func checkURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%q must be an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

func (v *Validator) validateTimeouts(cfg *config.Config, result *Result) {
	t := cfg.Timeouts
	required := map[string]int{
		"timeouts.candidateMs":  t.CandidateMs,
		"timeouts.fieldMs":      t.FieldMs,
		"timeouts.loginMs":      t.LoginMs,
		"timeouts.pollMs":       t.PollMs,
		"timeouts.composerMs":   t.ComposerMs,
		"timeouts.uploadMs":     t.UploadMs,
		"timeouts.navigationMs": t.NavigationMs,
	}
	for _, field := range sortedKeys(required) {
		if required[field] <= 0 {
			result.fail(field, "must be positive, got %d", required[field])
		}
	}

	optional := map[string]int{
		"timeouts.consentMs":         t.ConsentMs,
		"timeouts.challengeMs":       t.ChallengeMs,
		"timeouts.challengeSettleMs": t.ChallengeSettleMs,
		"timeouts.openSettleMs":      t.OpenSettleMs,
		"timeouts.uploadSettleMs":    t.UploadSettleMs,
		"session.settleDelayMs":      cfg.Session.SettleDelayMs,
	}
	for _, field := range sortedKeys(optional) {
		if optional[field] < 0 {
			result.fail(field, "must not be negative, got %d", optional[field])
		}
	}

	if t.PollMs > 0 && t.LoginMs > 0 && t.PollMs > t.LoginMs {
		result.warn("timeouts.pollMs", "poll interval %dms exceeds login wait %dms", t.PollMs, t.LoginMs)
	}
}

func (v *Validator) validateSelectors(cfg *config.Config, result *Result) {
	sets := map[string]map[string]*flow.Selector{
		"login":    cfg.Selectors.Login.Selectors(),
		"composer": cfg.Selectors.Composer.Selectors(),
	}
	for _, group := range sortedKeys(sets) {
		sels := sets[group]
		for _, name := range sortedKeys(sels) {
			field := "selectors." + group + "." + name
			sel := sels[name]
			if sel.IsEmpty() {
				if !optionalSelectors[group+"."+name] {
					result.fail(field, "at least one locator candidate is required")
				}
				continue
			}
			if err := sel.Validate(); err != nil {
				result.fail(field, "%v", err)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
