// Package core provides the execution model types for reel-publisher.
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devicelab-dev/reel-publisher/pkg/fsutil"
)

// Attachment represents a debug artifact captured during step execution
type Attachment struct {
	Name        string `json:"name"`        // Descriptive name: screenshot, log
	ContentType string `json:"contentType"` // MIME type: image/png, text/plain
	Path        string `json:"path"`        // File path of the written artifact
	Body        []byte `json:"-"`           // In-memory content (not serialized to JSON)
}

// Common attachment names
const (
	AttachmentScreenshot = "screenshot"
)

// Common content types
const (
	ContentTypePNG  = "image/png"
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// NewScreenshotAttachment creates a screenshot attachment
func NewScreenshotAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentScreenshot,
		ContentType: ContentTypePNG,
		Path:        path,
		Body:        data,
	}
}

// ArtifactConfig controls when artifacts are captured
type ArtifactConfig struct {
	CaptureOnFailure bool `yaml:"onFailure" json:"onFailure"` // Default: true
	CaptureOnSuccess bool `yaml:"onSuccess" json:"onSuccess"` // Default: true (milestone screenshots)
}

// DefaultArtifactConfig returns the default capture policy
func DefaultArtifactConfig() ArtifactConfig {
	return ArtifactConfig{
		CaptureOnFailure: true,
		CaptureOnSuccess: true,
	}
}

// ShouldCapture returns true if artifacts should be captured for the given status
func (c ArtifactConfig) ShouldCapture(status StepStatus) bool {
	switch status {
	case StatusFailed, StatusErrored:
		return c.CaptureOnFailure
	case StatusPassed, StatusWarned:
		return c.CaptureOnSuccess
	default:
		return false
	}
}

// Screenshotter is anything that can produce a PNG of its current state.
type Screenshotter interface {
	Screenshot() ([]byte, error)
}

// Diagnostics writes named screenshots into a directory.
// Artifacts are observational only; nothing reads them back.
type Diagnostics struct {
	Dir    string
	Config ArtifactConfig
}

// NewDiagnostics creates a Diagnostics writing into dir.
func NewDiagnostics(dir string, cfg ArtifactConfig) *Diagnostics {
	return &Diagnostics{Dir: dir, Config: cfg}
}

// Capture takes a screenshot from src and writes it as <name>.png when the
// policy allows capture for status. A nil Diagnostics captures nothing.
// Returned errors are for logging only; callers must not fail on them.
func (d *Diagnostics) Capture(src Screenshotter, name string, status StepStatus) (*Attachment, error) {
	if d == nil || src == nil || !d.Config.ShouldCapture(status) {
		return nil, nil
	}

	data, err := src.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", name, err)
	}

	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", name, err)
	}

	path := filepath.Join(dir, artifactFileName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", name, err)
	}

	att := NewScreenshotAttachment(path, data)
	return &att, nil
}

// artifactFileName turns a step name into a safe file name with a .png suffix.
func artifactFileName(name string) string {
	name = strings.TrimSuffix(name, ".png")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		name = "screenshot"
	}
	return name + ".png"
}
