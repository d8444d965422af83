package executor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
)

// MediaSource selects the file attached by the upload step.
type MediaSource interface {
	Select() (string, error)
}

// DirSource picks the first file in Dir matching Pattern.
type DirSource struct {
	Dir     string
	Pattern string // Glob, e.g. "*.mp4"
}

// Select returns the absolute path of the first match in directory order.
// It returns core.ErrNoMedia when nothing matches.
func (d DirSource) Select() (string, error) {
	pattern := d.Pattern
	if pattern == "" {
		pattern = "*.mp4"
	}

	if _, err := os.Stat(d.Dir); err != nil {
		return "", core.ErrNoMedia.
			WithMessage(fmt.Sprintf("media directory %s is not readable", d.Dir)).
			WithCause(err)
	}

	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return "", core.ErrNoMedia.WithCause(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return "", core.ErrInvalidConfig.WithMessage("bad media pattern " + pattern).WithCause(err)
		}
		if ok {
			return filepath.Abs(filepath.Join(d.Dir, e.Name()))
		}
	}
	return "", core.ErrNoMedia.
		WithMessage(fmt.Sprintf("no %s file in %s", pattern, d.Dir)).
		WithDetails(map[string]interface{}{"dir": d.Dir, "pattern": pattern})
}

// StaticSource always selects Path.
type StaticSource string

// Select returns the path, or core.ErrNoMedia when it is empty or missing.
func (s StaticSource) Select() (string, error) {
	if s == "" {
		return "", core.ErrNoMedia
	}
	if _, err := os.Stat(string(s)); err != nil {
		return "", core.ErrNoMedia.WithMessage("media file " + string(s) + " not found").WithCause(err)
	}
	return filepath.Abs(string(s))
}
