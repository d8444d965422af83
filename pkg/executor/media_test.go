package executor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSource_Select(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "b.mp4"))
	touch(t, filepath.Join(dir, "c.mp4"))
	if err := os.Mkdir(filepath.Join(dir, "a.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := DirSource{Dir: dir, Pattern: "*.mp4"}.Select()
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if filepath.Base(got) != "b.mp4" {
		t.Errorf("Select() = %s, want b.mp4", got)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Select() = %s, want absolute path", got)
	}
}

func TestDirSource_DefaultPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "clip.mp4"))

	got, err := DirSource{Dir: dir}.Select()
	if err != nil || filepath.Base(got) != "clip.mp4" {
		t.Errorf("Select() = %s, %v", got, err)
	}
}

func TestDirSource_NoMedia(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
	}{
		{"empty", func(t *testing.T) string { return t.TempDir() }},
		{"no match", func(t *testing.T) string {
			dir := t.TempDir()
			touch(t, filepath.Join(dir, "clip.mov"))
			return dir
		}},
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DirSource{Dir: tt.dir(t), Pattern: "*.mp4"}.Select()
			if !errors.Is(err, core.ErrNoMedia) {
				t.Errorf("Select() error = %v, want ErrNoMedia", err)
			}
			if !core.IsCategory(err, core.ErrCategoryNotFound) {
				t.Errorf("category = %s, want not_found", core.CategoryOf(err))
			}
		})
	}
}

func TestDirSource_BadPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "clip.mp4"))

	_, err := DirSource{Dir: dir, Pattern: "["}.Select()
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Select() error = %v, want ErrInvalidConfig", err)
	}
}

func TestStaticSource_Select(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	touch(t, path)

	if got, err := StaticSource(path).Select(); err != nil || got != path {
		t.Errorf("Select() = %s, %v", got, err)
	}
	if _, err := StaticSource("").Select(); !errors.Is(err, core.ErrNoMedia) {
		t.Errorf("empty path error = %v", err)
	}
	if _, err := StaticSource(path + ".missing").Select(); !errors.Is(err, core.ErrNoMedia) {
		t.Errorf("missing file error = %v", err)
	}
}
