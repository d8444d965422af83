package report

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/fsutil"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
)

// Writer keeps report.json in sync with a running pipeline.
type Writer struct {
	mu        sync.Mutex
	report    *Report
	outputDir string
	path      string
}

// NewWriter creates a Writer for r and writes the skeleton to outputDir.
func NewWriter(outputDir string, r *Report) (*Writer, error) {
	w := &Writer{
		report:    r,
		outputDir: outputDir,
		path:      filepath.Join(outputDir, FileName),
	}
	if err := fsutil.WriteJSONAtomic(w.path, r, 0o644); err != nil {
		return nil, err
	}
	return w, nil
}

// Path returns the report file path.
func (w *Writer) Path() string { return w.path }

// Report returns the current report (for reading).
func (w *Writer) Report() *Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.report
}

// Start marks the run as started.
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.report.StartTime = time.Now()
	w.report.Status = StatusRunning
	w.flush()
}

// SetSession records how the session was obtained.
func (w *Writer) SetSession(info *core.SessionInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.report.Session = info
	w.flush()
}

// CommandStart marks a command as started.
func (w *Writer) CommandStart(idx int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if idx < 0 || idx >= len(w.report.Commands) {
		return
	}
	now := time.Now()
	cmd := &w.report.Commands[idx]
	cmd.Status = StatusRunning
	cmd.StartTime = &now
	w.flush()
}

// CommandEnd records the outcome of a command.
func (w *Writer) CommandEnd(idx int, sr *core.StepResult) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if idx < 0 || idx >= len(w.report.Commands) || sr == nil {
		return
	}
	w.applyStep(&w.report.Commands[idx], sr)
	w.flush()
}

// End copies the final pipeline result into the report and writes it.
func (w *Writer) End(result *core.FlowResult, media string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.report.EndTime = &now
	duration := now.Sub(w.report.StartTime).Milliseconds()
	w.report.Duration = &duration
	w.report.Media = media

	if result != nil {
		for i := range result.Steps {
			if i < len(w.report.Commands) {
				w.applyStep(&w.report.Commands[i], &result.Steps[i])
			}
		}
		w.report.Status = FromStepStatus(result.Status)
		w.report.FinalState = result.FinalState
		w.report.FailedStep = result.FailedStep
		if result.Error != "" {
			w.report.Error = &Error{Type: failedCategory(result), Message: result.Error}
		}
	}
	w.flush()
}

// Fail ends the run before the pipeline started, e.g. when no session
// could be acquired.
func (w *Writer) Fail(stage string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.report.EndTime = &now
	duration := now.Sub(w.report.StartTime).Milliseconds()
	w.report.Duration = &duration
	w.report.Status = StatusFailed
	w.report.FailedStep = stage
	w.report.Error = &Error{Type: core.CategoryOf(err).String(), Message: err.Error()}
	for i := range w.report.Commands {
		if !w.report.Commands[i].Status.IsTerminal() {
			w.report.Commands[i].Status = StatusSkipped
		}
	}
	w.flush()
}

func (w *Writer) applyStep(cmd *Command, sr *core.StepResult) {
	cmd.Status = FromStepStatus(sr.Status)
	cmd.Message = sr.Message
	cmd.Warning = sr.Warning

	if !sr.StartTime.IsZero() {
		start := sr.StartTime
		end := start.Add(sr.Duration)
		duration := sr.Duration.Milliseconds()
		cmd.StartTime = &start
		cmd.EndTime = &end
		cmd.Duration = &duration
	}

	if sr.Element != nil {
		cmd.Element = &Element{
			Found:      true,
			Locator:    sr.Element.Locator,
			Candidate:  sr.Element.CandidateIndex,
			Candidates: sr.Element.Candidates,
			Text:       sr.Element.Text,
		}
	}
	if sr.Error != "" {
		cmd.Error = &Error{Type: sr.Category.String(), Message: sr.Error}
	}
	for _, a := range sr.Attachments {
		if a.Name == core.AttachmentScreenshot {
			cmd.Artifacts.Screenshot = w.relative(a.Path)
		}
	}
}

// relative returns path relative to the output directory when it lies inside it.
func (w *Writer) relative(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	base, err := filepath.Abs(w.outputDir)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// flush recomputes the summary and writes the report. Write failures are
// logged; the report never fails a run.
func (w *Writer) flush() {
	w.report.UpdateSeq++
	w.report.LastUpdated = time.Now()
	w.report.Summary = summarize(w.report.Commands)

	if err := fsutil.WriteJSONAtomic(w.path, w.report, 0o644); err != nil {
		logger.Warn("report not written: %v", err)
	}
}

// summarize computes command counts.
func summarize(commands []Command) Summary {
	s := Summary{Total: len(commands)}
	for i, cmd := range commands {
		switch cmd.Status {
		case StatusPassed:
			s.Passed++
		case StatusWarned:
			s.Warned++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusRunning:
			s.Running++
			idx := i
			s.Current = &idx
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

func failedCategory(result *core.FlowResult) string {
	for _, sr := range result.Steps {
		if sr.Category != core.ErrCategoryNone {
			return sr.Category.String()
		}
	}
	return core.ErrCategoryBrowser.String()
}

// Read loads a report file.
func Read(path string) (*Report, error) {
	var r Report
	if err := fsutil.ReadJSON(path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
