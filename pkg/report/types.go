// Package report provides the JSON run report.
//
// A run writes a single report.json into the output directory. The file is
// rewritten atomically after every step so a consumer polling it always sees
// a complete document. Screenshots are referenced by path, never inlined.
package report

import (
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// FileName is the report file written into the output directory.
const FileName = "report.json"

// Status represents the execution status.
type Status string

// Status values.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusWarned  Status = "warned"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusPassed || s == StatusWarned || s == StatusFailed || s == StatusSkipped
}

// FromStepStatus converts an execution status to its report form.
// Errored steps are reported as failed.
func FromStepStatus(s core.StepStatus) Status {
	switch s {
	case core.StatusPending:
		return StatusPending
	case core.StatusRunning:
		return StatusRunning
	case core.StatusPassed:
		return StatusPassed
	case core.StatusWarned:
		return StatusWarned
	case core.StatusSkipped:
		return StatusSkipped
	default:
		return StatusFailed
	}
}

// Report is the content of report.json.
type Report struct {
	Version     string     `json:"version"`
	RunID       string     `json:"runId"`
	UpdateSeq   uint64     `json:"updateSeq"`
	Name        string     `json:"name"`
	Status      Status     `json:"status"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Duration    *int64     `json:"duration,omitempty"` // milliseconds
	LastUpdated time.Time  `json:"lastUpdated"`
	Runner      RunnerInfo `json:"runner"`

	Session    *core.SessionInfo `json:"session,omitempty"`
	Media      string            `json:"media,omitempty"`
	FinalState string            `json:"finalState,omitempty"`
	FailedStep string            `json:"failedStep,omitempty"`
	Error      *Error            `json:"error,omitempty"`

	Summary  Summary   `json:"summary"`
	Commands []Command `json:"commands"`
}

// RunnerInfo contains reel-publisher information.
type RunnerInfo struct {
	Version string `json:"version"`
	Driver  string `json:"driver"` // playwright, mock
}

// Summary contains aggregated counts.
type Summary struct {
	Total   int  `json:"total"`
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Skipped int  `json:"skipped"`
	Running int  `json:"running"`
	Pending int  `json:"pending"`
	Current *int `json:"current,omitempty"` // Currently running command index
}

// Command represents a single pipeline step.
type Command struct {
	ID        string           `json:"id"`
	Index     int              `json:"index"`
	Type      string           `json:"type"`
	Label     string           `json:"label,omitempty"`
	Describe  string           `json:"describe,omitempty"`
	Status    Status           `json:"status"`
	StartTime *time.Time       `json:"startTime,omitempty"`
	EndTime   *time.Time       `json:"endTime,omitempty"`
	Duration  *int64           `json:"duration,omitempty"` // milliseconds
	Params    *CommandParams   `json:"params,omitempty"`
	Element   *Element         `json:"element,omitempty"`
	Message   string           `json:"message,omitempty"`
	Warning   string           `json:"warning,omitempty"`
	Error     *Error           `json:"error,omitempty"`
	Artifacts CommandArtifacts `json:"artifacts"`
}

// CommandParams contains command-specific parameters.
type CommandParams struct {
	Selector string   `json:"selector,omitempty"` // Logical name of the target
	Locators []string `json:"locators,omitempty"` // Candidates in resolution order
	Text     string   `json:"text,omitempty"`
	Timeout  int      `json:"timeout,omitempty"` // Per-candidate wait, milliseconds
}

// Element contains information about the resolved element.
type Element struct {
	Found      bool   `json:"found"`
	Locator    string `json:"locator,omitempty"`
	Candidate  int    `json:"candidate,omitempty"` // 1-based
	Candidates int    `json:"candidates,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // config, auth, not_found, transient, storage, browser
	Message string `json:"message"`
}

// CommandArtifacts contains command-level artifact paths.
type CommandArtifacts struct {
	Screenshot string `json:"screenshot,omitempty"`
}
