package core

import (
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/flow"
)

// StepResult captures the complete outcome of executing a single step
type StepResult struct {
	// Identity
	Step    flow.Step `json:"-"`       // Reference to the step definition
	Index   int       `json:"index"`   // 0-based position in flow
	Command string    `json:"command"` // Step type: openComposer, uploadMedia, etc.
	Label   string    `json:"label,omitempty"`

	// Status
	Status   StepStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Output
	Message string       `json:"message,omitempty"` // Human-readable explanation
	Warning string       `json:"warning,omitempty"` // Unobserved confirmation
	Element *ElementInfo `json:"element,omitempty"` // Locator that resolved the step target

	// Error Details
	Error string `json:"error,omitempty"` // Technical error message

	// Debug Artifacts
	Logs        []LogEntry   `json:"logs,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"` // Screenshots
}

// SessionInfo records how the authenticated session was obtained.
type SessionInfo struct {
	Source   string `json:"source"` // restored, login
	Cookies  int    `json:"cookies"`
	Skipped  int    `json:"skipped,omitempty"` // cookies the browser rejected on replay
	FinalURL string `json:"finalUrl,omitempty"`
}

// FlowResult captures the complete outcome of executing a flow
type FlowResult struct {
	// Identity
	Name  string `json:"name"`
	RunID string `json:"runId,omitempty"`

	Session *SessionInfo `json:"session,omitempty"`

	// Status (aggregated from steps)
	Status StepStatus `json:"status"`

	// State machine outcome
	FinalState string `json:"finalState"`
	FailedStep string `json:"failedStep,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Steps []StepResult `json:"steps"`

	// Summary (computed)
	TotalSteps   int `json:"totalSteps"`
	PassedSteps  int `json:"passedSteps"`
	FailedSteps  int `json:"failedSteps"`
	SkippedSteps int `json:"skippedSteps"`
	WarnedSteps  int `json:"warnedSteps"`

	// Error info (if flow failed)
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ComputeSummary calculates step counts from the Steps slice
func (f *FlowResult) ComputeSummary() {
	f.TotalSteps = len(f.Steps)
	f.PassedSteps = 0
	f.FailedSteps = 0
	f.SkippedSteps = 0
	f.WarnedSteps = 0

	for _, step := range f.Steps {
		switch step.Status {
		case StatusPassed:
			f.PassedSteps++
		case StatusFailed, StatusErrored:
			f.FailedSteps++
		case StatusSkipped:
			f.SkippedSteps++
		case StatusWarned:
			f.WarnedSteps++
		}
	}
}

// hasFailure checks if any step in the slice has failed or errored
func hasFailure(steps []StepResult) bool {
	for _, step := range steps {
		if step.Status == StatusFailed || step.Status == StatusErrored {
			return true
		}
	}
	return false
}

// hasWarning checks if any step in the slice has warned status
func hasWarning(steps []StepResult) bool {
	for _, step := range steps {
		if step.Status == StatusWarned {
			return true
		}
	}
	return false
}

// AggregateStatus determines the flow status from step results
// Rules:
// - Any failed/errored step → StatusFailed
// - All passed with some warned → StatusWarned
// - All passed → StatusPassed
func (f *FlowResult) AggregateStatus() StepStatus {
	if hasFailure(f.Steps) {
		return StatusFailed
	}
	if hasWarning(f.Steps) {
		return StatusWarned
	}
	return StatusPassed
}

// Success returns true if the flow completed (passed or warned)
func (f *FlowResult) Success() bool {
	return f.Status.IsSuccess()
}
