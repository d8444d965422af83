package core

// StepStatus represents the execution status of a step
type StepStatus int

const (
	StatusPending StepStatus = iota // Not yet started
	StatusRunning                   // Currently executing
	StatusPassed                    // Completed successfully
	StatusFailed                    // Expected element or outcome did not appear
	StatusErrored                   // Unexpected error (browser, storage, config)
	StatusSkipped                   // Previous step failed
	StatusWarned                    // Action performed but its confirmation was not observed
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	case StatusWarned:
		return "warned"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped, StatusWarned:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status indicates success (passed or warned)
func (s StepStatus) IsSuccess() bool {
	return s == StatusPassed || s == StatusWarned
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone      ErrorCategory = iota // No error
	ErrCategoryConfig                         // Missing credential, invalid configuration
	ErrCategoryAuth                           // Login rejected or no authenticated session
	ErrCategoryNotFound                       // Every locator candidate exhausted, no media file
	ErrCategoryTransient                      // Interaction failed or confirmation not observed
	ErrCategoryStorage                        // Session persistence failed
	ErrCategoryBrowser                        // Browser launch, navigation or protocol failure
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryAuth:
		return "auth"
	case ErrCategoryNotFound:
		return "not_found"
	case ErrCategoryTransient:
		return "transient"
	case ErrCategoryStorage:
		return "storage"
	case ErrCategoryBrowser:
		return "browser"
	default:
		return "unknown"
	}
}

// StatusFor maps an error category to the status of the step that raised it.
// Lookup failures are step failures; everything else is an error.
func StatusFor(c ErrorCategory) StepStatus {
	switch c {
	case ErrCategoryNone:
		return StatusPassed
	case ErrCategoryNotFound, ErrCategoryAuth:
		return StatusFailed
	default:
		return StatusErrored
	}
}
