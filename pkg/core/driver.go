package core

import (
	"context"
	"time"
)

// WaitMode is the condition an element lookup waits for.
type WaitMode int

const (
	// WaitPresent waits for the element to be attached to the DOM.
	WaitPresent WaitMode = iota
	// WaitClickable waits for the element to be visible and enabled.
	WaitClickable
)

// String returns the string representation of WaitMode
func (m WaitMode) String() string {
	switch m {
	case WaitPresent:
		return "presence"
	case WaitClickable:
		return "clickable"
	default:
		return "unknown"
	}
}

// Element is a handle to a single resolved DOM element.
type Element interface {
	Click() error
	Clear() error
	// Type sends text as key presses to the element.
	Type(text string) error
	// SetFiles attaches local files to a file input.
	SetFiles(paths ...string) error
	Text() (string, error)
}

// Finder locates elements inside a document or a nested browsing context.
// Lookups block until the condition holds or ctx is done.
type Finder interface {
	FindElement(ctx context.Context, locator string, mode WaitMode) (Element, error)

	// WaitHidden blocks until no visible element matches locator.
	WaitHidden(ctx context.Context, locator string) error
}

// Browser is the control handle for one page of a remote browser.
// Implementations: playwright (Chromium), mock.
// A Browser is exclusively owned by one run; it is not safe for concurrent use.
type Browser interface {
	Finder

	// Navigate loads url and waits for the load event.
	Navigate(url string) error

	// CurrentURL returns the URL of the top-level document.
	CurrentURL() string

	Title() (string, error)

	// Frame waits for an iframe matching locator and returns a Finder scoped to it.
	Frame(ctx context.Context, locator string) (Finder, error)

	// Cookies returns all cookies of the browser context.
	Cookies() ([]Cookie, error)

	// AddCookie installs one cookie into the browser context.
	AddCookie(c Cookie) error

	// Screenshot captures the current viewport as PNG
	Screenshot() ([]byte, error)

	Close() error
}

// Cookie is a browser cookie record as persisted and replayed.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"` // Unix seconds; <= 0 means session cookie
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"` // "Strict", "Lax", "None"
}

// IsExpired reports whether the cookie expired before now.
// Session cookies never expire.
func (c Cookie) IsExpired(now time.Time) bool {
	return c.Expires > 0 && c.Expires < float64(now.Unix())
}

// IsWildcard reports whether the cookie domain is a parent-domain wildcard
// (".example.com").
func (c Cookie) IsWildcard() bool {
	return len(c.Domain) > 1 && c.Domain[0] == '.'
}

// CommandResult represents the outcome of executing a single pipeline step
type CommandResult struct {
	// Core outcome
	Success  bool          `json:"success"`
	Error    error         `json:"-"`
	Duration time.Duration `json:"duration"`

	// Human-readable output
	Message string `json:"message,omitempty"`

	// Warning is set when the action was performed but its confirmation was
	// not observed. The step still counts as a success.
	Warning string `json:"warning,omitempty"`

	// Element information (for the locator that matched)
	Element *ElementInfo `json:"element,omitempty"`

	// Attachments captured while executing the step
	Attachments []Attachment `json:"attachments,omitempty"`
}

// ElementInfo describes how an element was resolved.
type ElementInfo struct {
	Locator        string `json:"locator"`
	CandidateIndex int    `json:"candidateIndex"` // 1-based position in the candidate list
	Candidates     int    `json:"candidates"`
	Text           string `json:"text,omitempty"`
}

// LogEntry represents a single log message captured during execution
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // debug, info, warn, error
	Message   string    `json:"message"`
}
