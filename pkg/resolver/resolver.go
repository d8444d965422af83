// Package resolver finds one logical element through an ordered list of
// locator candidates.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
)

// DefaultCandidateTimeout is the wait per candidate when none is given.
const DefaultCandidateTimeout = 5 * time.Second

// Match is a resolved element and the candidate that produced it.
type Match struct {
	Element  core.Element
	Locator  flow.Locator
	Index    int // 0-based position in the candidate list
	Attempts int // candidates tried, including the match
	Total    int
}

// Info converts the match to report form.
func (m *Match) Info() *core.ElementInfo {
	return &core.ElementInfo{
		Locator:        m.Locator.Query(),
		CandidateIndex: m.Index + 1,
		Candidates:     m.Total,
	}
}

// Resolve tries each candidate of sel in order, waiting up to perCandidate
// for mode to hold, and returns the first element found. When every
// candidate is exhausted it returns core.ErrElementNotFound.
// Cancelling ctx stops the search before the next candidate.
func Resolve(ctx context.Context, f core.Finder, sel flow.Selector, perCandidate time.Duration, mode core.WaitMode) (*Match, error) {
	if len(sel.Candidates) == 0 {
		return nil, core.ErrInvalidConfig.WithMessagef("selector %q has no candidates", sel.Describe())
	}
	if perCandidate <= 0 {
		perCandidate = DefaultCandidateTimeout
	}

	var lastErr error
	for i, candidate := range sel.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		el, err := find(ctx, f, candidate, perCandidate, mode)
		if err == nil {
			logger.Debug("resolved %q with candidate %d/%d: %s", sel.Describe(), i+1, len(sel.Candidates), candidate.Query())
			return &Match{
				Element:  el,
				Locator:  candidate,
				Index:    i,
				Attempts: i + 1,
				Total:    len(sel.Candidates),
			}, nil
		}
		logger.Debug("candidate %d/%d for %q not %s: %s", i+1, len(sel.Candidates), sel.Describe(), mode, candidate.Query())
		lastErr = err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, core.ErrElementNotFound.
		WithMessage(fmt.Sprintf("%s not found", sel.Describe())).
		WithDetails(map[string]interface{}{
			"selector":   sel.Describe(),
			"candidates": len(sel.Candidates),
			"mode":       mode.String(),
			"timeoutMs":  perCandidate.Milliseconds(),
		}).
		WithCause(lastErr)
}

// find waits for a single candidate with its own deadline.
func find(ctx context.Context, f core.Finder, l flow.Locator, timeout time.Duration, mode core.WaitMode) (core.Element, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return f.FindElement(cctx, l.Query(), mode)
}

// Present resolves sel waiting for presence.
func Present(ctx context.Context, f core.Finder, sel flow.Selector, perCandidate time.Duration) (*Match, error) {
	return Resolve(ctx, f, sel, perCandidate, core.WaitPresent)
}

// Clickable resolves sel waiting for visibility and enabled state.
func Clickable(ctx context.Context, f core.Finder, sel flow.Selector, perCandidate time.Duration) (*Match, error) {
	return Resolve(ctx, f, sel, perCandidate, core.WaitClickable)
}

// WaitAny waits up to timeout for any candidate of sel to be present.
// Candidates share the budget by polling in turn; it is used for
// confirmation markers where no element handle is needed.
func WaitAny(ctx context.Context, f core.Finder, sel flow.Selector, timeout time.Duration) error {
	if len(sel.Candidates) == 1 {
		_, err := find(ctx, f, sel.Candidates[0], timeout, core.WaitPresent)
		return err
	}
	_, err := Resolve(ctx, f, sel, timeout/time.Duration(max(len(sel.Candidates), 1)), core.WaitPresent)
	return err
}

// WaitGone waits up to timeout for every candidate of sel to be hidden or
// detached.
func WaitGone(ctx context.Context, f core.Finder, sel flow.Selector, timeout time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for _, candidate := range sel.Candidates {
		if err := f.WaitHidden(cctx, candidate.Query()); err != nil {
			return err
		}
	}
	return nil
}
