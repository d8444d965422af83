package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/flow"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
	"github.com/devicelab-dev/reel-publisher/pkg/resolver"
)

// Source tells how a session was obtained.
type Source string

// Session sources.
const (
	SourceRestored Source = "restored"
	SourceLogin    Source = "login"
)

// Options configures the Manager.
type Options struct {
	RootURL     string // Visited before cookie replay so the context accepts the domain
	LoginURL    string
	ValidateURL string // Authenticated-only page

	// AuthenticatedURLs are host+path prefixes of the authenticated area.
	AuthenticatedURLs []string

	SettleDelay      time.Duration // Before checking the validation URL
	FieldTimeout     time.Duration
	ConsentTimeout   time.Duration
	ChallengeTimeout time.Duration
	ChallengeSettle  time.Duration
	LoginTimeout     time.Duration
	PollInterval     time.Duration

	Selectors flow.LoginSelectors
}

// DefaultOptions returns options for the Buffer login flow.
func DefaultOptions() Options {
	return Options{
		RootURL:           "https://buffer.com",
		LoginURL:          "https://login.buffer.com/login",
		ValidateURL:       "https://publish.buffer.com/all-channels",
		AuthenticatedURLs: []string{"publish.buffer.com", "buffer.com/app"},
		SettleDelay:       3 * time.Second,
		FieldTimeout:      10 * time.Second,
		ConsentTimeout:    5 * time.Second,
		ChallengeTimeout:  10 * time.Second,
		ChallengeSettle:   3 * time.Second,
		LoginTimeout:      20 * time.Second,
		PollInterval:      500 * time.Millisecond,
		Selectors:         flow.DefaultLoginSelectors(),
	}
}

// Result describes an acquired session.
type Result struct {
	Source  Source
	Cookies int    // Cookies installed (restored) or persisted (login)
	Skipped int    // Cookies skipped on replay
	URL     string // URL that proved the session authenticated

	// Persisted is set when a login wrote its cookies to the store.
	Persisted bool
}

// Info converts the result to report form.
func (r *Result) Info() *core.SessionInfo {
	return &core.SessionInfo{
		Source:   string(r.Source),
		Cookies:  r.Cookies,
		Skipped:  r.Skipped,
		FinalURL: r.URL,
	}
}

// Manager acquires an authenticated session for a browser.
type Manager struct {
	store Store
	opts  Options
	diag  *core.Diagnostics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewManager creates a Manager persisting to store. diag may be nil.
func NewManager(store Store, opts Options, diag *core.Diagnostics) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	return &Manager{
		store: store,
		opts:  opts,
		diag:  diag,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Acquire restores the persisted session and falls back to credential login
// when nothing valid was persisted. It returns an auth error when neither
// path yields an authenticated page.
func (m *Manager) Acquire(ctx context.Context, b core.Browser, cred core.Credential) (*Result, error) {
	res, err := m.Restore(ctx, b)
	if err == nil {
		logger.Info("session restored: %d cookies (%d skipped)", res.Cookies, res.Skipped)
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	logger.Info("no reusable session (%v), logging in", err)

	return m.Login(ctx, b, cred)
}

// Restore replays the persisted cookies and validates them.
func (m *Manager) Restore(ctx context.Context, b core.Browser) (*Result, error) {
	s, err := m.store.Load()
	if err != nil {
		logger.Warn("session store unreadable, treating as empty: %v", err)
		return nil, core.ErrNoSession.WithCause(err)
	}
	if s == nil || len(s.Cookies) == 0 {
		return nil, core.ErrNoSession.WithMessage("no persisted session")
	}

	if err := b.Navigate(m.opts.RootURL); err != nil {
		return nil, core.ErrBrowser.WithMessage("cannot open " + m.opts.RootURL).WithCause(err)
	}

	host := strings.TrimPrefix(HostOf(m.opts.RootURL), "www.")
	ready, skipped := PrepareReplay(s.Cookies, host, m.now())

	added := 0
	for _, c := range ready {
		if err := b.AddCookie(c); err != nil {
			logger.Debug("skipping cookie %s (%s): %v", c.Name, c.Domain, err)
			skipped++
			continue
		}
		added++
	}
	logger.Info("replayed %d/%d cookies for %s", added, len(s.Cookies), host)
	if added == 0 {
		return nil, core.ErrNoSession.WithMessage("no persisted cookie could be replayed")
	}

	ok, current, err := m.Validate(ctx, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrNoSession.
			WithMessage("persisted session is no longer valid").
			WithDetails(map[string]interface{}{"url": current})
	}

	return &Result{Source: SourceRestored, Cookies: added, Skipped: skipped, URL: current}, nil
}

// Validate opens the authenticated-only page and reports whether the browser
// stayed inside the authenticated area.
func (m *Manager) Validate(ctx context.Context, b core.Browser) (bool, string, error) {
	if err := b.Navigate(m.opts.ValidateURL); err != nil {
		return false, "", core.ErrBrowser.WithMessage("cannot open " + m.opts.ValidateURL).WithCause(err)
	}
	if err := m.sleep(ctx, m.opts.SettleDelay); err != nil {
		return false, "", err
	}

	current := b.CurrentURL()
	ok := IsAuthenticatedURL(current, m.opts.AuthenticatedURLs)
	logger.Debug("validation landed on %s (authenticated=%v)", current, ok)
	return ok, current, nil
}

// Login performs the interactive credential login and persists the
// resulting cookies. Nothing is persisted when the login fails.
func (m *Manager) Login(ctx context.Context, b core.Browser, cred core.Credential) (*Result, error) {
	if !cred.IsComplete() {
		return nil, core.ErrMissingCredential
	}

	sel := m.opts.Selectors
	if err := b.Navigate(m.opts.LoginURL); err != nil {
		m.capture(b, "login_exception")
		return nil, core.ErrNoSession.WithMessage("cannot open " + m.opts.LoginURL).WithCause(err)
	}

	logger.Info("consent prompt: %s", m.dismissConsent(ctx, b))
	logger.Info("verification challenge: %s", m.acknowledgeChallenge(ctx, b))

	if err := m.fill(ctx, b, sel.Email, cred.Identifier); err != nil {
		m.capture(b, "login_exception")
		return nil, err
	}
	if err := m.fill(ctx, b, sel.Password, cred.Secret); err != nil {
		m.capture(b, "login_exception")
		return nil, err
	}

	submit, err := resolver.Clickable(ctx, b, sel.Submit, m.opts.FieldTimeout)
	if err != nil {
		m.capture(b, "login_exception")
		return nil, core.ErrNoSession.WithMessage("login form has no submit button").WithCause(err)
	}
	if err := submit.Element.Click(); err != nil {
		m.capture(b, "login_exception")
		return nil, core.ErrNoSession.WithMessage("cannot submit login form").WithCause(err)
	}

	inlineErr := m.awaitOutcome(ctx, b)

	current := b.CurrentURL()
	title, _ := b.Title()
	logger.Info("after login: url=%s title=%q", current, title)

	if !IsAuthenticatedURL(current, m.opts.AuthenticatedURLs) {
		m.capture(b, "login_failed")
		if inlineErr != "" {
			return nil, core.ErrLoginRejected.
				WithMessage("login rejected: " + inlineErr).
				WithDetails(map[string]interface{}{"url": current})
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, core.ErrLoginTimeout.WithDetails(map[string]interface{}{"url": current})
	}

	cookies, err := b.Cookies()
	if err != nil {
		logger.Warn("logged in but cookies are unreadable, session not persisted: %v", err)
		return &Result{Source: SourceLogin, URL: current}, nil
	}
	res := &Result{Source: SourceLogin, Cookies: len(cookies), URL: current}
	if err := m.store.Save(&Session{Cookies: cookies, Origin: m.opts.RootURL, SavedAt: m.now().UTC()}); err != nil {
		logger.Warn("session not persisted: %v", err)
	} else {
		logger.Info("persisted %d cookies", len(cookies))
		res.Persisted = true
	}
	return res, nil
}

// fill clears a login field and types value into it.
func (m *Manager) fill(ctx context.Context, b core.Browser, sel flow.Selector, value string) error {
	match, err := resolver.Present(ctx, b, sel, m.opts.FieldTimeout)
	if err != nil {
		return core.ErrNoSession.WithMessage("login form has no " + sel.Describe()).WithCause(err)
	}
	if err := match.Element.Clear(); err != nil {
		return core.ErrNoSession.WithMessage("cannot clear " + sel.Describe()).WithCause(err)
	}
	if err := match.Element.Type(value); err != nil {
		return core.ErrNoSession.WithMessage("cannot fill " + sel.Describe()).WithCause(err)
	}
	return nil
}

// dismissConsent clicks the cookie consent button when one is shown.
func (m *Manager) dismissConsent(ctx context.Context, b core.Browser) Outcome {
	match, err := resolver.Clickable(ctx, b, m.opts.Selectors.Consent, m.opts.ConsentTimeout)
	if err != nil {
		return OutcomeNotPresent
	}
	if err := match.Element.Click(); err != nil {
		logger.Warn("consent prompt could not be dismissed: %v", err)
		return OutcomeFailedIgnored
	}
	return OutcomeHandled
}

// acknowledgeChallenge ticks the bot-verification checkbox inside its frame.
func (m *Manager) acknowledgeChallenge(ctx context.Context, b core.Browser) Outcome {
	sel := m.opts.Selectors
	frame, err := findFrame(ctx, b, sel.ChallengeFrame, m.opts.ChallengeTimeout)
	if err != nil {
		return OutcomeNotPresent
	}

	match, err := resolver.Clickable(ctx, frame, sel.ChallengeCheckbox, m.opts.ChallengeTimeout)
	if err != nil {
		logger.Warn("verification checkbox not found: %v", err)
		return OutcomeFailedIgnored
	}
	if err := match.Element.Click(); err != nil {
		logger.Warn("verification checkbox could not be clicked: %v", err)
		return OutcomeFailedIgnored
	}
	if err := m.sleep(ctx, m.opts.ChallengeSettle); err != nil {
		return OutcomeFailedIgnored
	}
	return OutcomeHandled
}

// awaitOutcome polls until the URL enters the authenticated area or an
// inline error appears, bounded by LoginTimeout. It returns the inline error
// text, if any.
func (m *Manager) awaitOutcome(ctx context.Context, b core.Browser) string {
	wctx, cancel := context.WithTimeout(ctx, m.opts.LoginTimeout)
	defer cancel()

	for {
		if IsAuthenticatedURL(b.CurrentURL(), m.opts.AuthenticatedURLs) {
			return ""
		}
		if m.opts.Selectors.Error.IsEmpty() {
			if err := m.sleep(wctx, m.opts.PollInterval); err != nil {
				return ""
			}
			continue
		}
		started := time.Now()
		if match, err := resolver.Present(wctx, b, m.opts.Selectors.Error, m.opts.PollInterval); err == nil {
			text, _ := match.Element.Text()
			text = strings.TrimSpace(text)
			if text == "" {
				text = "login error shown"
			}
			logger.Warn("login error: %s", text)
			return text
		}
		// A lookup that fails at once still waits out the poll interval.
		if rest := m.opts.PollInterval - time.Since(started); rest > 0 {
			if err := m.sleep(wctx, rest); err != nil {
				return ""
			}
		}
		if wctx.Err() != nil {
			return ""
		}
	}
}

func (m *Manager) capture(b core.Browser, name string) {
	if _, err := m.diag.Capture(b, name, core.StatusErrored); err != nil {
		logger.Warn("diagnostic screenshot failed: %v", err)
	}
}

// findFrame waits for the first frame candidate that appears.
func findFrame(ctx context.Context, b core.Browser, sel flow.Selector, perCandidate time.Duration) (core.Finder, error) {
	var lastErr error
	for _, c := range sel.Candidates {
		fctx, cancel := context.WithTimeout(ctx, perCandidate)
		frame, err := b.Frame(fctx, c.Query())
		cancel()
		if err == nil {
			return frame, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no frame candidates")
	}
	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
