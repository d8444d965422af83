// Package playwright implements core.Browser on a Chromium instance driven
// through playwright-go.
package playwright

import (
	"context"
	"fmt"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
)

// Compile-time interface checks.
var (
	_ core.Browser = (*Browser)(nil)
	_ core.Element = (*Element)(nil)
	_ core.Finder  = (*frame)(nil)
)

const (
	defaultWidth      = 1920
	defaultHeight     = 1080
	defaultNavTimeout = 60 * time.Second
	defaultWait       = 10 * time.Second
	enabledPoll       = 100 * time.Millisecond
)

// Options configures the browser launch.
type Options struct {
	Headless       bool
	NoSandbox      bool
	Width          int
	Height         int
	ExecutablePath string        // Chromium binary; empty uses the bundled one
	Args           []string      // Extra command-line switches
	NavTimeout     time.Duration // Per navigation

	Install   bool   // Download the driver and Chromium when missing
	DriverDir string // Where the driver is installed; empty uses the default
	Verbose   bool   // Show installer output
}

// Browser is a single page in a fresh browser context.
type Browser struct {
	pw      *pw.Playwright
	browser pw.Browser
	context pw.BrowserContext
	page    pw.Page
	opts    Options
}

// Launch starts Chromium with opts and opens a blank page.
func Launch(opts Options) (*Browser, error) {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = defaultNavTimeout
	}

	runOpts := runOptions(opts)
	if opts.Install {
		logger.Info("installing playwright driver and chromium")
		if err := pw.Install(runOpts); err != nil {
			return nil, core.ErrBrowser.WithMessage("failed to install playwright").WithCause(err)
		}
	}

	p, err := pw.Run(runOpts)
	if err != nil {
		return nil, core.ErrBrowser.WithMessage("failed to start playwright").WithCause(err)
	}

	browser, err := p.Chromium.Launch(launchOptions(opts))
	if err != nil {
		_ = p.Stop()
		return nil, core.ErrBrowser.WithMessage("failed to launch chromium").WithCause(err)
	}

	bctx, err := browser.NewContext(pw.BrowserNewContextOptions{
		Viewport: &pw.Size{Width: opts.Width, Height: opts.Height},
	})
	if err != nil {
		_ = browser.Close()
		_ = p.Stop()
		return nil, core.ErrBrowser.WithMessage("failed to create context").WithCause(err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = p.Stop()
		return nil, core.ErrBrowser.WithMessage("failed to create page").WithCause(err)
	}

	logger.Info("chromium launched (headless=%v, %dx%d)", opts.Headless, opts.Width, opts.Height)
	return &Browser{pw: p, browser: browser, context: bctx, page: page, opts: opts}, nil
}

func runOptions(opts Options) *pw.RunOptions {
	ro := &pw.RunOptions{
		Browsers:        []string{"chromium"},
		DriverDirectory: opts.DriverDir,
		Verbose:         opts.Verbose,
	}
	if !opts.Verbose {
		ro.Stdout = logger.GetWriter()
		ro.Stderr = logger.GetWriter()
	}
	return ro
}

func launchOptions(opts Options) pw.BrowserTypeLaunchOptions {
	lo := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
		Args:     launchArgs(opts),
	}
	if opts.ExecutablePath != "" {
		lo.ExecutablePath = pw.String(opts.ExecutablePath)
	}
	return lo
}

// launchArgs returns the Chromium switches for opts.
func launchArgs(opts Options) []string {
	args := []string{"--disable-dev-shm-usage", "--disable-gpu"}
	if opts.NoSandbox {
		args = append(args, "--no-sandbox")
	}
	args = append(args, fmt.Sprintf("--window-size=%d,%d", opts.Width, opts.Height))
	return append(args, opts.Args...)
}

// Navigate loads url and waits for the load event.
func (b *Browser) Navigate(url string) error {
	_, err := b.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateLoad,
		Timeout:   pw.Float(float64(b.opts.NavTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL returns the page URL.
func (b *Browser) CurrentURL() string {
	return b.page.URL()
}

// Title returns the page title.
func (b *Browser) Title() (string, error) {
	return b.page.Title()
}

// FindElement waits for the first element matching locator to satisfy mode.
func (b *Browser) FindElement(ctx context.Context, locator string, mode core.WaitMode) (core.Element, error) {
	return find(ctx, b.page.Locator(locator).First(), locator, mode)
}

// WaitHidden waits until no visible element matches locator.
func (b *Browser) WaitHidden(ctx context.Context, locator string) error {
	return waitHidden(ctx, b.page.Locator(locator).First(), locator)
}

// Frame waits for an iframe matching locator and scopes lookups to it.
func (b *Browser) Frame(ctx context.Context, locator string) (core.Finder, error) {
	owner := b.page.Locator(locator).First()
	timeout, err := remaining(ctx)
	if err != nil {
		return nil, err
	}
	if err := owner.WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateAttached,
		Timeout: timeout,
	}); err != nil {
		return nil, fmt.Errorf("frame %s: %w", locator, err)
	}
	return &frame{fl: b.page.FrameLocator(locator).First()}, nil
}

// Cookies returns every cookie of the browser context.
func (b *Browser) Cookies() ([]core.Cookie, error) {
	cookies, err := b.context.Cookies()
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	out := make([]core.Cookie, len(cookies))
	for i, c := range cookies {
		out[i] = fromPlaywrightCookie(c)
	}
	return out, nil
}

// AddCookie installs c into the browser context.
func (b *Browser) AddCookie(c core.Cookie) error {
	oc, err := toPlaywrightCookie(c)
	if err != nil {
		return err
	}
	if err := b.context.AddCookies([]pw.OptionalCookie{oc}); err != nil {
		return fmt.Errorf("add cookie %s: %w", c.Name, err)
	}
	return nil
}

// Screenshot captures the viewport as PNG.
func (b *Browser) Screenshot() ([]byte, error) {
	return b.page.Screenshot(pw.PageScreenshotOptions{Type: pw.ScreenshotTypePng})
}

// Close shuts down the browser and the playwright driver.
func (b *Browser) Close() error {
	var firstErr error
	if err := b.context.Close(); err != nil {
		firstErr = err
	}
	if err := b.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := b.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// frame scopes lookups to an iframe document.
type frame struct {
	fl pw.FrameLocator
}

func (f *frame) FindElement(ctx context.Context, locator string, mode core.WaitMode) (core.Element, error) {
	return find(ctx, f.fl.Locator(locator).First(), locator, mode)
}

func (f *frame) WaitHidden(ctx context.Context, locator string) error {
	return waitHidden(ctx, f.fl.Locator(locator).First(), locator)
}

// find waits for loc to be attached (presence) or visible and enabled
// (clickable) until ctx expires.
func find(ctx context.Context, loc pw.Locator, query string, mode core.WaitMode) (core.Element, error) {
	state := pw.WaitForSelectorStateAttached
	if mode == core.WaitClickable {
		state = pw.WaitForSelectorStateVisible
	}

	for {
		timeout, err := remaining(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for %s (%s): %w", query, mode, err)
		}
		if err := loc.WaitFor(pw.LocatorWaitForOptions{State: state, Timeout: timeout}); err != nil {
			return nil, fmt.Errorf("waiting for %s (%s): %w", query, mode, err)
		}
		if mode != core.WaitClickable {
			return &Element{loc: loc}, nil
		}

		enabled, err := loc.IsEnabled()
		if err == nil && enabled {
			return &Element{loc: loc}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s to be enabled: %w", query, ctx.Err())
		case <-time.After(enabledPoll):
		}
	}
}

func waitHidden(ctx context.Context, loc pw.Locator, query string) error {
	timeout, err := remaining(ctx)
	if err != nil {
		return err
	}
	if err := loc.WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateHidden,
		Timeout: timeout,
	}); err != nil {
		return fmt.Errorf("waiting for %s to hide: %w", query, err)
	}
	return nil
}

// remaining converts the ctx deadline to a playwright timeout in
// milliseconds. Without a deadline the default wait applies.
func remaining(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := defaultWait
	if deadline, ok := ctx.Deadline(); ok {
		d = time.Until(deadline)
		if d <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	ms := float64(d.Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return pw.Float(ms), nil
}
