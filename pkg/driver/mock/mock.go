// Package mock provides a scriptable in-memory browser for testing without a
// real browser.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
)

var (
	_ core.Browser = (*Browser)(nil)
	_ core.Element = (*Element)(nil)
)

// pollInterval is how often blocking lookups re-check the page.
const pollInterval = 5 * time.Millisecond

// Browser is a mock implementation of core.Browser for testing.
type Browser struct {
	// Configuration
	Config Config

	mu      sync.Mutex
	url     string
	cookies []core.Cookie
	visited []string
	lookups []string
	actions []string
	shots   int
	closed  bool
}

// Config configures mock browser behavior.
type Config struct {
	// Pages maps a URL to the document served there.
	Pages map[string]*Page

	// Route maps a requested URL to the URL the browser lands on, given the
	// current cookie jar. nil means no redirects.
	Route func(url string, cookies []core.Cookie) string

	// RejectCookie makes AddCookie fail for matching cookies.
	RejectCookie func(c core.Cookie) bool

	// NavigateErr fails every navigation.
	NavigateErr error
	// ScreenshotErr fails every screenshot.
	ScreenshotErr error
	// CookiesErr fails reading the cookie jar.
	CookiesErr error
}

// Page is a document with elements keyed by locator query.
type Page struct {
	Title    string
	Elements map[string]*Element
	Frames   map[string]*Page
}

// NewPage creates a page with the given title.
func NewPage(title string) *Page {
	return &Page{Title: title, Elements: map[string]*Element{}, Frames: map[string]*Page{}}
}

// Add registers el under query and returns the page for chaining.
func (p *Page) Add(query string, el *Element) *Page {
	if p.Elements == nil {
		p.Elements = map[string]*Element{}
	}
	el.query = query
	p.Elements[query] = el
	return p
}

// AddFrame registers a nested document under query.
func (p *Page) AddFrame(query string, frame *Page) *Page {
	if p.Frames == nil {
		p.Frames = map[string]*Page{}
	}
	p.Frames[query] = frame
	return p
}

// Element is a scriptable DOM element.
type Element struct {
	Content  string
	Hidden   bool // attached but not visible
	Disabled bool

	// ActionErr fails every interaction with the element.
	ActionErr error

	// OnClick runs after a successful click, e.g. to navigate.
	OnClick func(b *Browser)

	query   string
	browser *Browser
	clicks  int
	clears  int
	typed   []string
	files   []string
}

// New creates a new mock browser.
func New(cfg Config) *Browser {
	if cfg.Pages == nil {
		cfg.Pages = map[string]*Page{}
	}
	return &Browser{Config: cfg, url: "about:blank"}
}

// Navigate loads url, following Route.
func (b *Browser) Navigate(url string) error {
	b.mu.Lock()
	b.visited = append(b.visited, url)
	if b.Config.NavigateErr != nil {
		b.mu.Unlock()
		return b.Config.NavigateErr
	}
	final := url
	if b.Config.Route != nil {
		final = b.Config.Route(url, append([]core.Cookie(nil), b.cookies...))
	}
	b.url = final
	b.mu.Unlock()
	return nil
}

// SetURL moves the browser to url without recording a navigation,
// like a client-side redirect.
func (b *Browser) SetURL(url string) {
	b.mu.Lock()
	b.url = url
	b.mu.Unlock()
}

// CurrentURL returns the current URL.
func (b *Browser) CurrentURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}

// Title returns the current page title.
func (b *Browser) Title() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.Config.Pages[b.url]; p != nil {
		return p.Title, nil
	}
	return "", nil
}

// FindElement waits for locator on the current page.
func (b *Browser) FindElement(ctx context.Context, locator string, mode core.WaitMode) (core.Element, error) {
	return b.find(ctx, func() *Page { return b.currentPage() }, locator, mode)
}

// WaitHidden waits until no visible element matches locator on the current page.
func (b *Browser) WaitHidden(ctx context.Context, locator string) error {
	return b.waitHidden(ctx, func() *Page { return b.currentPage() }, locator)
}

// Frame waits for a nested document matching locator.
func (b *Browser) Frame(ctx context.Context, locator string) (core.Finder, error) {
	b.record(&b.lookups, locator)
	for {
		b.mu.Lock()
		var frame *Page
		if p := b.Config.Pages[b.url]; p != nil {
			frame = p.Frames[locator]
		}
		b.mu.Unlock()
		if frame != nil {
			return &frameFinder{browser: b, page: frame}, nil
		}
		if err := sleep(ctx); err != nil {
			return nil, fmt.Errorf("frame %s: %w", locator, err)
		}
	}
}

// Cookies returns a copy of the cookie jar.
func (b *Browser) Cookies() ([]core.Cookie, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Config.CookiesErr != nil {
		return nil, b.Config.CookiesErr
	}
	return append([]core.Cookie(nil), b.cookies...), nil
}

// AddCookie installs c, replacing any cookie with the same name, domain and path.
func (b *Browser) AddCookie(c core.Cookie) error {
	if c.Domain == "" {
		return fmt.Errorf("cookie %s: domain is required", c.Name)
	}
	if b.Config.RejectCookie != nil && b.Config.RejectCookie(c) {
		return fmt.Errorf("cookie %s: rejected for domain %s", c.Name, c.Domain)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.cookies {
		if existing.Name == c.Name && existing.Domain == c.Domain && existing.Path == c.Path {
			b.cookies[i] = c
			return nil
		}
	}
	b.cookies = append(b.cookies, c)
	return nil
}

// SetCookies replaces the cookie jar, as if a login set them.
func (b *Browser) SetCookies(cookies ...core.Cookie) {
	b.mu.Lock()
	b.cookies = append([]core.Cookie(nil), cookies...)
	b.mu.Unlock()
}

// Screenshot returns a mock PNG image.
func (b *Browser) Screenshot() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Config.ScreenshotErr != nil {
		return nil, b.Config.ScreenshotErr
	}
	b.shots++
	// Minimal valid PNG (1x1 transparent pixel)
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}

// Close marks the browser closed.
func (b *Browser) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

// Visited returns every requested navigation URL in order.
func (b *Browser) Visited() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.visited...)
}

// Lookups returns every locator query attempted, in order.
func (b *Browser) Lookups() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lookups...)
}

// Actions returns the element interactions in order, e.g. "click xpath=//a".
func (b *Browser) Actions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.actions...)
}

// Screenshots returns how many screenshots were taken.
func (b *Browser) Screenshots() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shots
}

// Closed reports whether Close was called.
func (b *Browser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// HasVisited reports whether any requested URL starts with prefix.
func (b *Browser) HasVisited(prefix string) bool {
	for _, u := range b.Visited() {
		if strings.HasPrefix(u, prefix) {
			return true
		}
	}
	return false
}

func (b *Browser) currentPage() *Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Config.Pages[b.url]
}

func (b *Browser) record(list *[]string, entry string) {
	b.mu.Lock()
	*list = append(*list, entry)
	b.mu.Unlock()
}

func (b *Browser) find(ctx context.Context, page func() *Page, locator string, mode core.WaitMode) (core.Element, error) {
	b.record(&b.lookups, locator)
	for {
		if el := lookup(page(), locator); el != nil && el.satisfies(mode) {
			el.browser = b
			return el, nil
		}
		if err := sleep(ctx); err != nil {
			return nil, fmt.Errorf("waiting for %s (%s): %w", locator, mode, err)
		}
	}
}

func (b *Browser) waitHidden(ctx context.Context, page func() *Page, locator string) error {
	for {
		el := lookup(page(), locator)
		if el == nil || el.Hidden {
			return nil
		}
		if err := sleep(ctx); err != nil {
			return fmt.Errorf("waiting for %s to hide: %w", locator, err)
		}
	}
}

func lookup(p *Page, locator string) *Element {
	if p == nil {
		return nil
	}
	return p.Elements[locator]
}

func sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(pollInterval):
		return nil
	}
}

// frameFinder scopes lookups to a nested document.
type frameFinder struct {
	browser *Browser
	page    *Page
}

func (f *frameFinder) FindElement(ctx context.Context, locator string, mode core.WaitMode) (core.Element, error) {
	return f.browser.find(ctx, func() *Page { return f.page }, locator, mode)
}

func (f *frameFinder) WaitHidden(ctx context.Context, locator string) error {
	return f.browser.waitHidden(ctx, func() *Page { return f.page }, locator)
}

func (e *Element) satisfies(mode core.WaitMode) bool {
	if mode == core.WaitClickable {
		return !e.Hidden && !e.Disabled
	}
	return true
}

func (e *Element) act(action string) error {
	if e.browser != nil {
		e.browser.record(&e.browser.actions, action+" "+e.query)
	}
	return e.ActionErr
}

// Click clicks the element and runs OnClick.
func (e *Element) Click() error {
	if err := e.act("click"); err != nil {
		return err
	}
	e.clicks++
	if e.OnClick != nil {
		e.OnClick(e.browser)
	}
	return nil
}

// Clear empties the element's text.
func (e *Element) Clear() error {
	if err := e.act("clear"); err != nil {
		return err
	}
	e.clears++
	e.Content = ""
	return nil
}

// Type appends text to the element.
func (e *Element) Type(text string) error {
	if err := e.act("type"); err != nil {
		return err
	}
	e.typed = append(e.typed, text)
	e.Content += text
	return nil
}

// SetFiles attaches files to the element.
func (e *Element) SetFiles(paths ...string) error {
	if err := e.act("setFiles"); err != nil {
		return err
	}
	e.files = append(e.files, paths...)
	return nil
}

// Text returns the element text.
func (e *Element) Text() (string, error) {
	return e.Content, nil
}

// Clicks returns how many times the element was clicked.
func (e *Element) Clicks() int { return e.clicks }

// Typed returns every string typed into the element.
func (e *Element) Typed() []string { return append([]string(nil), e.typed...) }

// Files returns the attached file paths.
func (e *Element) Files() []string { return append([]string(nil), e.files...) }
