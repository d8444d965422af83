package playwright

import (
	"fmt"
	"strings"

	pw "github.com/playwright-community/playwright-go"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
)

// toPlaywrightCookie converts c to the form AddCookies accepts.
// Expires <= 0 leaves the cookie a session cookie.
func toPlaywrightCookie(c core.Cookie) (pw.OptionalCookie, error) {
	if c.Name == "" {
		return pw.OptionalCookie{}, fmt.Errorf("cookie name is required")
	}
	if c.Domain == "" {
		return pw.OptionalCookie{}, fmt.Errorf("cookie %s: domain is required", c.Name)
	}

	path := c.Path
	if path == "" {
		path = "/"
	}
	oc := pw.OptionalCookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   pw.String(c.Domain),
		Path:     pw.String(path),
		HttpOnly: pw.Bool(c.HTTPOnly),
		Secure:   pw.Bool(c.Secure),
		SameSite: sameSite(c.SameSite),
	}
	if c.Expires > 0 {
		oc.Expires = pw.Float(c.Expires)
	}
	// SameSite=None is only accepted on secure cookies.
	if oc.SameSite == pw.SameSiteAttributeNone && !c.Secure {
		oc.SameSite = pw.SameSiteAttributeLax
	}
	return oc, nil
}

func fromPlaywrightCookie(c pw.Cookie) core.Cookie {
	out := core.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		HTTPOnly: c.HttpOnly,
		Secure:   c.Secure,
	}
	if c.SameSite != nil {
		out.SameSite = string(*c.SameSite)
	}
	return out
}

// sameSite maps a stored SameSite value to playwright's enum. Unknown
// values yield nil so the browser default applies.
func sameSite(v string) *pw.SameSiteAttribute {
	switch strings.ToLower(v) {
	case "strict":
		return pw.SameSiteAttributeStrict
	case "lax":
		return pw.SameSiteAttributeLax
	case "none", "no_restriction":
		return pw.SameSiteAttributeNone
	default:
		return nil
	}
}
