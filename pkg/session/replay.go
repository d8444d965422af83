package session

import (
	"net/url"
	"strings"
	"time"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
)

// PrepareReplay returns the cookies that can be installed into a fresh
// browser context positioned on host. Wildcard and parent-domain cookies are
// rewritten to host, subdomain cookies are kept, and cookies for unrelated
// domains or already expired are skipped. The result never contains a
// wildcard domain.
func PrepareReplay(cookies []core.Cookie, host string, now time.Time) (ready []core.Cookie, skipped int) {
	host = normalizeHost(host)
	for _, c := range cookies {
		if c.Name == "" || c.IsExpired(now) {
			skipped++
			continue
		}

		domain := normalizeHost(c.Domain)
		switch {
		case domain == "" || domain == host || isSubdomain(host, domain):
			if c.IsWildcard() {
				logger.Debug("cookie %s: wildcard domain %s replayed on %s", c.Name, c.Domain, host)
			}
			c.Domain = host
		case isSubdomain(domain, host):
			c.Domain = domain
		default:
			skipped++
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		ready = append(ready, c)
	}
	return ready, skipped
}

// HostOf returns the lower-cased host of rawURL without port.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// IsAuthenticatedURL reports whether rawURL belongs to the authenticated
// area. Each prefix is a host with an optional path ("publish.example.com",
// "example.com/app"); the URL's host and path must start with it on a
// segment boundary. A leading "www." is ignored on both sides.
func IsAuthenticatedURL(rawURL string, prefixes []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	target := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") + u.EscapedPath()

	for _, p := range prefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		p = strings.TrimPrefix(strings.TrimPrefix(p, "https://"), "http://")
		p = strings.TrimPrefix(p, "www.")
		if p == "" {
			continue
		}
		if !strings.HasPrefix(target, p) {
			continue
		}
		rest := target[len(p):]
		if rest == "" || rest[0] == '/' || strings.HasSuffix(p, "/") {
			return true
		}
	}
	return false
}

func normalizeHost(h string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h)), ".")
}

// isSubdomain reports whether child is a strict subdomain of parent.
func isSubdomain(child, parent string) bool {
	return parent != "" && strings.HasSuffix(child, "."+parent)
}
