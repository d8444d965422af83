package playwright

import (
	"context"
	"testing"
	"time"

	pw "github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
	"github.com/devicelab-dev/reel-publisher/pkg/logger"
)

func TestToPlaywrightCookie(t *testing.T) {
	oc, err := toPlaywrightCookie(core.Cookie{
		Name:     "sid",
		Value:    "abc",
		Domain:   "buffer.com",
		Expires:  1893456000,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})
	require.NoError(t, err)

	assert.Equal(t, "sid", oc.Name)
	assert.Equal(t, "abc", oc.Value)
	require.NotNil(t, oc.Domain)
	assert.Equal(t, "buffer.com", *oc.Domain)
	require.NotNil(t, oc.Path)
	assert.Equal(t, "/", *oc.Path, "empty path defaults to /")
	require.NotNil(t, oc.Expires)
	assert.Equal(t, float64(1893456000), *oc.Expires)
	assert.True(t, *oc.HttpOnly)
	assert.True(t, *oc.Secure)
	assert.Equal(t, pw.SameSiteAttributeStrict, oc.SameSite)
}

func TestToPlaywrightCookie_SessionCookie(t *testing.T) {
	oc, err := toPlaywrightCookie(core.Cookie{Name: "s", Value: "v", Domain: "buffer.com", Path: "/app", Expires: -1})
	require.NoError(t, err)
	assert.Nil(t, oc.Expires)
	assert.Equal(t, "/app", *oc.Path)
	assert.Nil(t, oc.SameSite)
}

func TestToPlaywrightCookie_InsecureSameSiteNone(t *testing.T) {
	oc, err := toPlaywrightCookie(core.Cookie{Name: "s", Domain: "buffer.com", SameSite: "None"})
	require.NoError(t, err)
	assert.Equal(t, pw.SameSiteAttributeLax, oc.SameSite)

	oc, err = toPlaywrightCookie(core.Cookie{Name: "s", Domain: "buffer.com", SameSite: "None", Secure: true})
	require.NoError(t, err)
	assert.Equal(t, pw.SameSiteAttributeNone, oc.SameSite)
}

func TestToPlaywrightCookie_Invalid(t *testing.T) {
	_, err := toPlaywrightCookie(core.Cookie{Domain: "buffer.com"})
	assert.Error(t, err)

	_, err = toPlaywrightCookie(core.Cookie{Name: "sid"})
	assert.ErrorContains(t, err, "domain is required")
}

func TestFromPlaywrightCookie(t *testing.T) {
	c := fromPlaywrightCookie(pw.Cookie{
		Name:     "sid",
		Value:    "abc",
		Domain:   ".buffer.com",
		Path:     "/",
		Expires:  -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: pw.SameSiteAttributeLax,
	})

	assert.Equal(t, core.Cookie{
		Name:     "sid",
		Value:    "abc",
		Domain:   ".buffer.com",
		Path:     "/",
		Expires:  -1,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	}, c)
	assert.True(t, c.IsWildcard())
	assert.False(t, c.IsExpired(time.Now()))
}

func TestSameSite(t *testing.T) {
	tests := []struct {
		in   string
		want *pw.SameSiteAttribute
	}{
		{"Strict", pw.SameSiteAttributeStrict},
		{"lax", pw.SameSiteAttributeLax},
		{"None", pw.SameSiteAttributeNone},
		{"no_restriction", pw.SameSiteAttributeNone},
		{"", nil},
		{"unspecified", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sameSite(tt.in), tt.in)
	}
}

func TestLaunchArgs(t *testing.T) {
	args := launchArgs(Options{NoSandbox: true, Width: 1920, Height: 1080, Args: []string{"--lang=en-US"}})
	assert.Equal(t, []string{
		"--disable-dev-shm-usage",
		"--disable-gpu",
		"--no-sandbox",
		"--window-size=1920,1080",
		"--lang=en-US",
	}, args)

	args = launchArgs(Options{Width: 800, Height: 600})
	assert.NotContains(t, args, "--no-sandbox")
	assert.Contains(t, args, "--window-size=800,600")
}

func TestLaunchOptions(t *testing.T) {
	lo := launchOptions(Options{Headless: true, ExecutablePath: "/usr/bin/chromium"})
	require.NotNil(t, lo.Headless)
	assert.True(t, *lo.Headless)
	require.NotNil(t, lo.ExecutablePath)
	assert.Equal(t, "/usr/bin/chromium", *lo.ExecutablePath)

	lo = launchOptions(Options{})
	assert.False(t, *lo.Headless)
	assert.Nil(t, lo.ExecutablePath)
}

func TestRunOptions(t *testing.T) {
	ro := runOptions(Options{DriverDir: "/tmp/drivers"})
	assert.Equal(t, []string{"chromium"}, ro.Browsers)
	assert.Equal(t, "/tmp/drivers", ro.DriverDirectory)
	assert.Equal(t, logger.GetWriter(), ro.Stdout, "quiet install output goes to the run log")
	assert.Equal(t, logger.GetWriter(), ro.Stderr)

	ro = runOptions(Options{Verbose: true})
	assert.True(t, ro.Verbose)
	assert.Nil(t, ro.Stdout)
}

func TestRemaining(t *testing.T) {
	ms, err := remaining(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(defaultWait.Milliseconds()), *ms)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ms, err = remaining(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2000, *ms, 100)

	done, cancelDone := context.WithCancel(context.Background())
	cancelDone()
	_, err = remaining(done)
	assert.ErrorIs(t, err, context.Canceled)

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()
	_, err = remaining(expired)
	assert.Error(t, err)
}
