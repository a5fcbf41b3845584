package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsentSelectors_Order(t *testing.T) {
	assert.Equal(t, `button[aria-label="Accept cookies"]`, ConsentSelectors[0].Query)
	assert.False(t, ConsentSelectors[0].XPath)
	last := ConsentSelectors[len(ConsentSelectors)-1]
	assert.Contains(t, last.Query, `"close"`)
	assert.True(t, last.XPath)
}

func TestButtonWithText_IgnoresCase(t *testing.T) {
	sel := buttonWithText("I agree")

	assert.True(t, sel.XPath)
	assert.Equal(t,
		`//button[contains(translate(normalize-space(.), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), "i agree")]`,
		sel.Query)
}

func TestNewBrowser_Defaults(t *testing.T) {
	b := NewBrowser(BrowserOptions{}, zerolog.Nop())

	assert.Equal(t, DefaultBrowserTimeout, b.options.Timeout)
	assert.Equal(t, int64(1280), b.options.Width)
	assert.Equal(t, int64(720), b.options.Height)
}

func TestBrowser_CloseBeforeStart(t *testing.T) {
	b := NewBrowser(BrowserOptions{}, zerolog.Nop())
	assert.NotPanics(t, b.Close)
}

// chromePath returns an installed Chrome binary or skips the test.
func chromePath(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("chrome not available, skipping test")
	return ""
}

// consentServer serves body at / and records which buttons report a click.
type consentServer struct {
	*httptest.Server
	mu      sync.Mutex
	clicked []string
}

func newConsentServer(t *testing.T, body string) *consentServer {
	t.Helper()
	s := &consentServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/clicked" {
			s.mu.Lock()
			s.clicked = append(s.clicked, r.URL.Query().Get("b"))
			s.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *consentServer) clicks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicked...)
}

func consentButton(name, attrs, label string) string {
	return fmt.Sprintf(`<button %s onclick="fetch('/clicked?b=%s')">%s</button>`, attrs, name, label)
}

func TestBrowser_CaptureClicksUppercaseConsent(t *testing.T) {
	chrome := chromePath(t)
	srv := newConsentServer(t, `<html><body><h1>Story</h1>`+
		consentButton("accept", "", "ACCEPT ALL")+
		`</body></html>`)

	b := NewBrowser(BrowserOptions{Timeout: 20 * time.Second, ExecPath: chrome}, zerolog.Nop())
	defer b.Close()

	png, err := b.Capture(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Greater(t, len(png), 4)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"accept"}, srv.clicks())
	}, 5*time.Second, 50*time.Millisecond)
}

func TestBrowser_CaptureClicksFirstSelectorOnly(t *testing.T) {
	chrome := chromePath(t)
	srv := newConsentServer(t, `<html><body>`+
		consentButton("ok", "", "OK")+
		consentButton("aria", `aria-label="Accept cookies"`, "Sure")+
		`</body></html>`)

	b := NewBrowser(BrowserOptions{Timeout: 20 * time.Second, ExecPath: chrome}, zerolog.Nop())
	defer b.Close()

	_, err := b.Capture(context.Background(), srv.URL+"/")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(srv.clicks()) > 0
	}, 5*time.Second, 50*time.Millisecond)
	// give a second click time to arrive, if one were sent
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{"aria"}, srv.clicks())
}

func TestBrowser_FailedCaptureClosesTab(t *testing.T) {
	chrome := chromePath(t)
	srv := newConsentServer(t, `<html><body>ok</body></html>`)

	b := NewBrowser(BrowserOptions{Timeout: 20 * time.Second, ExecPath: chrome}, zerolog.Nop())
	defer b.Close()

	_, err := b.Capture(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	before := pageTargets(b)
	require.Positive(t, before)

	_, err = b.Capture(context.Background(), "http://127.0.0.1:1/unreachable")
	require.Error(t, err)

	assert.Eventually(t, func() bool {
		return pageTargets(b) == before
	}, 5*time.Second, 50*time.Millisecond, "the failed capture's tab is closed")

	_, err = b.Capture(context.Background(), srv.URL+"/")
	assert.NoError(t, err, "the browser stays usable after a failure")
}

// pageTargets counts the open tabs, or returns -1 when they cannot be listed.
func pageTargets(b *Browser) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	targets, err := chromedp.Targets(b.browserCtx)
	if err != nil {
		return -1
	}
	n := 0
	for _, info := range targets {
		if info.Type == "page" {
			n++
		}
	}
	return n
}
