// Package fetch - browser.go captures page screenshots with a shared headless browser.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// DefaultBrowserTimeout bounds one screenshot capture.
const DefaultBrowserTimeout = 30 * time.Second

// ConsentSelector locates a cookie-consent button. XPath selectors match on button text.
type ConsentSelector struct {
	Query string
	XPath bool
}

// ConsentSelectors are tried in order; the first one present on the page is clicked.
var ConsentSelectors = []ConsentSelector{
	{Query: `button[aria-label="Accept cookies"]`},
	{Query: `button[aria-label="Accept all cookies"]`},
	buttonWithText("Accept"),
	buttonWithText("I agree"),
	buttonWithText("Got it"),
	buttonWithText("OK"),
	buttonWithText("Close"),
}

// buttonWithText matches a button whose text contains text, ignoring ASCII case.
func buttonWithText(text string) ConsentSelector {
	return ConsentSelector{
		Query: fmt.Sprintf(`//button[contains(translate(normalize-space(.), "%s", "%s"), "%s")]`,
			upperASCII, lowerASCII, strings.ToLower(text)),
		XPath: true,
	}
}

const (
	upperASCII = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerASCII = "abcdefghijklmnopqrstuvwxyz"
)

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	Timeout  time.Duration
	Width    int64
	Height   int64
	ExecPath string // Chrome binary; empty uses chromedp's lookup
}

// Browser is one shared headless Chrome session. Captures are serialized and each
// runs in its own tab, which is closed when the capture returns.
type Browser struct {
	mu      sync.Mutex
	options BrowserOptions
	logger  zerolog.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowser creates a browser that starts Chrome on first use.
func NewBrowser(options BrowserOptions, logger zerolog.Logger) *Browser {
	if options.Timeout == 0 {
		options.Timeout = DefaultBrowserTimeout
	}
	if options.Width == 0 || options.Height == 0 {
		options.Width, options.Height = 1280, 720
	}
	return &Browser{options: options, logger: logger}
}

// start launches Chrome. Callers hold b.mu.
func (b *Browser) start() error {
	if b.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.options.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.options.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.logger.Debug().Msg("headless browser started")
	return nil
}

// Capture navigates to url in a new tab, dismisses a cookie banner if it can,
// and returns a PNG screenshot of the viewport.
func (b *Browser) Capture(ctx context.Context, url string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.start(); err != nil {
		return nil, err
	}

	tabCtx, closeTab := chromedp.NewContext(b.browserCtx)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	tabCtx, cancel := context.WithTimeout(tabCtx, b.options.Timeout)
	defer cancel()

	var png []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(b.options.Width, b.options.Height),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			b.dismissConsent(ctx, url)
			return nil
		}),
		chromedp.CaptureScreenshot(&png),
	)
	if err != nil {
		return nil, fmt.Errorf("screenshot of %s failed: %w", url, err)
	}
	return png, nil
}

// dismissConsent clicks the first consent button found. Failures are logged and ignored.
func (b *Browser) dismissConsent(ctx context.Context, url string) {
	for _, sel := range ConsentSelectors {
		by := chromedp.ByQueryAll
		if sel.XPath {
			by = chromedp.BySearch
		}

		var nodes []*cdp.Node
		if err := chromedp.Nodes(sel.Query, &nodes, chromedp.AtLeast(0), by).Do(ctx); err != nil {
			b.logger.Debug().Err(err).Str("url", url).Str("selector", sel.Query).Msg("consent selector query failed")
			continue
		}
		if len(nodes) == 0 {
			continue
		}
		if err := chromedp.MouseClickNode(nodes[0]).Do(ctx); err != nil {
			b.logger.Debug().Err(err).Str("url", url).Str("selector", sel.Query).Msg("consent button click failed")
		}
		return
	}
}

// Close shuts Chrome down. The browser can be started again by a later Capture.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx, b.browserCancel, b.allocCancel = nil, nil, nil
}
