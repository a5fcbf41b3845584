// Package fetch provides the network-facing adapters of the pipeline: HTML page fetching,
// binary downloads and headless-browser screenshots.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Placeholder texts returned in place of a page body when fetching fails.
const (
	PlaceholderDownloadFailed = "Could not download this url."
	placeholderContentType    = "Unexpected content type: %s. This is not an HTML page."
	placeholderUnexpected     = "An unexpected error occurred: %v"
)

// FailureKind classifies why a fetch did not produce a page.
type FailureKind string

const (
	// FailureTransport covers DNS, connection and HTTP status failures
	FailureTransport FailureKind = "transport"
	// FailureContentType is a response that is not HTML
	FailureContentType FailureKind = "content_type"
	// FailureUnexpected is anything else, such as an unreadable body
	FailureUnexpected FailureKind = "unexpected"
)

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Kind    FailureKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UserAgentSource yields the User-Agent header for one request.
type UserAgentSource func() string

// RandomUserAgent picks a random real-world browser user agent.
func RandomUserAgent() string {
	return uarand.GetRandom()
}

// Options configures the fetch behavior.
type Options struct {
	Timeout    time.Duration
	UserAgents UserAgentSource
	Headers    map[string]string
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:    DefaultTimeout,
		UserAgents: RandomUserAgent,
	}
}

// Client fetches pages and binary assets.
type Client struct {
	http    *http.Client
	options *Options
}

// NewClient creates a client. Zero option values fall back to the defaults.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgents == nil {
		opts.UserAgents = RandomUserAgent
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{http: httpClient, options: opts}
}

// get issues a GET with a fresh user agent. The caller closes the body.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, EncodeURL(rawURL), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: FailureTransport, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.options.UserAgents())
	for key, value := range c.options.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: FailureTransport, Message: "HTTP request failed", Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &Error{URL: rawURL, Kind: FailureTransport, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return resp, nil
}

// Fetch downloads an HTML page and returns it decoded as UTF-8.
//
// It never returns an empty string: on failure it returns a placeholder text
// together with a *Error. Callers may render the placeholder but must not cache it.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return PlaceholderDownloadFailed, err
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/html"
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		return fmt.Sprintf(placeholderContentType, contentType), &Error{
			URL:     rawURL,
			Kind:    FailureContentType,
			Message: fmt.Sprintf("unexpected content type %s", contentType),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf(placeholderUnexpected, err), &Error{
			URL:     rawURL,
			Kind:    FailureUnexpected,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	text, err := Decode(body, contentType)
	if err != nil {
		return fmt.Sprintf(placeholderUnexpected, err), &Error{
			URL:     rawURL,
			Kind:    FailureUnexpected,
			Message: "failed to decode response body",
			Cause:   err,
		}
	}
	return text, nil
}

// Download retrieves raw bytes, e.g. a thumbnail or a PDF.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: FailureUnexpected, Message: "failed to read response body", Cause: err}
	}
	return data, nil
}

// Decode converts a body to UTF-8 using the charset declared in contentType.
// A body without a declared charset, or with one that is not recognised, is read as ISO-8859-1.
func Decode(body []byte, contentType string) (string, error) {
	label := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		label = strings.ToLower(strings.TrimSpace(params["charset"]))
	}

	switch label {
	case "utf-8", "utf8":
		return string(body), nil
	case "":
		return decodeLatin1(body)
	}

	enc, _ := charset.Lookup(label)
	if enc == nil {
		return decodeLatin1(body)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeLatin1(body []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeURL percent-encodes characters that are not valid in a request URL, such as
// embedded spaces, while keeping the structural characters / : ? = & and existing %XX escapes.
func EncodeURL(raw string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		switch {
		case isUnreserved(b), strings.IndexByte("/:?=&", b) >= 0:
			sb.WriteByte(b)
		case b == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]):
			sb.WriteByte(b)
		default:
			sb.WriteByte('%')
			sb.WriteByte(hex[b>>4])
			sb.WriteByte(hex[b&0x0f])
		}
	}
	return sb.String()
}

func isUnreserved(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') ||
		b == '-' || b == '_' || b == '.' || b == '~'
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
