package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedAgent(agent string) UserAgentSource {
	return func() string { return agent }
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Grüße</h1></body></html>"))
	}))
	defer server.Close()

	client := NewClient(nil)
	html, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Grüße</h1>")
}

func TestFetch_SendsUserAgentPerRequest(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	calls := 0
	agents := []string{"agent-a", "agent-b"}
	client := NewClient(&Options{UserAgents: func() string {
		agent := agents[calls%len(agents)]
		calls++
		return agent
	}})

	_, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, []string{"agent-a", "agent-b"}, seen)
}

func TestFetch_RandomUserAgentIsSet(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
	}))
	defer server.Close()

	_, err := NewClient(nil).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.NotEmpty(t, agent)
	assert.NotContains(t, agent, "Go-http-client")
}

func TestFetch_EncodesWhitespaceInURL(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "text/html")
	}))
	defer server.Close()

	_, err := NewClient(&Options{UserAgents: fixedAgent("t")}).Fetch(context.Background(), server.URL+"/a page/with space")
	require.NoError(t, err)
	assert.Equal(t, "/a%20page/with%20space", path)
}

func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	html, err := NewClient(nil).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, PlaceholderDownloadFailed, html)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, FailureTransport, fetchErr.Kind)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	html, err := NewClient(nil).Fetch(context.Background(), url)
	require.Error(t, err)
	assert.Equal(t, PlaceholderDownloadFailed, html)
}

func TestFetch_NonHTMLContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	html, err := NewClient(nil).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, "Unexpected content type: application/pdf. This is not an HTML page.", html)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, FailureContentType, fetchErr.Kind)
}

func TestFetch_Latin1Fallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer server.Close()

	html, err := NewClient(nil).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "café", html)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
		expected    string
	}{
		{"utf-8", []byte("caf\xc3\xa9"), "text/html; charset=UTF-8", "café"},
		{"no charset", []byte{'c', 'a', 'f', 0xe9}, "text/html", "café"},
		{"unknown charset", []byte{'c', 'a', 'f', 0xe9}, "text/html; charset=x-bogus", "café"},
		{"windows-1252", []byte{0x93, 'q', 0x94}, "text/html; charset=windows-1252", "“q”"},
		{"shift_jis", []byte{0x82, 0xa0}, "text/html; charset=Shift_JIS", "あ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decode(tt.body, tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestEncodeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/a b", "https://example.com/a%20b"},
		{"https://example.com/?q=1&r=2", "https://example.com/?q=1&r=2"},
		{"https://example.com/already%20encoded", "https://example.com/already%20encoded"},
		{"https://example.com/100%", "https://example.com/100%25"},
		{"https://example.com/ü", "https://example.com/%C3%BC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeURL(tt.input))
		})
	}
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	}))
	defer server.Close()

	client := NewClient(nil)
	data, err := client.Download(context.Background(), server.URL+"/thumb.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)

	data, err = client.Download(context.Background(), server.URL+"/missing")
	assert.Error(t, err)
	assert.Nil(t, data)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(&Options{})

	assert.Equal(t, DefaultTimeout, client.options.Timeout)
	assert.NotNil(t, client.options.UserAgents)
	assert.Equal(t, DefaultTimeout, client.http.Timeout)
}
