package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title> Release Notes </title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <h1>Version 2.0</h1>
  <p>Faster indexing and a new cache layer.</p>
  <noscript>enable javascript</noscript>
</body>
</html>`

func TestFromURLExtractsTextAndTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "docqa/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	text, name, err := NewWebExtractor(5*time.Second).FromURL(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Release Notes", name)
	assert.Contains(t, text, "Version 2.0")
	assert.Contains(t, text, "Faster indexing and a new cache layer.")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "enable javascript")
}

func TestFromURLFallsBackToHostWhenUntitled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>no title here, plenty of body</p></body></html>"))
	}))
	defer server.Close()

	_, name, err := NewWebExtractor(5*time.Second).FromURL(context.Background(), server.URL)
	require.NoError(t, err)

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	assert.Equal(t, parsed.Host, name)
}

func TestFromURLRejectsInvalidURL(t *testing.T) {
	w := NewWebExtractor(5 * time.Second)
	for _, raw := range []string{"", "not a url", "/relative/path", "example.com"} {
		_, _, err := w.FromURL(context.Background(), raw)
		assert.ErrorIs(t, err, ErrFetchFailed, "url %q", raw)
	}
}

func TestFromURLErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := NewWebExtractor(5*time.Second).FromURL(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFromURLEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><head><script>only();</script></head><body></body></html>"))
	}))
	defer server.Close()

	_, _, err := NewWebExtractor(5*time.Second).FromURL(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFromURLHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := NewWebExtractor(5*time.Second).FromURL(ctx, server.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
}
