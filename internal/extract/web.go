package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrFetchFailed covers unreachable, malformed, or empty web sources.
var ErrFetchFailed = errors.New("fetch url failed")

// WebExtractor fetches a page and renders it to plain text.
type WebExtractor struct {
	client *http.Client
}

func NewWebExtractor(timeout time.Duration) *WebExtractor {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &WebExtractor{
		client: &http.Client{Timeout: timeout},
	}
}

// FromURL fetches rawURL and returns its visible text and a display name
// (the page title, or the host when no title is present).
func (w *WebExtractor) FromURL(ctx context.Context, rawURL string) (text, name string, err error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", "", fmt.Errorf("%w: invalid url %q", ErrFetchFailed, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "docqa/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("%w: status %d from %s", ErrFetchFailed, resp.StatusCode, parsed.Host)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	text, title := htmlToText(body)
	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("%w: no content found on page", ErrFetchFailed)
	}
	if title == "" {
		title = parsed.Host
	}
	return text, title, nil
}

// htmlToText walks the DOM collecting visible text nodes, skipping script
// and style subtrees. Returns the text and the document title.
func htmlToText(body []byte) (string, string) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", ""
	}

	var sb strings.Builder
	var title string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String()), title
}
