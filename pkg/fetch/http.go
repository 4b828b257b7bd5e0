package fetch

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/clipperhq/clipper/pkg/knowledge"
)

const (
	// DefaultTimeout bounds a single article download.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies clipper to origin servers.
	DefaultUserAgent = "clipper/1.0"

	// maxBodySize caps how much of a response body is read. Articles are
	// text; anything larger is almost certainly not one.
	maxBodySize = 10 << 20
)

// HTTPFetcher retrieves articles over HTTP(S).
type HTTPFetcher struct {
	userAgent  string
	httpClient *http.Client
}

// HTTPConfig holds configuration for the HTTP fetcher.
type HTTPConfig struct {
	// Timeout bounds each request. Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// UserAgent overrides the User-Agent header. Defaults to
	// DefaultUserAgent if empty.
	UserAgent string
}

// NewHTTPFetcher creates an HTTP fetcher.
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &HTTPFetcher{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the URL and strips its HTML down to readable text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (knowledge.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return knowledge.Document{}, &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return knowledge.Document{}, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return knowledge.Document{}, &Error{
			URL: url,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return knowledge.Document{}, &Error{URL: url, Err: err}
	}

	text := string(body)
	if isHTML(resp.Header.Get("Content-Type"), text) {
		text = stripHTML(text)
	} else {
		text = strings.TrimSpace(text)
	}

	return knowledge.Document{
		SourceURL: url,
		Text:      text,
	}, nil
}

// Close releases resources held by the fetcher.
func (f *HTTPFetcher) Close() error {
	return nil
}

// isHTML decides whether a response body should go through HTML stripping.
// Servers misreport content types often enough that the body gets a say.
func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml+xml") {
		return true
	}

	probe := strings.ToLower(strings.TrimSpace(body))
	if len(probe) > 512 {
		probe = probe[:512]
	}
	return strings.Contains(probe, "<!doctype html") || strings.Contains(probe, "<html")
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// stripHTML removes HTML markup and extracts readable text content.
// Block element boundaries become paragraph breaks so the text keeps its
// structure for chunking.
func stripHTML(content string) string {
	// Remove script, style, noscript, head, and svg tags entirely
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")

	// Remove HTML comments
	content = htmlComments.ReplaceAllString(content, "")

	// Block element boundaries become newlines
	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n\n")

	// Convert <br> and <hr> to newlines
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	// Strip all remaining HTML tags
	content = allTags.ReplaceAllString(content, "")

	// Decode HTML entities
	content = html.UnescapeString(content)

	// Collapse runs of spaces and tabs (but preserve newlines)
	content = multiSpaces.ReplaceAllString(content, " ")

	// Trim each line and collapse runs of blank lines to a single
	// paragraph break
	lines := strings.Split(content, "\n")
	var result []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				result = append(result, "")
			}
			blank = true
			continue
		}
		result = append(result, line)
		blank = false
	}
	// Drop a trailing blank line
	if n := len(result); n > 0 && result[n-1] == "" {
		result = result[:n-1]
	}

	return strings.Join(result, "\n")
}

var _ Fetcher = (*HTTPFetcher)(nil)
