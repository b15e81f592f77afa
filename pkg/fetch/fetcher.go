package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
)

// ErrInvalidURL marks input that is not fetchable at all; callers must not retry it.
var ErrInvalidURL = errors.New("invalid url")

// HTTPError reports a non-2xx response status.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d for %s", e.Status, e.URL)
}

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 20 * time.Second

// BrowserHeaders returns a realistic desktop browser header set. Feed and
// article hosts block obvious bot user agents aggressively.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Accept-Encoding":           "gzip, deflate",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}

// Page is the result of a successful fetch.
type Page struct {
	Body        []byte
	ContentType string
}

// IsHTML reports whether the response declared an HTML content type.
func (p *Page) IsHTML() bool {
	return strings.Contains(strings.ToLower(p.ContentType), "text/html")
}

// Fetcher retrieves pages over HTTP with browser-like headers.
// It performs no retries; retry policy belongs to callers.
type Fetcher struct {
	client httpclient.Client
	log    logger.Logger
}

// New creates a Fetcher. A nil client gets the default resty client.
func New(client httpclient.Client, log logger.Logger) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(DefaultTimeout)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Fetcher{client: client, log: log}
}

// Fetch retrieves the URL and returns its body and content type.
// Malformed URLs fail with ErrInvalidURL, non-2xx statuses with *HTTPError,
// and transport failures (including timeouts) with the wrapped cause.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	f.log.DebugObj("fetching page", "fetch_start", map[string]any{
		"url": rawURL,
	})

	resp, err := f.client.Get(ctx, parsed.String(), BrowserHeaders())
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}

	if status := resp.StatusCode(); status < 200 || status > 299 {
		return nil, &HTTPError{Status: status, URL: rawURL}
	}

	return &Page{
		Body:        resp.Body(),
		ContentType: resp.Header("Content-Type"),
	}, nil
}
