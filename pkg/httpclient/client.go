package httpclient

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the subset of an HTTP response the pipeline consumes.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(name string) string
}

// Client issues GET requests with per-call headers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// Option tunes a resty client at construction time.
type Option func(*resty.Client)

// WithInsecureTLS disables certificate verification for this client only.
// The toggle is deliberately scoped per client rather than mutating any
// process-wide transport state; callers opt in per fetch path.
func WithInsecureTLS() Option {
	return func(c *resty.Client) {
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // explicit caller opt-in for broken feed hosts
	}
}

// WithRetryCount enables resty's built-in retries. The ingestion core never
// sets this; it exists for callers with their own retry policy.
func WithRetryCount(n int) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(n)
	}
}

// restyClient wraps resty behind the Client interface.
type restyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a tuned resty-backed Client with the given timeout.
func NewRestyClient(timeout time.Duration, opts ...Option) Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	for _, opt := range opts {
		if opt != nil {
			opt(rc)
		}
	}

	return &restyClient{rc: rc}
}

// Get performs the request and returns the raw response.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := c.rc.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponse{resp: resp}, nil
}

// restyResponse adapts *resty.Response to the Response interface.
type restyResponse struct {
	resp *resty.Response
}

func (r *restyResponse) Body() []byte { return r.resp.Body() }

func (r *restyResponse) StatusCode() int { return r.resp.StatusCode() }

func (r *restyResponse) Header(name string) string { return r.resp.Header().Get(name) }
