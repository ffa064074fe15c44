package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the subset of an HTTP response consumed by the pipeline.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues single HTTP GET requests with caller-supplied headers.
// Implementations do not retry; retry policy belongs to callers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

type restyClient struct {
	c *resty.Client
}

// NewRestyClient builds a resty-backed client with a per-request timeout.
// insecureTLS skips certificate verification; some institutional sources
// present invalid chains and must still be reachable.
func NewRestyClient(timeout time.Duration, insecureTLS bool) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	if insecureTLS {
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // explicit operator opt-in
	}

	return &restyClient{c: c}
}

func (r *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.c.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return restyResponse{resp: resp}, nil
}

type restyResponse struct {
	resp *resty.Response
}

func (r restyResponse) Body() []byte    { return r.resp.Body() }
func (r restyResponse) StatusCode() int { return r.resp.StatusCode() }
