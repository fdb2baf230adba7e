package keyprovider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// Fetcher downloads a key set document and returns its response headers and body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (http.Header, []byte, error)
}

// HTTPFetcher fetches with net/http.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(c *http.Client) *HTTPFetcher {
	if c == nil {
		c = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{Client: c}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSResponseSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxJWKSResponseSize {
		return nil, nil, ErrResponseSize
	}
	return resp.Header, body, nil
}

// FastHTTPFetcher fetches with valyala/fasthttp.
type FastHTTPFetcher struct {
	Client  *fasthttp.Client
	Timeout time.Duration
}

func NewFastHTTPFetcher(c *fasthttp.Client) *FastHTTPFetcher {
	if c == nil {
		c = &fasthttp.Client{MaxResponseBodySize: maxJWKSResponseSize}
	}
	return &FastHTTPFetcher{Client: c, Timeout: 10 * time.Second}
}

func (f *FastHTTPFetcher) Fetch(ctx context.Context, url string) (http.Header, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(f.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := f.Client.DoDeadline(req, resp, deadline); err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, nil, fmt.Errorf("status %d", code)
	}
	if len(resp.Body()) > maxJWKSResponseSize {
		return nil, nil, ErrResponseSize
	}

	header := make(http.Header)
	resp.Header.VisitAll(func(k, v []byte) {
		header.Add(string(k), string(v))
	})
	body := append([]byte(nil), resp.Body()...)
	return header, body, nil
}
