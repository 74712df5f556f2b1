// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/pdiddy/paper-scraper/pkg/types"
)

const (
	defaultPageTimeout     = 15 * time.Second
	defaultDownloadTimeout = 60 * time.Second

	// DefaultUserAgent is a desktop browser string; the publisher sites
	// answer non-browser agents with 403.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptPDF  = "application/pdf,application/octet-stream;q=0.9,*/*;q=0.8"
)

// FetchError reports a request that failed after the retry policy ran.
// Transient is true when the failure was retryable and the budget ran out;
// terminal statuses such as 404 surface on the first attempt.
type FetchError struct {
	URL        string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client is the per-run session: one connection pool, default headers, and
// the retry policy. It is safe for concurrent use by download workers.
type Client struct {
	http            *http.Client
	headers         http.Header
	maxRetries      int
	pageTimeout     time.Duration
	downloadTimeout time.Duration
}

// NewClient builds a session for a site. referer is sent with every request
// unless overridden; workers sizes the idle connection pool.
func NewClient(cfg types.HTTPConfig, referer string, workers int) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if workers > 0 {
		transport.MaxIdleConnsPerHost = workers
	}
	return NewClientWith(&http.Client{Transport: transport}, cfg, referer)
}

// NewClientWith wraps an existing http.Client, e.g. an httptest server's.
func NewClientWith(hc *http.Client, cfg types.HTTPConfig, referer string) *Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", ua)
	h.Set("Accept", acceptHTML)
	h.Set("Accept-Language", "en-US,en;q=0.9")
	if referer != "" {
		h.Set("Referer", referer)
	}

	c := &Client{
		http:            hc,
		headers:         h,
		maxRetries:      cfg.MaxRetries,
		pageTimeout:     cfg.PageTimeout,
		downloadTimeout: cfg.DownloadTimeout,
	}
	if c.pageTimeout <= 0 {
		c.pageTimeout = defaultPageTimeout
	}
	if c.downloadTimeout <= 0 {
		c.downloadTimeout = defaultDownloadTimeout
	}
	return c
}

// Get fetches a listing or landing page. The page timeout applies to each
// attempt and to each stall while reading the body. The caller must close
// the body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.do(ctx, url, c.pageTimeout, nil)
}

// Download requests a binary resource, declaring PDF as acceptable and
// sending referer when set. The download timeout applies to each attempt
// and to each stall while reading the body, never to the whole transfer.
func (c *Client) Download(ctx context.Context, url, referer string) (*http.Response, error) {
	extra := map[string]string{"Accept": acceptPDF}
	if referer != "" {
		extra["Referer"] = referer
	}
	return c.do(ctx, url, c.downloadTimeout, extra)
}

// Document fetches url and parses it as HTML, honoring the declared charset.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ParseDocument(resp)
}

// ParseDocument parses an HTML response body. The document URL is set to
// the final request URL so relative links can be resolved.
func ParseDocument(resp *http.Response) (*goquery.Document, error) {
	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	if resp.Request != nil {
		doc.Url = resp.Request.URL
	}
	return doc, nil
}

// IsPDF reports whether the response declares a PDF body.
func IsPDF(resp *http.Response) bool {
	ct := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
	return strings.HasPrefix(ct, "application/pdf")
}

func (c *Client) do(ctx context.Context, url string, timeout time.Duration, extra map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header = c.headers.Clone()
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := DoWithPolicy(ctx, c.http, req, Policy{MaxRetries: c.maxRetries, AttemptTimeout: timeout})
	if err != nil {
		return nil, &FetchError{URL: url, Transient: ctx.Err() == nil && !errors.Is(err, context.Canceled), Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Transient: IsTransientStatus(resp.StatusCode)}
	}
	return resp, nil
}
