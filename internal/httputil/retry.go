// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the page fetcher shared by both pipelines.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

// maxRetryAfter caps how long a server-provided Retry-After may stall a worker.
const maxRetryAfter = 60 * time.Second

// DefaultMaxRetries is used when no retry budget is configured.
const DefaultMaxRetries = 5

// ErrTimeout marks an attempt that waited too long for response headers or
// for the next chunk of a response body.
var ErrTimeout = errors.New("request timed out")

// Policy bounds one logical request.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt; zero
	// means DefaultMaxRetries.
	MaxRetries int

	// AttemptTimeout bounds each attempt up to its response headers, and
	// then every gap between two body reads. The body as a whole is not
	// bounded. Zero disables both.
	AttemptTimeout time.Duration
}

// IsTransientStatus reports whether status is worth retrying.
func IsTransientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes an HTTP request and retries on transient statuses
// (429, 500, 502, 503, 504) and on transport errors with exponential
// backoff. The delay starts at RetryBaseDelay and doubles each attempt; a
// larger integer Retry-After header takes precedence.
//
// When maxRetries is 0 the default (5) is used. On each retried response
// the body is drained and closed before sleeping. If the context is
// cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting retries the last response (or transport error) is returned so
// the caller can inspect it. Non-transient statuses are returned at once.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	return DoWithPolicy(ctx, client, req, Policy{MaxRetries: maxRetries})
}

// DoWithPolicy is DoWithRetry with a per-attempt timeout. Backoff waits are
// never charged to an attempt, so a slow attempt does not eat the budget of
// the ones after it. Only ctx bounds the whole call.
func DoWithPolicy(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := doAttempt(ctx, client, req, p.AttemptTimeout)
		if err == nil && !IsTransientStatus(resp.StatusCode) {
			return resp, nil
		}
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Exhausted retries: hand back whatever the last attempt produced.
		if attempt >= maxRetries {
			return resp, err
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if resp != nil {
			if ra := retryAfter(resp); ra > backoff {
				backoff = ra
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		slog.DebugContext(ctx, "transient failure, retrying",
			"url", req.URL.String(),
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"backoff", backoff,
			"status", statusOf(resp),
			"err", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// doAttempt sends one request. With a timeout, the attempt's context is
// cancelled when headers do not arrive in time, or later when the body
// stalls for that long between reads.
func doAttempt(ctx context.Context, client *http.Client, req *http.Request, timeout time.Duration) (*http.Response, error) {
	if timeout <= 0 {
		return client.Do(req.Clone(ctx))
	}

	actx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(timeout, func() { cancel(ErrTimeout) })

	resp, err := client.Do(req.Clone(actx))
	if err != nil {
		timer.Stop()
		if errors.Is(context.Cause(actx), ErrTimeout) {
			err = fmt.Errorf("%w: no response within %s: %v", ErrTimeout, timeout, err)
		}
		cancel(nil)
		return nil, err
	}

	timer.Reset(timeout)
	resp.Body = &idleBody{ReadCloser: resp.Body, ctx: actx, cancel: cancel, timer: timer, idle: timeout}
	return resp, nil
}

// idleBody re-arms the attempt timer on every read and releases the
// attempt's context on Close.
type idleBody struct {
	io.ReadCloser
	ctx    context.Context
	cancel context.CancelCauseFunc
	timer  *time.Timer
	idle   time.Duration
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err == nil || n > 0 {
		b.timer.Reset(b.idle)
	}
	if err != nil && err != io.EOF && errors.Is(context.Cause(b.ctx), ErrTimeout) {
		err = fmt.Errorf("%w: body stalled for %s: %v", ErrTimeout, b.idle, err)
	}
	return n, err
}

func (b *idleBody) Close() error {
	b.timer.Stop()
	err := b.ReadCloser.Close()
	b.cancel(nil)
	return err
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
