// Package http is the outbound JSON client used to reach the hosted identity
// service.
//
//	api := &http.Client{
//	    BaseURL:  "https://users.example",
//	    Headers:  map[string]string{"x-api-key": key},
//	    Attempts: 3,
//	}
//	resp, err := api.Do(ctx, "GET", "/users/me", nil, http.Bearer(token))
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	gohttp "net/http"
	"strings"
	"time"

	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/reqid"
)

// upstream bodies beyond this are truncated; the identity API answers with
// small JSON documents
const maxBody = 1 << 20

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient carries every request whose Client has no HTTP set. Tests
// swap its Transport to answer calls from fixtures:
//
//	http.DefaultClient.Transport = mock
//	defer http.ResetTransport()
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

// ResetTransport restores the production transport on DefaultClient.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// Client sends JSON requests to one base URL.
type Client struct {
	BaseURL string
	// Headers are sent with every request.
	Headers map[string]string
	// Timeout bounds each attempt. Zero means 10s.
	Timeout time.Duration
	// Attempts is the total number of tries for transport errors and 5xx
	// answers. Zero means 1.
	Attempts int
	// Backoff is the wait before the second attempt; it doubles after that.
	Backoff time.Duration
	HTTP    *gohttp.Client
}

// Option adjusts a single request.
type Option func(*gohttp.Request)

// Bearer sets the Authorization header.
func Bearer(token string) Option {
	return func(r *gohttp.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

// Response is a fully read upstream answer.
type Response struct {
	StatusCode int
	Header     gohttp.Header
	Raw        []byte

	method, url string
}

// StatusError is returned by Response.Err for non-2xx answers.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: %s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Do sends body (JSON-encoded when non-nil) and reads the whole answer.
// Transport failures and 5xx answers are retried with exponential backoff;
// after the last attempt a 5xx is returned as a Response, not an error.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...Option) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("http: encode body: %w", err)
		}
	}

	url := strings.TrimRight(c.BaseURL, "/") + path
	attempts := max(c.Attempts, 1)
	wait := c.Backoff

	for attempt := 1; ; attempt++ {
		resp, err := c.once(ctx, method, url, payload, opts)
		retryable := err != nil || resp.StatusCode >= gohttp.StatusInternalServerError
		if !retryable || attempt >= attempts {
			if err != nil {
				return nil, fmt.Errorf("http: %s %s after %d attempt(s): %w", method, url, attempt, err)
			}
			return resp, nil
		}

		cause := "transport error"
		if err == nil {
			cause = fmt.Sprintf("status %d", resp.StatusCode)
		}
		logger.WithCtx(ctx).Warn("outbound request failed, retrying",
			"method", method, "url", url, "attempt", attempt, "cause", cause, "backoff", wait.String())

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, fmt.Errorf("http: %s %s: %w", method, url, ctx.Err())
		}
		wait *= 2
	}
}

func (c *Client) once(ctx context.Context, method, url string, payload []byte, opts []Option) (*Response, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := gohttp.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if id := reqid.FromCtx(ctx); id != "" {
		req.Header.Set(reqid.Header, id)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	for _, opt := range opts {
		opt(req)
	}

	hc := c.HTTP
	if hc == nil {
		hc = DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Raw: raw, method: method, url: url}, nil
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns a *StatusError unless the status is 2xx.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &StatusError{Method: r.method, URL: r.url, Code: r.StatusCode, Body: string(r.Raw)}
}

// JSON decodes the body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode body: %w", err)
	}
	return nil
}

// IsStatus reports whether err is a *StatusError with one of codes.
func IsStatus(err error, codes ...int) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.Code == c {
			return true
		}
	}
	return false
}
