// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/session"
)

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options tune a Client. The zero value is usable.
type Options struct {
	// HTTPClient overrides the transport. Its Timeout is left untouched.
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
}

// scope tells the authorization policy what a 403 means for a request.
type scope int

const (
	accountScope scope = iota
	artifactScope
)

// Client talks to one vault. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	holder    *session.Holder
	userAgent string
}

// New returns a client for the vault at baseURL. holder supplies the
// credential for authenticated calls and is cleared when the vault rejects it.
func New(baseURL string, holder *session.Holder, opts Options) (*Client, error) {
	if holder == nil {
		return nil, fmt.Errorf("vault: nil session holder")
	}
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("vault: invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("vault: base url %q must be http or https", baseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "sentinel"
	}
	return &Client{base: u, http: hc, holder: holder, userAgent: ua}, nil
}

// Holder returns the session holder the client draws credentials from.
func (c *Client) Holder() *session.Holder { return c.holder }

// BaseURL returns the configured vault root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// request describes one exchange with the vault.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	scope       scope
}

// authorized performs an authenticated exchange. The credential is obtained
// before the request is built, so a missing session sends nothing. 401 and
// 403 are turned into *DeniedError here; every other status is left for the
// caller. The returned response always has a body the caller must close.
func (c *Client) authorized(ctx context.Context, r request) (*http.Response, error) {
	cred, err := c.holder.Require()
	if err != nil {
		closeBody(r.body)
		return nil, err
	}
	req, err := c.newRequest(ctx, r)
	if err != nil {
		closeBody(r.body)
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cred.Reveal())
	cred.Zero()

	resp, err := c.roundTrip(req, r.op)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	msg := readMessage(resp)
	resp.Body.Close()
	denied := &DeniedError{Op: r.op, StatusCode: resp.StatusCode, Message: msg}
	if resp.StatusCode == http.StatusUnauthorized || r.scope == accountScope {
		if err := c.holder.Clear(session.ReasonDenied); err != nil {
			logging.Warnf("clearing rejected credential: %v", err)
		}
		denied.SessionEnded = true
	}
	logging.Debugf("%s: denied with HTTP %d (session ended: %t)", r.op, resp.StatusCode, denied.SessionEnded)
	return nil, denied
}

// refusedMutation reports a 403 on an owned artifact as a failed mutation,
// keeping the vault's reason. A denial that ended the session or carries no
// text stays a *DeniedError.
func refusedMutation(op string, err error) error {
	var denied *DeniedError
	if errors.As(err, &denied) && !denied.SessionEnded && denied.Message != "" {
		return &MutationError{Op: op, StatusCode: denied.StatusCode, Message: denied.Message}
	}
	return err
}

// public performs an exchange that needs no credential.
func (c *Client) public(ctx context.Context, r request) (*http.Response, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		closeBody(r.body)
		return nil, err
	}
	return c.roundTrip(req, r.op)
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), r.body)
	if err != nil {
		return nil, &FetchError{Op: r.op, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	return req, nil
}

func (c *Client) roundTrip(req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logging.Debugf("%s %s failed: %v", req.Method, req.URL.Path, err)
		return nil, &FetchError{Op: op, Err: err}
	}
	logging.Debugf("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

func closeBody(body io.Reader) {
	if rc, ok := body.(io.Closer); ok {
		_ = rc.Close()
	}
}

// failure drains and closes an unsuccessful response, returning its status
// and server message.
func failure(resp *http.Response) (int, string) {
	defer resp.Body.Close()
	return resp.StatusCode, readMessage(resp)
}
