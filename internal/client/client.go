// Package client talks to the parish REST backend. Every resource is a plain
// JSON collection addressed by id.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsNotFound reports whether err, or its cause, is a 404 response.
func IsNotFound(err error) bool {
	se, ok := errors.Cause(err).(*StatusError)
	return ok && se.Code == http.StatusNotFound
}

type Client struct {
	base  string
	httpc *http.Client
	log   *logrus.Entry
	now   func() time.Time
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the API rooted at base, e.g. "http://localhost:8080/api".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:  strings.TrimRight(base, "/"),
		httpc: &http.Client{Timeout: 10 * time.Second},
		log:   logrus.NewEntry(logrus.StandardLogger()),
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Families() *Resource      { return c.Resource("/families") }
func (c *Client) Events() *Resource        { return c.Resource("/events") }
func (c *Client) Registrations() *Resource { return c.Resource("/registrations") }

func (c *Client) Resource(path string) *Resource {
	return &Resource{c: c, path: "/" + strings.Trim(path, "/"), log: c.log.WithField("resource", strings.Trim(path, "/"))}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s", method, path)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s %s", method, path)
	}
	if resp.StatusCode >= 300 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(raw, out), "decode %s %s", method, path)
}

func (c *Client) cacheBuster() url.Values {
	return url.Values{"_ts": {strconv.FormatInt(c.now().UnixMilli(), 10)}}
}
