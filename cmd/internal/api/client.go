package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"fouron4/cmd/internal/ids"
	"fouron4/cmd/internal/session"
)

const defaultTimeout = 30 * time.Second

// Config defines the executor's runtime configuration.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api.4on4.app".
	BaseURL string

	// Timeout bounds each HTTP round trip (zero means the default).
	Timeout time.Duration

	// UserAgent overrides the default User-Agent header when non-empty.
	UserAgent string
}

// Client executes API calls with bearer auth and single-shot 401 recovery.
//
// The refresh credential is an HTTP-only cookie held by the client's cookie
// jar; it is sent automatically on the refresh call and never surfaces in
// client state.
type Client struct {
	log     *slog.Logger
	base    *url.URL
	http    *http.Client
	store   *session.Store
	metrics *Metrics
	ua      string
}

// Option configures optional Client dependencies.
type Option func(*Client)

// WithMetrics attaches executor metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient overrides the underlying HTTP client. A cookie jar is
// installed if the provided client has none, since refresh depends on it.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New constructs a Client bound to the given session store.
func New(cfg Config, log *slog.Logger, store *session.Store, opts ...Option) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, fmt.Errorf("%w: nil session store", ErrConfig)
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: bad base url %q", ErrConfig, cfg.BaseURL)
	}

	c := &Client{
		log:   log,
		base:  base,
		store: store,
		ua:    cfg.UserAgent,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: timeout}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	c.http.Transport = c.metrics.instrument(c.http.Transport)

	return c, nil
}

// BindSession wires the store's refresh operation to this client's refresh
// endpoint. Call once after construction.
func (c *Client) BindSession() {
	c.store.BindRefresh(c.RefreshSession)
}

// RequestOptions carries the caller-controlled parts of a request.
//
// Body is buffered up front so the executor can replay it on retry.
// ContentType empty means "default to JSON when a body is present"; callers
// sending multipart payloads set the boundary-bearing content type produced
// by their multipart writer.
type RequestOptions struct {
	Header      http.Header
	Body        []byte
	ContentType string
}

// Execute performs one authenticated call with single-shot 401 recovery.
// The caller owns the returned response body.
func (c *Client) Execute(ctx context.Context, method, path string, opts RequestOptions) (*http.Response, error) {
	return c.do(ctx, method, path, opts, c.store.Current().AccessToken, true)
}

// do issues the request. allowRetry is forced false on the recursive retry
// call, which caps the recovery at one refresh and one retry per original
// call.
func (c *Client) do(ctx context.Context, method, path string, opts RequestOptions, token string, allowRetry bool) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, opts, token)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w (%v)", method, path, ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusUnauthorized || !allowRetry {
		return resp, nil
	}

	// Authorization failure on the first attempt: one refresh, one retry.
	c.metrics.refreshAttempted()
	if !c.store.Refresh(ctx) {
		// The store has cleared the session; every subscriber has been
		// told to fall back to login. The original failure goes back to
		// the caller untouched.
		c.metrics.sessionEvicted()
		c.log.Warn("api.refresh.fail", "method", method, "path", path)
		return resp, nil
	}

	resp.Body.Close()
	c.metrics.requestRetried()
	c.log.Debug("api.retry", "method", method, "path", path)
	return c.do(ctx, method, path, opts, c.store.Current().AccessToken, false)
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts RequestOptions, token string) (*http.Request, error) {
	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, err
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if reqID, err := ids.NewRequestID(time.Now().UTC()); err == nil {
		req.Header.Set("X-Request-Id", reqID)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	switch {
	case opts.ContentType != "":
		req.Header.Set("Content-Type", opts.ContentType)
	case len(opts.Body) > 0 && req.Header.Get("Content-Type") == "":
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// ---- envelope-level convenience wrappers ----

// Get issues an authenticated GET and decodes the envelope.
func (c *Client) Get(ctx context.Context, path string) (Envelope, error) {
	return c.roundTrip(ctx, http.MethodGet, path, RequestOptions{})
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (Envelope, error) {
	opts, err := jsonOptions(body)
	if err != nil {
		return Envelope{}, err
	}
	return c.roundTrip(ctx, http.MethodPost, path, opts)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (Envelope, error) {
	opts, err := jsonOptions(body)
	if err != nil {
		return Envelope{}, err
	}
	return c.roundTrip(ctx, http.MethodPut, path, opts)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) (Envelope, error) {
	return c.roundTrip(ctx, http.MethodDelete, path, RequestOptions{})
}

// PostForm issues an authenticated multipart POST. The multipart content
// type (with its boundary) comes from the form itself; the executor does
// not impose one.
func (c *Client) PostForm(ctx context.Context, path string, form *Form) (Envelope, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return Envelope{}, err
	}
	return c.roundTrip(ctx, http.MethodPost, path, RequestOptions{
		Body:        body,
		ContentType: contentType,
	})
}

func (c *Client) roundTrip(ctx context.Context, method, path string, opts RequestOptions) (Envelope, error) {
	resp, err := c.Execute(ctx, method, path, opts)
	if err != nil {
		return Envelope{}, err
	}
	return readEnvelope(resp)
}

// postPublic issues an unauthenticated POST with no retry: credential
// exchange endpoints (login, refresh, registration steps) report their own
// failures and must never recurse into refresh.
func (c *Client) postPublic(ctx context.Context, path string, body any) (Envelope, error) {
	opts, err := jsonOptions(body)
	if err != nil {
		return Envelope{}, err
	}
	resp, err := c.do(ctx, http.MethodPost, path, opts, "", false)
	if err != nil {
		return Envelope{}, err
	}
	return readEnvelope(resp)
}

func jsonOptions(body any) (RequestOptions, error) {
	if body == nil {
		return RequestOptions{}, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return RequestOptions{}, err
	}
	return RequestOptions{Body: raw}, nil
}

// Form is a multipart payload: named fields plus at most one file part.
type Form struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      io.Reader
}

func (f *Form) encode() (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if f.File != nil {
		part, err := w.CreateFormFile(f.FileField, f.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.File); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
