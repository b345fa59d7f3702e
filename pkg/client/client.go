package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plantuml/pkg/cache"
	"github.com/matzehuels/plantuml/pkg/codec"
	"github.com/matzehuels/plantuml/pkg/errors"
	"github.com/matzehuels/plantuml/pkg/httputil"
	"github.com/matzehuels/plantuml/pkg/observability"
)

// Client renders diagrams through a PlantUML server. It is safe for
// sequential use; the CLI processes one diagram at a time.
type Client struct {
	cfg      Config
	http     *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *log.Logger
	session  []*http.Cookie
}

// Option customizes a Client.
type Option func(*Client)

// WithCache stores rendered images in c for ttl. A ttl of 0 keeps entries
// until they are deleted.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithHTTPClient replaces the underlying HTTP client. Config.Timeout is not
// applied to a client supplied this way.
func WithHTTPClient(h *http.Client) Option {
	return func(cl *Client) { cl.http = h }
}

// New creates a Client from cfg. If cfg.FormAuth is set, New logs in before
// returning: a transport failure yields CONNECTION_ERROR and a non-200
// answer yields an [errors.HTTPError].
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		cache:  cache.NewNullCache(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.FormAuth != nil {
		if err := c.login(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Config returns the effective configuration, defaults applied.
func (c *Client) Config() Config { return c.cfg }

// URL returns the image URL for text.
func (c *Client) URL(text string) (string, error) {
	return codec.URL(c.cfg.BaseURL, text)
}

// Render returns the image the server produces for text.
func (c *Client) Render(ctx context.Context, text string) ([]byte, error) {
	token, err := codec.Token(text)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram")
	}
	target := c.cfg.BaseURL + token

	key := cache.ImageKey(c.cfg.BaseURL, token)
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "err", err)
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, key)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, key)

	var body []byte
	err = httputil.Retry(ctx, c.cfg.Retries+1, retryDelay, func() error {
		var err error
		body, err = c.get(ctx, target)
		return err
	})
	if err != nil {
		return nil, httputil.Cause(err)
	}

	if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, key, len(body))
	}
	return body, nil
}

// get fetches target. Connection failures and 5xx answers come back wrapped
// in a RetryableError.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidServer, err, "build request")
	}
	c.decorate(req, c.cfg.Headers)
	for _, ck := range c.session {
		req.AddCookie(ck)
	}

	status, respStatus, body, err := doWith(ctx, c.http, req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: err}
	}
	if status < 200 || status > 299 {
		httpErr := &errors.HTTPError{
			Method:     http.MethodGet,
			URL:        target,
			StatusCode: status,
			Status:     respStatus,
			Body:       body,
		}
		if status >= 500 {
			return nil, &httputil.RetryableError{Err: httpErr}
		}
		return nil, httpErr
	}
	return body, nil
}

// login posts the configured form and keeps the session cookies.
func (c *Client) login(ctx context.Context) error {
	fa := c.cfg.FormAuth
	form := url.Values{}
	for k, v := range fa.Body {
		form.Set(k, v)
	}

	var body io.Reader
	target := fa.URL
	if fa.Method == http.MethodGet || fa.Method == http.MethodHead {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + form.Encode()
	} else {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, fa.Method, target, body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "build login request")
	}
	c.decorate(req, fa.Headers)

	// Cookies set on redirects during login are collected by a jar local to
	// this request.
	jar, _ := cookiejar.New(nil)
	loginClient := *c.http
	loginClient.Jar = jar

	status, respStatus, respBody, err := doWith(ctx, &loginClient, req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &errors.HTTPError{
			Method:     fa.Method,
			URL:        fa.URL,
			StatusCode: status,
			Status:     respStatus + " (login failed, check the form auth settings)",
			Body:       respBody,
		}
	}

	c.session = jar.Cookies(req.URL)
	c.logger.Debug("logged in", "url", fa.URL, "cookies", len(c.session))
	return nil
}

// decorate applies the user agent, headers and basic auth to req.
func (c *Client) decorate(req *http.Request, headers map[string]string) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if ba := c.cfg.BasicAuth; ba != nil {
		req.SetBasicAuth(ba.Username, ba.Password)
	}
}

// doWith sends req and reads the whole body. Transport failures, including
// a failure while reading the body, are CONNECTION_ERRORs.
func doWith(ctx context.Context, hc *http.Client, req *http.Request) (int, string, []byte, error) {
	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return 0, "", nil, errors.Wrap(errors.ErrCodeConnection, err, "%s %s", req.Method, redact(req.URL))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return 0, "", nil, errors.Wrap(errors.ErrCodeConnection, err, "read response from %s", redact(req.URL))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp.StatusCode, resp.Status, body, nil
}

// redact drops the query string, which may hold login form fields.
func redact(u *url.URL) string {
	cp := *u
	cp.RawQuery = ""
	cp.User = nil
	return cp.String()
}

// String describes the client for log output.
func (c *Client) String() string {
	auth := "none"
	switch {
	case c.cfg.BasicAuth != nil:
		auth = "basic"
	case c.cfg.FormAuth != nil:
		auth = "form"
	}
	return fmt.Sprintf("plantuml client (server=%s auth=%s)", c.cfg.BaseURL, auth)
}
