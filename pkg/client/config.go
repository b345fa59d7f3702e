package client

import (
	"net/http"
	"time"

	"github.com/matzehuels/plantuml/pkg/buildinfo"
	"github.com/matzehuels/plantuml/pkg/errors"
)

const (
	// DefaultBaseURL is the public PlantUML image endpoint.
	DefaultBaseURL = "http://www.plantuml.com/plantuml/img/"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 60 * time.Second

	// retryDelay is the initial backoff between retries.
	retryDelay = 500 * time.Millisecond
)

// Config describes how to reach a PlantUML server.
type Config struct {
	// BaseURL is the image endpoint; the token is appended verbatim.
	BaseURL string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent with every request. Empty means "plantuml/<version>".
	UserAgent string

	// Headers are added to every request.
	Headers map[string]string

	// BasicAuth, when set, is applied to every request.
	BasicAuth *BasicAuth

	// FormAuth, when set, triggers a one-time login in New.
	FormAuth *FormAuth

	// Retries is the number of extra attempts for connection failures and
	// 5xx responses. Zero disables retries.
	Retries int
}

// BasicAuth holds HTTP basic authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// FormAuth describes a cookie-based web form login.
type FormAuth struct {
	// URL is the login endpoint. Required.
	URL string

	// Method defaults to POST.
	Method string

	// Body holds the form fields, e.g. username and password. Required.
	Body map[string]string

	// Headers default to a form-encoded Content-Type.
	Headers map[string]string
}

// withDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = "plantuml/" + buildinfo.Version
	}
	if c.FormAuth != nil {
		fa := *c.FormAuth
		if fa.Method == "" {
			fa.Method = http.MethodPost
		}
		if fa.Headers == nil {
			fa.Headers = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
		}
		c.FormAuth = &fa
	}
	return c
}

// Validate reports configuration problems as CONFIGURATION_ERROR, or
// INVALID_SERVER for a malformed base URL.
func (c Config) Validate() error {
	if err := errors.ValidateServerURL(c.BaseURL); err != nil {
		return err
	}
	if c.Retries < 0 {
		return errors.New(errors.ErrCodeConfiguration, "retries must be non-negative")
	}
	if c.BasicAuth != nil && c.FormAuth != nil {
		return errors.New(errors.ErrCodeConfiguration, "basic auth and form auth are mutually exclusive")
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		return errors.New(errors.ErrCodeConfiguration, "basic auth requires a username")
	}
	if fa := c.FormAuth; fa != nil {
		if fa.URL == "" {
			return errors.New(errors.ErrCodeConfiguration,
				"form auth requires a login url pointing to the server's login page")
		}
		if len(fa.Body) == 0 {
			return errors.New(errors.ErrCodeConfiguration,
				"form auth requires a body with the form fields needed to log in, e.g. username and password")
		}
	}
	return nil
}
