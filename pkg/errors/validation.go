package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateServerURL checks that raw is an absolute http(s) URL usable as a
// PlantUML image endpoint. The token is appended verbatim, so the URL must not
// carry a query string or fragment.
func ValidateServerURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidServer, "server url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidServer, err, "invalid server url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidServer, "server url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidServer, "server url %q has no host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return New(ErrCodeInvalidServer, "server url %q cannot contain a query or fragment", raw)
	}
	return nil
}

// ValidateInputPath validates a diagram source path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory-like target ("." or a trailing separator)
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "input path cannot be empty")
	}

	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "input path too long (max 4096 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "input path contains invalid control characters")
		}
	}

	if path == "." || path == ".." || strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "input path %q is a directory", path)
	}

	return nil
}
