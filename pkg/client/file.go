package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/plantuml/pkg/errors"
)

const (
	// DefaultExt is the extension given to rendered images.
	DefaultExt = ".png"

	// errorSuffix replaces the input extension for server error pages.
	errorSuffix = "_error.html"
)

// FileOptions controls where ProcessFile writes its results.
type FileOptions struct {
	// Output overrides the image path. Empty derives it from the input.
	Output string

	// ErrorFile overrides the error page path. Empty derives it from the input.
	ErrorFile string

	// Directory, when set, is created if needed and receives the output and
	// error files. Derived names keep only the input's base name; relative
	// overrides are resolved inside Directory and absolute ones are kept.
	Directory string

	// Ext is the image extension, DefaultExt when empty.
	Ext string
}

// Result describes the outcome for a single diagram file.
type Result struct {
	Filename   string `json:"filename"`
	OK         bool   `json:"gen_success"`
	Output     string `json:"output,omitempty"`
	ErrorFile  string `json:"error_file,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Bytes      int    `json:"bytes,omitempty"`
}

// OutputPath returns the image path ProcessFile uses for input.
func OutputPath(input string, opts FileOptions) string {
	ext := opts.Ext
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return placeIn(opts.Directory, opts.Output, stem(input)+ext)
}

// ErrorPath returns the error page path ProcessFile uses for input.
func ErrorPath(input string, opts FileOptions) string {
	return placeIn(opts.Directory, opts.ErrorFile, stem(input)+errorSuffix)
}

// stem drops the extension of path. Leading dots of the base name do not
// start an extension, so ".puml" keeps its whole name.
func stem(path string) string {
	if !strings.Contains(strings.TrimLeft(filepath.Base(path), "."), ".") {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func placeIn(dir, override, derived string) string {
	if override != "" {
		if dir == "" || filepath.IsAbs(override) {
			return override
		}
		return filepath.Join(dir, override)
	}
	if dir == "" {
		return derived
	}
	return filepath.Join(dir, filepath.Base(derived))
}

// ProcessFile renders the diagram in input and writes the image.
//
// On success the image is written and Result.OK is true. If the server
// answers with an error status, its response body is written to the error
// file, Result.OK is false and the returned error is nil; the image path is
// not touched, so an image from an earlier run survives. Connection
// failures and file system errors are returned.
func (c *Client) ProcessFile(ctx context.Context, input string, opts FileOptions) (Result, error) {
	res := Result{Filename: input}
	if err := errors.ValidateInputPath(input); err != nil {
		return res, err
	}

	src, err := os.ReadFile(input)
	if os.IsNotExist(err) {
		return res, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", input)
	}
	if err != nil {
		return res, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", input)
	}

	if opts.Directory != "" {
		if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
			return res, fmt.Errorf("create output directory: %w", err)
		}
	}

	img, err := c.Render(ctx, string(src))
	if httpErr, ok := errors.AsHTTP(err); ok {
		res.ErrorFile = ErrorPath(input, opts)
		res.StatusCode = httpErr.StatusCode
		c.logger.Debug("server returned an error", "file", input, "status", httpErr.StatusCode)
		if err := writeFile(res.ErrorFile, httpErr.Body); err != nil {
			return res, fmt.Errorf("write error file: %w", err)
		}
		return res, nil
	}
	if err != nil {
		return res, err
	}

	res.Output = OutputPath(input, opts)
	if err := writeFile(res.Output, img); err != nil {
		return res, fmt.Errorf("write image: %w", err)
	}
	res.OK = true
	res.Bytes = len(img)
	return res, nil
}

// ProcessFiles renders each input in turn with ProcessFile, calling report
// after each one. Server errors are recorded in the results and do not stop
// the batch; any other error stops it and is returned with the results so
// far. Output and ErrorFile overrides in opts are ignored. Inputs that would
// write the same image, such as a/x.puml and b/x.puml with a Directory, are
// rejected before anything renders.
func (c *Client) ProcessFiles(ctx context.Context, inputs []string, opts FileOptions, report func(Result)) ([]Result, error) {
	opts.Output, opts.ErrorFile = "", ""
	if err := checkCollisions(inputs, opts); err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		res, err := c.ProcessFile(ctx, in, opts)
		if err != nil {
			return results, fmt.Errorf("%s: %w", in, err)
		}
		results = append(results, res)
		if report != nil {
			report(res)
		}
	}
	return results, nil
}

// checkCollisions fails when two distinct inputs map to one output path.
// Error pages share the image stem, so checking images covers both.
func checkCollisions(inputs []string, opts FileOptions) error {
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		out := filepath.Clean(OutputPath(in, opts))
		if prev, ok := seen[out]; ok && filepath.Clean(prev) != filepath.Clean(in) {
			return errors.New(errors.ErrCodeInvalidInput, "%s and %s would both write %s", prev, in, out)
		}
		seen[out] = in
	}
	return nil
}

// writeFile creates path and writes data, closing the file on every path.
func writeFile(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(data)
	return err
}
