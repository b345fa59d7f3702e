package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plantuml/pkg/client"
	"github.com/matzehuels/plantuml/pkg/codec"
	"github.com/matzehuels/plantuml/pkg/errors"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake")

// newFakeServer answers like a PlantUML server: diagrams mentioning "error"
// get a 400 error page, everything else a PNG.
func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text, err := codec.DecodeText(filepath.Base(r.URL.Path))
		if err != nil {
			http.Error(w, "bad token", http.StatusBadRequest)
			return
		}
		if strings.Contains(text, "error") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("<html>Syntax Error?</html>"))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(fakePNG)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// isolate points config and cache lookups at temporary directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, k := range []string{"PLANTUML_SERVER", "PLANTUML_REDIS_URL", "PLANTUML_NO_CACHE", "CI"} {
		t.Setenv(k, "")
	}
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return execute(t, context.Background(), stdin, io.Discard, args...)
}

// execute is run with a caller-supplied context and stderr.
func execute(t *testing.T, ctx context.Context, stdin string, stderr io.Writer, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func writeDiagram(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateSingle(t *testing.T) {
	isolate(t)
	srv := newFakeServer(t)
	dir := t.TempDir()
	in := writeDiagram(t, dir, "seq.puml", "@startuml\nBob -> Alice\n@enduml\n")

	out, err := run(t, "", "generate", in, "--server", srv.URL+"/png/", "--quiet")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "seq.png"))
	if err != nil {
		t.Fatalf("image not written: %v", err)
	}
	if !bytes.Equal(got, fakePNG) {
		t.Errorf("image = %q", got)
	}
	if !strings.Contains(out, "seq.puml") {
		t.Errorf("output = %q", out)
	}
}

func TestGenerateSingleSpinnerStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		image   string
		status  string
		wantErr bool
	}{
		{"success", "@startuml\nBob -> Alice\n@enduml\n", "seq.png", iconSuccess, false},
		{"server error", "@startuml\nerror\n@enduml\n", "seq_error.html", iconError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			srv := newFakeServer(t)
			dir := t.TempDir()
			in := writeDiagram(t, dir, "seq.puml", tt.body)

			var stderr syncBuffer
			out, err := execute(t, context.Background(), "", &stderr, "generate", in, "-s", srv.URL+"/png/")
			if (err != nil) != tt.wantErr {
				t.Fatalf("generate error = %v, wantErr %v", err, tt.wantErr)
			}
			if want := tt.status + " " + in; !strings.Contains(stderr.String(), want) {
				t.Errorf("stderr = %q, want %q", stderr.String(), want)
			}
			if !strings.Contains(out, filepath.Join(dir, tt.image)) {
				t.Errorf("stdout = %q, want %s", out, tt.image)
			}
			if strings.Contains(out, tt.status) {
				t.Errorf("stdout = %q repeats the status line", out)
			}
		})
	}
}

func TestGenerateCancelled(t *testing.T) {
	isolate(t)
	srv := newFakeServer(t)
	in := writeDiagram(t, t.TempDir(), "seq.puml", "@startuml\nBob -> Alice\n@enduml\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := execute(t, ctx, "", io.Discard, "generate", in, "-s", srv.URL+"/png/", "--no-cache")
	if err != context.Canceled {
		t.Errorf("generate error = %v, want context.Canceled", err)
	}
}

func TestGenerateBatchWithFailure(t *testing.T) {
	isolate(t)
	srv := newFakeServer(t)
	dir := t.TempDir()
	good := writeDiagram(t, dir, "good.puml", "@startuml\nA -> B\n@enduml\n")
	bad := writeDiagram(t, dir, "bad.puml", "@startuml\nerror here\n@enduml\n")
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "", "generate", bad, good, "-s", srv.URL+"/png/", "-d", outDir, "--json")
	if !errors.Is(err, errors.ErrCodeHTTP) {
		t.Fatalf("generate error = %v, want HTTP_ERROR", err)
	}

	var results []client.Result
	if jerr := json.Unmarshal([]byte(out), &results); jerr != nil {
		t.Fatalf("invalid JSON output %q: %v", out, jerr)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].OK || !results[1].OK {
		t.Errorf("results = %+v", results)
	}

	if _, err := os.Stat(filepath.Join(outDir, "good.png")); err != nil {
		t.Errorf("good image missing: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(outDir, "bad_error.html"))
	if err != nil {
		t.Fatalf("error page missing: %v", err)
	}
	if string(page) != "<html>Syntax Error?</html>" {
		t.Errorf("error page = %q", page)
	}
	if _, err := os.Stat(filepath.Join(outDir, "bad.png")); !os.IsNotExist(err) {
		t.Errorf("bad.png should not exist, stat err = %v", err)
	}
}

func TestGenerateConnectionError(t *testing.T) {
	isolate(t)
	srv := newFakeServer(t)
	url := srv.URL + "/png/"
	srv.Close()

	in := writeDiagram(t, t.TempDir(), "a.puml", "A -> B")
	_, err := run(t, "", "generate", in, "-s", url, "--quiet", "--no-cache")
	if !errors.Is(err, errors.ErrCodeConnection) {
		t.Errorf("generate error = %v, want CONNECTION_ERROR", err)
	}
}

func TestGenerateRejectsOutputWithManyInputs(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "generate", "a.puml", "b.puml", "-o", "x.png")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("generate error = %v, want INVALID_INPUT", err)
	}
}

func TestGenerateInvalidServer(t *testing.T) {
	isolate(t)
	in := writeDiagram(t, t.TempDir(), "a.puml", "A -> B")
	_, err := run(t, "", "generate", in, "-s", "ftp://example.com/")
	if !errors.Is(err, errors.ErrCodeInvalidServer) {
		t.Errorf("generate error = %v, want INVALID_SERVER", err)
	}
}

func TestURLCommand(t *testing.T) {
	isolate(t)
	const text = "@startuml\nBob -> Alice : hello\n@enduml"
	token, err := codec.Token(text)
	if err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "url", "--text", text, "-s", "http://uml.test/png/")
	if err != nil {
		t.Fatal(err)
	}
	if want := "http://uml.test/png/" + token + "\n"; out != want {
		t.Errorf("url --text = %q, want %q", out, want)
	}

	in := writeDiagram(t, t.TempDir(), "a.puml", text)
	out, err = run(t, "", "url", in)
	if err != nil {
		t.Fatal(err)
	}
	if want := client.DefaultBaseURL + token + "\n"; out != want {
		t.Errorf("url FILE = %q, want %q", out, want)
	}

	if _, err := run(t, "", "url"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("url without input error = %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	isolate(t)
	const text = "@startuml\nA -> B\n@enduml\n"

	token, err := run(t, text, "encode")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	token = strings.TrimSpace(token)
	want, _ := codec.Token(text)
	if token != want {
		t.Errorf("encode = %q, want %q", token, want)
	}

	out, err := run(t, "", "decode", token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != text {
		t.Errorf("decode = %q, want %q", out, text)
	}

	out, err = run(t, "", "decode", "http://uml.test/png/"+token)
	if err != nil || out != text {
		t.Errorf("decode URL = %q, %v", out, err)
	}

	if _, err := run(t, "", "decode", "!!"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("decode invalid error = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	isolate(t)
	cacheHome := os.Getenv("XDG_CACHE_HOME")

	out, err := run(t, "", "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	dir := strings.TrimSpace(out)
	if dir != filepath.Join(cacheHome, appName) {
		t.Errorf("cache path = %q", dir)
	}

	// Populate the cache through a render, then clear it.
	srv := newFakeServer(t)
	in := writeDiagram(t, t.TempDir(), "a.puml", "A -> B")
	if _, err := run(t, "", "generate", in, "-s", srv.URL+"/png/", "--quiet"); err != nil {
		t.Fatal(err)
	}

	out, err = run(t, "", "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached images") {
		t.Errorf("cache clear output = %q", out)
	}
}

func TestConfigFlag(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`server = "http://uml.internal/png/"`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "--config", path, "url", "--text", "A -> B")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "http://uml.internal/png/") {
		t.Errorf("url with config = %q", out)
	}

	if _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "missing.toml"), "config"); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("missing --config error = %v", err)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "plantuml") {
		t.Error("bash completion should mention the command name")
	}
}
