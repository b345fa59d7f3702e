package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantuml/pkg/observability"
)

func TestLogHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	registerLogHooks(newLogger(&buf, log.DebugLevel))

	ctx := context.Background()
	observability.HTTP().OnRequest(ctx, "GET", "uml.test", "/png/SoWkIImgAStDuNBAJrBGjLDmpCbCJbMmKiX8pSd9vt98pKi1IW80")
	observability.HTTP().OnResponse(ctx, "GET", "uml.test", "/png/x", 200, 1500*time.Microsecond)
	observability.HTTP().OnError(ctx, "GET", "uml.test", "/png/x", errors.New("connection refused"))
	observability.Cache().OnCacheMiss(ctx, "image:0123456789abcdef0123456789abcdef")
	observability.Cache().OnCacheSet(ctx, "image:0123456789abcdef0123456789abcdef", 42)

	out := buf.String()
	for _, want := range []string{"request", "response", "status=200", "connection refused", "cache miss", "bytes=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef0123456789abcdef") {
		t.Error("cache keys should be shortened in logs")
	}
}

func TestLogHooksInstalledOnlyWhenVerbose(t *testing.T) {
	isolate(t)
	t.Cleanup(observability.Reset)
	observability.Reset()

	c := New(&bytes.Buffer{}, log.InfoLevel)
	if err := c.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if _, ok := observability.HTTP().(observability.NoopHTTPHooks); !ok {
		t.Error("hooks should stay no-op at info level")
	}

	c.SetLogLevel(log.DebugLevel)
	if err := c.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if _, ok := observability.HTTP().(logHooks); !ok {
		t.Errorf("HTTP() = %T, want logHooks in verbose mode", observability.HTTP())
	}
}

func TestCompleteDiagramFiles(t *testing.T) {
	exts, directive := completeDiagramFiles(nil, nil, "")
	if len(exts) == 0 || exts[0] != "puml" {
		t.Errorf("extensions = %v", exts)
	}
	if directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("directive = %v, want file extension filtering", directive)
	}
}
