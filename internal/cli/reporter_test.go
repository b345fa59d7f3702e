package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := newReporter(io.Discard).(*lineReporter); !ok {
		t.Error("newReporter() under CI should return a line reporter")
	}

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := newReporter(io.Discard).(*barReporter); !ok {
		t.Error("newReporter() outside CI should return a bar reporter")
	}
}

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &lineReporter{w: &buf}
	r.Start(2)
	r.Update(1, "a.puml")
	r.Update(2, "b.puml")
	r.Finish()

	want := []string{"Rendering 2 diagrams", "[1/2] a.puml", "[2/2] b.puml", "Rendering complete"}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBarReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &barReporter{w: &buf}

	// Updates before Start are ignored.
	r.Update(1, "early")
	r.Start(3)
	for i := 1; i <= 3; i++ {
		r.Update(i, "diagram")
	}
	r.Finish()
}
