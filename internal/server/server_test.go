package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plantuml/pkg/client"
	"github.com/matzehuels/plantuml/pkg/codec"
	"github.com/matzehuels/plantuml/pkg/errors"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// stubRenderer returns canned results keyed on the diagram text.
type stubRenderer struct {
	img []byte
	err error
}

func (s *stubRenderer) Render(ctx context.Context, text string) ([]byte, error) {
	return s.img, s.err
}

func (s *stubRenderer) URL(text string) (string, error) {
	return codec.URL("http://uml.test/png/", text)
}

func newTestServer(r Renderer) *Server {
	return New(Config{}, r, log.New(io.Discard))
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(&stubRenderer{}), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRender(t *testing.T) {
	img := append(append([]byte{}, pngMagic...), 1, 2, 3)
	rec := do(t, newTestServer(&stubRenderer{img: img}), http.MethodPost, "/render", "@startuml\nBob -> Alice\n@enduml")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.Len() != len(img) {
		t.Errorf("body length = %d, want %d", rec.Body.Len(), len(img))
	}
}

func TestRenderForwardsServerError(t *testing.T) {
	stub := &stubRenderer{err: &errors.HTTPError{
		Method:     http.MethodGet,
		URL:        "http://uml.test/png/x",
		StatusCode: http.StatusBadRequest,
		Status:     "400 Bad Request",
		Body:       []byte("<html>Syntax Error?</html>"),
	}}
	rec := do(t, newTestServer(stub), http.MethodPost, "/render", "@startuml\nerror\n@enduml")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if rec.Body.String() != "<html>Syntax Error?</html>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRenderConnectionError(t *testing.T) {
	stub := &stubRenderer{err: errors.New(errors.ErrCodeConnection, "dial tcp: refused")}
	rec := do(t, newTestServer(stub), http.MethodPost, "/render", "A -> B")

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != string(errors.ErrCodeConnection) {
		t.Errorf("code = %q", body.Code)
	}
}

func TestRenderEmptyBody(t *testing.T) {
	rec := do(t, newTestServer(&stubRenderer{}), http.MethodPost, "/render", "  \n")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestURL(t *testing.T) {
	const text = "@startuml\nBob -> Alice : hello\n@enduml"
	rec := do(t, newTestServer(&stubRenderer{}), http.MethodPost, "/url", text)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got urlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	token, _ := codec.Token(text)
	if got.Token != token {
		t.Errorf("token = %q, want %q", got.Token, token)
	}
	if got.URL != "http://uml.test/png/"+token {
		t.Errorf("url = %q", got.URL)
	}
}

func TestDecode(t *testing.T) {
	const text = "@startuml\nBob -> Alice\n@enduml"
	token, err := codec.Token(text)
	if err != nil {
		t.Fatal(err)
	}

	rec := do(t, newTestServer(&stubRenderer{}), http.MethodGet, "/decode/"+token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != text {
		t.Errorf("body = %q, want %q", rec.Body.String(), text)
	}

	rec = do(t, newTestServer(&stubRenderer{}), http.MethodGet, "/decode/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid token status = %d, want 400", rec.Code)
	}
}

func TestWithClient(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngMagic)
	}))
	defer upstream.Close()

	cl, err := client.New(context.Background(), client.Config{BaseURL: upstream.URL + "/png/"})
	if err != nil {
		t.Fatal(err)
	}
	rec := do(t, newTestServer(cl), http.MethodPost, "/render", "A -> B")
	if rec.Code != http.StatusOK || rec.Body.Len() != len(pngMagic) {
		t.Errorf("status = %d, body length = %d", rec.Code, rec.Body.Len())
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(&stubRenderer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
