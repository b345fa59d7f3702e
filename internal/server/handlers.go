package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/plantuml/pkg/codec"
	"github.com/matzehuels/plantuml/pkg/errors"
)

type urlResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	text, ok := readDiagram(w, r)
	if !ok {
		return
	}

	img, err := s.renderer.Render(r.Context(), text)
	if httpErr, ok := errors.AsHTTP(err); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(httpErr.StatusCode)
		w.Write(httpErr.Body)
		return
	}
	if err != nil {
		s.logger.Warn("render failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

func (s *Server) handleURL(w http.ResponseWriter, r *http.Request) {
	text, ok := readDiagram(w, r)
	if !ok {
		return
	}

	token, err := codec.Token(text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	u, err := s.renderer.URL(text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, urlResponse{URL: u, Token: token})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	text, err := codec.DecodeText(token)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode token"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// readDiagram reads the request body, rejecting empty or oversized input.
func readDiagram(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return "", false
	}
	text := string(body)
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "empty diagram"))
		return "", false
	}
	return text, true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
