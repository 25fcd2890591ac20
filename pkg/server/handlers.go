package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coolbeans/gesetze/pkg/citation"
)

// Output formats accepted by /api/link.
const (
	FormatText     = "text"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

type textRequest struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

type providerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Laws   int    `json:"laws"`
	Active bool   `json:"active"`
}

type validateResponse struct {
	Valid    bool            `json:"valid"`
	Citation *citation.Match `json:"citation,omitempty"`
	Provider string          `json:"provider,omitempty"`
	Href     string          `json:"href,omitempty"`
	Title    string          `json:"title,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleProviders lists providers in effective order.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	active := make(map[string]bool)
	for _, p := range s.resolver.Active() {
		active[p.ID()] = true
	}

	providers := make([]providerInfo, 0, len(active))
	for _, id := range s.resolver.Providers() {
		p, ok := s.resolver.Provider(id)
		if !ok {
			continue
		}
		providers = append(providers, providerInfo{
			ID:     id,
			Name:   p.Name(),
			Laws:   p.Library().Len(),
			Active: active[id],
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}

// handleAnalyze returns every citation found in the text.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	matches := s.resolver.Pattern().ExtractAll(req.Text)
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// handleValidate resolves the first citation in the text.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	match, ok := s.resolver.Pattern().Analyze(req.Text)
	if !ok {
		writeJSON(w, http.StatusOK, validateResponse{})
		return
	}

	response := validateResponse{Citation: match}
	if resolution, ok := s.resolver.Resolve(match); ok {
		response.Valid = true
		response.Provider = resolution.Provider
		response.Href = resolution.Href()
		response.Title = resolution.Title()
	}
	writeJSON(w, http.StatusOK, response)
}

// handleLink rewrites citations into links.
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	var (
		linked string
		err    error
	)
	switch req.Format {
	case "", FormatText:
		linked = s.resolver.Linkify(req.Text)
	case FormatHTML:
		linked, err = s.resolver.LinkifyHTML(req.Text)
	case FormatMarkdown:
		linked, err = s.resolver.LinkifyMarkdown([]byte(req.Text))
	default:
		jsonError(w, fmt.Sprintf("unsupported format %q (want text, html or markdown)", req.Format), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("link failed", "format", req.Format, "error", err)
		jsonError(w, "failed to link text: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": linked})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
