package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dskt-cc/docs/internal/content"
	"github.com/go-chi/chi/v5"
)

type sectionListing struct {
	Key       string                    `json:"key"`
	Title     string                    `json:"title"`
	Documents []content.DocumentSummary `json:"documents"`
}

// handleListSections lists every configured section with its documents.
func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections := s.docs.Sections()
	out := make([]sectionListing, 0, len(sections))
	for _, sec := range sections {
		out = append(out, sectionListing{
			Key:       sec.Key,
			Title:     sec.Title,
			Documents: s.docs.ListSectionDocuments(r.Context(), sec.Key),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out})
}

// handleListDocuments lists one section. An existing section without
// documents is an empty list, not a 404.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	if !s.docs.HasSection(section) {
		jsonError(w, "unknown section", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"section":   section,
		"documents": s.docs.ListSectionDocuments(r.Context(), section),
	})
}

// handleGetDocument returns a serialized document, honoring If-None-Match.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	slug := chi.URLParam(r, "slug")

	doc, err := s.docs.ResolveDocument(r.Context(), section, slug)
	if err != nil {
		if content.IsNotFound(err) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to resolve document", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(doc)
	if err != nil {
		s.log.Error("encode document", "section", section, "slug", slug, "error", err)
		jsonError(w, "failed to encode document", http.StatusInternalServerError)
		return
	}

	etag := `"` + contentHashHex(data) + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
	w.Write([]byte("\n"))
}

// contentHashHex computes SHA-256 of data and returns it hex encoded.
func contentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
