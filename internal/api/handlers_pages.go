package api

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dskt-cc/docs/internal/docroute"
	"github.com/dskt-cc/docs/internal/sitemap"
	"github.com/go-chi/chi/v5"
)

const stylesheetPath = "/static/highlight.css"

// handleDocsPage serves /docs and everything below it from a routing
// decision: redirect, rendered document, or not-found page.
func (s *Server) handleDocsPage(w http.ResponseWriter, r *http.Request) {
	segments, ok := pathSegments(chi.URLParam(r, "*"))
	if !ok {
		s.renderPage(w, r, http.StatusNotFound, pageData{
			Meta:     docroute.PageMeta{Title: docroute.DefaultTitle},
			NotFound: true,
			Reason:   "malformed path",
		})
		return
	}

	d := s.routes.Route(r.Context(), segments)
	switch d.Outcome {
	case docroute.Redirected:
		http.Redirect(w, r, d.Target, http.StatusFound)
	case docroute.Resolved:
		doc := d.Document
		s.renderPage(w, r, http.StatusOK, pageData{
			Meta:    docroute.MetaFor(doc),
			Section: doc.Section,
			Slug:    doc.Slug,
			Date:    doc.FrontMatter.Date,
			Outline: doc.Body.Outline,
			Body:    template.HTML(doc.Body.HTML),
		})
	default:
		s.log.Debug("docs route not found", "path", r.URL.Path, "reason", d.Reason)
		s.renderPage(w, r, http.StatusNotFound, pageData{
			Meta:     docroute.PageMeta{Title: docroute.DefaultTitle},
			Section:  d.Section,
			NotFound: true,
			Reason:   d.Reason,
		})
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, code int, data pageData) {
	for _, sec := range s.docs.Sections() {
		data.Nav = append(data.Nav, navSection{Section: sec, Documents: s.docs.ListSectionDocuments(r.Context(), sec.Key)})
	}
	data.Stylesheet = stylesheetPath

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.log.Error("render page", "path", r.URL.Path, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w)
}

// pathSegments splits the path below /docs into unescaped segments, ignoring
// empty ones so that /docs/ and /docs//x behave like /docs and /docs/x.
func pathSegments(rest string) ([]string, bool) {
	var segments []string
	for _, raw := range strings.Split(rest, "/") {
		if raw == "" {
			continue
		}
		seg, err := url.PathUnescape(raw)
		if err != nil {
			return nil, false
		}
		segments = append(segments, seg)
	}
	return segments, true
}

func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.styles.WriteStylesheet(&buf); err != nil {
		s.log.Error("write stylesheet", "error", err)
		http.Error(w, "stylesheet unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	urls := sitemap.Build(r.Context(), s.cfg.BaseURL, s.docs, time.Now())
	var buf bytes.Buffer
	if err := sitemap.Write(&buf, urls); err != nil {
		s.log.Error("write sitemap", "error", err)
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	buf.WriteTo(w)
}
