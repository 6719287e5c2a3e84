package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dskt-cc/docs/internal/config"
	"github.com/dskt-cc/docs/internal/content"
	"github.com/dskt-cc/docs/internal/docroute"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stylesheet writes the CSS for highlighted code blocks.
type Stylesheet interface {
	WriteStylesheet(w io.Writer) error
}

// Server is the HTTP server for the documentation site.
type Server struct {
	router   chi.Router
	docs     *content.Resolver
	routes   *docroute.Router
	styles   Stylesheet
	gatherer prometheus.Gatherer
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. A nil gatherer disables
// /metrics.
func NewServer(docs *content.Resolver, styles Stylesheet, gatherer prometheus.Gatherer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		docs:     docs,
		routes:   docroute.NewRouter(docs, log),
		styles:   styles,
		gatherer: gatherer,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/sections", s.handleListSections)
		r.Get("/docs/{section}", s.handleListDocuments)
		r.Get("/docs/{section}/{slug}", s.handleGetDocument)
	})

	r.Get(docroute.Prefix, s.handleDocsPage)
	r.Get(docroute.Prefix+"/*", s.handleDocsPage)

	r.Get("/static/highlight.css", s.handleStylesheet)
	r.Get("/sitemap.xml", s.handleSitemap)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
