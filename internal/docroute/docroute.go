// Package docroute decides what a /docs URL shows: a resolved document, a
// redirect to the first document of a section, or not found.
package docroute

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/dskt-cc/docs/internal/config"
	"github.com/dskt-cc/docs/internal/content"
)

// Prefix is the URL path all documentation routes live under.
const Prefix = "/docs"

// DefaultTitle is the page title when no document is resolved.
const DefaultTitle = "Documentation"

// Outcome is the terminal state of a routing decision.
type Outcome int

const (
	NotFound Outcome = iota
	Resolved
	Redirected
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Redirected:
		return "redirected"
	default:
		return "not_found"
	}
}

// Not-found reasons.
const (
	ReasonTooManySegments  = "too many path segments"
	ReasonNoDocuments      = "no documents in any section"
	ReasonUnknownSection   = "unknown section"
	ReasonEmptySection     = "section has no documents"
	ReasonDocumentNotFound = "document not found"
)

// Decision is the result of routing one request.
type Decision struct {
	Outcome Outcome
	// Target is the redirect location when Outcome is Redirected.
	Target string
	// Document is set when Outcome is Resolved.
	Document *content.SerializedDocument
	Section  string
	Reason   string
}

// Source is the part of the content resolver routing depends on.
type Source interface {
	Sections() []config.Section
	HasSection(section string) bool
	ListSectionDocuments(ctx context.Context, section string) []content.DocumentSummary
	ResolveDocument(ctx context.Context, section, slug string) (*content.SerializedDocument, error)
}

type Router struct {
	src Source
	log *slog.Logger
}

func NewRouter(src Source, log *slog.Logger) *Router {
	return &Router{src: src, log: log}
}

// Route maps the path segments after /docs to a Decision. Redirect targets
// always point at a document that resolved during this call, so following a
// redirect yields Resolved and can never loop.
func (rt *Router) Route(ctx context.Context, segments []string) Decision {
	switch len(segments) {
	case 0:
		for _, s := range rt.src.Sections() {
			if d, ok := rt.firstDocument(ctx, s.Key); ok {
				return d
			}
		}
		return Decision{Outcome: NotFound, Reason: ReasonNoDocuments}

	case 1:
		section := segments[0]
		if !rt.src.HasSection(section) {
			return Decision{Outcome: NotFound, Section: section, Reason: ReasonUnknownSection}
		}
		if d, ok := rt.firstDocument(ctx, section); ok {
			return d
		}
		return Decision{Outcome: NotFound, Section: section, Reason: ReasonEmptySection}

	case 2:
		section, slug := segments[0], segments[1]
		doc, err := rt.src.ResolveDocument(ctx, section, slug)
		if err != nil {
			return Decision{Outcome: NotFound, Section: section, Reason: ReasonDocumentNotFound}
		}
		return Decision{Outcome: Resolved, Document: doc, Section: section}

	default:
		return Decision{Outcome: NotFound, Reason: ReasonTooManySegments}
	}
}

// firstDocument returns a redirect to the first document of section, in
// listing order, that actually resolves.
func (rt *Router) firstDocument(ctx context.Context, section string) (Decision, bool) {
	for _, doc := range rt.src.ListSectionDocuments(ctx, section) {
		if _, err := rt.src.ResolveDocument(ctx, section, doc.Slug); err != nil {
			rt.log.Warn("skipping unresolvable redirect target", "section", section, "slug", doc.Slug, "error", err)
			continue
		}
		return Decision{Outcome: Redirected, Target: Path(section, doc.Slug), Section: section}, true
	}
	return Decision{}, false
}

// PageMeta is the document head metadata for a docs page.
type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Metadata returns the page metadata for segments. Only a resolvable
// section/slug pair gets a document-specific title.
func (rt *Router) Metadata(ctx context.Context, segments []string) PageMeta {
	if len(segments) != 2 {
		return PageMeta{Title: DefaultTitle}
	}
	doc, err := rt.src.ResolveDocument(ctx, segments[0], segments[1])
	if err != nil {
		return PageMeta{Title: DefaultTitle}
	}
	return MetaFor(doc)
}

// MetaFor builds the page metadata of a resolved document.
func MetaFor(doc *content.SerializedDocument) PageMeta {
	return PageMeta{
		Title:       doc.FrontMatter.Title + " | " + DefaultTitle,
		Description: doc.FrontMatter.Description,
	}
}

// Path returns the URL path of a document.
func Path(section, slug string) string {
	return Prefix + "/" + url.PathEscape(section) + "/" + url.PathEscape(slug)
}
