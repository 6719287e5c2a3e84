package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dskt-cc/docs/internal/config"
	"github.com/dskt-cc/docs/internal/doctree"
	"github.com/dskt-cc/docs/internal/frontmatter"
	"github.com/dskt-cc/docs/internal/metrics"
	"github.com/dskt-cc/docs/internal/render"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxConcurrentReads bounds file reads while listing a section.
const maxConcurrentReads = 8

// unconfiguredLabel is the metrics label for any section not in the
// configuration, keeping label cardinality bounded by the config.
const unconfiguredLabel = "unconfigured"

var errInvalidSegment = errors.New("invalid path segment")

// DocumentSummary is a document's front matter without its body.
type DocumentSummary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Order       *int   `json:"order,omitempty"`
}

// SerializedDocument is a parsed, render-ready document. Values returned by
// the resolver may be shared between callers and must not be modified.
type SerializedDocument struct {
	Section     string                  `json:"section"`
	Slug        string                  `json:"slug"`
	FrontMatter frontmatter.FrontMatter `json:"frontMatter"`
	Body        *doctree.Tree           `json:"body"`
}

// Resolver locates, orders and serializes documentation content stored as
// one directory per section and one file per document.
type Resolver struct {
	fsys     fs.FS
	sections []config.Section
	renderer render.Renderer
	cache    Cache
	log      *slog.Logger
	rec      metrics.Recorder
	group    singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache sets the document cache. The default is NopCache.
func WithCache(c Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Resolver) { r.rec = rec }
}

// NewResolver creates a Resolver reading content from fsys, whose root is the
// content directory.
func NewResolver(fsys fs.FS, sections []config.Section, renderer render.Renderer, opts ...Option) *Resolver {
	r := &Resolver{
		fsys:     fsys,
		sections: append([]config.Section(nil), sections...),
		renderer: renderer,
		cache:    NopCache{},
		log:      slog.Default(),
		rec:      metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sections returns the configured sections in navigation order.
func (r *Resolver) Sections() []config.Section {
	return append([]config.Section(nil), r.sections...)
}

// Section returns the configured section with the given key.
func (r *Resolver) Section(key string) (config.Section, bool) {
	for _, s := range r.sections {
		if s.Key == key {
			return s, true
		}
	}
	return config.Section{}, false
}

// HasSection reports whether section is configured or has a directory in
// the content store. It separates "unknown section" from "empty section",
// which ListSectionDocuments deliberately does not.
func (r *Resolver) HasSection(section string) bool {
	if _, ok := r.Section(section); ok {
		return true
	}
	if !validSegment(section) {
		return false
	}
	info, err := fs.Stat(r.fsys, section)
	return err == nil && info.IsDir()
}

// ListSectionDocuments returns the documents of section ordered by their
// front-matter order (absent last), then by slug. A missing or empty section
// yields an empty slice. Files that fail to parse are logged and left out.
func (r *Resolver) ListSectionDocuments(ctx context.Context, section string) []DocumentSummary {
	label := r.metricLabel(section)
	start := time.Now()
	defer func() { r.rec.ObserveListDuration(label, time.Since(start)) }()
	log := r.log.With("section", section)

	files, err := r.sectionFiles(section)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, errInvalidSegment) {
			log.Debug("section has no content directory")
		} else {
			log.Warn("failed to read section", "error", err)
		}
		return []DocumentSummary{}
	}

	summaries := make([]*DocumentSummary, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fm, err := r.readFrontMatter(f)
			if err != nil {
				log.Warn("excluding document from listing", "file", f, "error", err)
				r.rec.IncListExcluded(label)
				return nil
			}
			summaries[i] = &DocumentSummary{
				Slug:        render.Slug(f),
				Title:       fm.Title,
				Description: fm.Description,
				Date:        fm.Date,
				Order:       fm.Order,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("section listing interrupted", "error", err)
		return []DocumentSummary{}
	}

	docs := make([]DocumentSummary, 0, len(summaries))
	for _, s := range summaries {
		if s != nil {
			docs = append(docs, *s)
		}
	}
	SortSummaries(docs)
	return docs
}

func (r *Resolver) metricLabel(section string) string {
	if _, ok := r.Section(section); ok {
		return section
	}
	return unconfiguredLabel
}

// SortSummaries orders docs ascending by Order; documents without an order
// come after all ordered ones. Ties are broken by slug.
func SortSummaries(docs []DocumentSummary) {
	sort.SliceStable(docs, func(i, j int) bool {
		oi, oj := docs[i].Order, docs[j].Order
		switch {
		case oi != nil && oj != nil:
			if *oi != *oj {
				return *oi < *oj
			}
		case oi != nil:
			return true
		case oj != nil:
			return false
		}
		return docs[i].Slug < docs[j].Slug
	})
}

// ResolveDocument reads, parses and renders section/slug. Any failure to
// find, parse or render the file is a *DocumentNotFoundError, including a
// context that is already done, whose error it wraps.
func (r *Resolver) ResolveDocument(ctx context.Context, section, slug string) (*SerializedDocument, error) {
	key := cacheKey(section, slug)
	if doc, ok := r.cache.Get(key); ok {
		r.rec.IncResolve(metrics.ResolveHit)
		return doc, nil
	}
	if err := ctx.Err(); err != nil {
		r.rec.IncResolve(metrics.ResolveNotFound)
		return nil, &DocumentNotFoundError{Section: section, Slug: slug, Err: err}
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		doc, err := r.load(section, slug)
		if err != nil {
			return nil, err
		}
		r.cache.Set(key, doc)
		return doc, nil
	})
	if err != nil {
		log := r.log.With("section", section, "slug", slug)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, errInvalidSegment) {
			log.Debug("document not found")
		} else {
			log.Warn("failed to load document", "error", err)
		}
		r.rec.IncResolve(metrics.ResolveNotFound)
		return nil, err
	}
	r.rec.IncResolve(metrics.ResolveRendered)
	return v.(*SerializedDocument), nil
}

func (r *Resolver) load(section, slug string) (*SerializedDocument, error) {
	notFound := func(err error) error {
		return &DocumentNotFoundError{Section: section, Slug: slug, Err: err}
	}
	if !validSegment(section) || !validSegment(slug) {
		return nil, notFound(errInvalidSegment)
	}

	src, err := r.readDocument(section, slug)
	if err != nil {
		return nil, notFound(err)
	}

	fm, body, err := frontmatter.Parse(src)
	if err != nil {
		return nil, notFound(err)
	}
	if err := fm.Validate(); err != nil {
		return nil, notFound(err)
	}

	tree, err := r.renderer.Render(body)
	if err != nil {
		return nil, notFound(err)
	}

	return &SerializedDocument{
		Section:     section,
		Slug:        slug,
		FrontMatter: fm,
		Body:        tree,
	}, nil
}

// readDocument returns the first existing file for slug in extension order.
func (r *Resolver) readDocument(section, slug string) ([]byte, error) {
	for _, ext := range render.Extensions {
		src, err := fs.ReadFile(r.fsys, path.Join(section, slug+ext))
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fs.ErrNotExist
}

func (r *Resolver) readFrontMatter(name string) (frontmatter.FrontMatter, error) {
	src, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return frontmatter.FrontMatter{}, err
	}
	fm, _, err := frontmatter.Parse(src)
	if err != nil {
		return frontmatter.FrontMatter{}, err
	}
	if err := fm.Validate(); err != nil {
		return frontmatter.FrontMatter{}, err
	}
	return fm, nil
}

// sectionFiles returns the content files directly inside section, one per
// slug, as paths relative to the content root.
func (r *Resolver) sectionFiles(section string) ([]string, error) {
	if !validSegment(section) {
		return nil, errInvalidSegment
	}
	entries, err := fs.ReadDir(r.fsys, section)
	if err != nil {
		return nil, fmt.Errorf("read section %s: %w", section, err)
	}

	bySlug := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !render.IsContentFile(e.Name()) {
			continue
		}
		slug := render.Slug(e.Name())
		if prev, ok := bySlug[slug]; ok {
			if !render.Preferred(e.Name(), prev) {
				r.log.Warn("duplicate slug, ignoring file", "section", section, "file", e.Name(), "kept", prev)
				continue
			}
			r.log.Warn("duplicate slug, ignoring file", "section", section, "file", prev, "kept", e.Name())
		}
		bySlug[slug] = e.Name()
	}

	files := make([]string, 0, len(bySlug))
	for _, name := range bySlug {
		files = append(files, path.Join(section, name))
	}
	sort.Strings(files)
	return files, nil
}

// validSegment reports whether s can be used as a single path element.
func validSegment(s string) bool {
	return s != "" && s != "." && !strings.Contains(s, "/") && fs.ValidPath(s)
}
