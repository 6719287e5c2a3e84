// Package sitemap builds the sitemaps.org XML for the documentation site.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dskt-cc/docs/internal/config"
	"github.com/dskt-cc/docs/internal/content"
	"github.com/dskt-cc/docs/internal/docroute"
	"github.com/dskt-cc/docs/internal/frontmatter"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Change frequencies.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

// URL is one sitemap entry.
type URL struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

// Lister is the part of the content resolver the sitemap reads.
type Lister interface {
	Sections() []config.Section
	ListSectionDocuments(ctx context.Context, section string) []content.DocumentSummary
}

// Build returns the sitemap entries for baseURL: the home page, the docs
// landing page and every listed document. Documents carry their front-matter
// date as lastmod when it parses; everything else is stamped with now.
func Build(ctx context.Context, baseURL string, src Lister, now time.Time) []URL {
	urls := []URL{
		{Loc: baseURL, LastMod: now, ChangeFreq: Daily, Priority: 1.0},
		{Loc: baseURL + docroute.Prefix, LastMod: now, ChangeFreq: Weekly, Priority: 0.9},
	}

	for _, s := range src.Sections() {
		for _, doc := range src.ListSectionDocuments(ctx, s.Key) {
			lastMod := now
			if t, ok := (frontmatter.FrontMatter{Date: doc.Date}).Time(); ok {
				lastMod = t
			}
			urls = append(urls, URL{
				Loc:        baseURL + docroute.Path(s.Key, doc.Slug),
				LastMod:    lastMod,
				ChangeFreq: Monthly,
				Priority:   0.8,
			})
		}
	}

	sort.SliceStable(urls, func(i, j int) bool {
		if urls[i].Priority != urls[j].Priority {
			return urls[i].Priority > urls[j].Priority
		}
		return len(urls[i].Loc) < len(urls[j].Loc)
	})
	return urls
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Write encodes urls as a sitemap document.
func Write(w io.Writer, urls []URL) error {
	set := urlset{Xmlns: xmlns, URLs: make([]xmlURL, len(urls))}
	for i, u := range urls {
		set.URLs[i] = xmlURL{
			Loc:        u.Loc,
			LastMod:    u.LastMod.UTC().Format(time.RFC3339),
			ChangeFreq: u.ChangeFreq,
			Priority:   fmt.Sprintf("%.1f", u.Priority),
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
