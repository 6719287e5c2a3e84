package content

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/dskt-cc/docs/internal/frontmatter"
	"github.com/dskt-cc/docs/internal/render"
)

// Severity grades a content Problem.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is one finding of Check.
type Problem struct {
	Severity Severity `json:"severity"`
	Section  string   `json:"section"`
	File     string   `json:"file,omitempty"`
	Message  string   `json:"message"`
}

func (p Problem) String() string {
	loc := p.Section
	if p.File != "" {
		loc = p.File
	}
	return fmt.Sprintf("%s: %s: %s", p.Severity, loc, p.Message)
}

// Check inspects every content file of every configured section: files that
// the resolver would reject are errors, ambiguities are warnings.
func (r *Resolver) Check(ctx context.Context) []Problem {
	var problems []Problem
	add := func(sev Severity, section, file, format string, args ...any) {
		problems = append(problems, Problem{Severity: sev, Section: section, File: file, Message: fmt.Sprintf(format, args...)})
	}

	configured := make(map[string]bool, len(r.sections))
	for _, s := range r.sections {
		configured[s.Key] = true
		if ctx.Err() != nil {
			break
		}

		entries, err := fs.ReadDir(r.fsys, s.Key)
		if err != nil {
			add(SeverityWarning, s.Key, "", "section has no content directory")
			continue
		}

		slugs := make(map[string]string)
		orders := make(map[int]string)
		contentFiles := 0
		for _, e := range entries {
			if e.IsDir() || !render.IsContentFile(e.Name()) {
				continue
			}
			contentFiles++
			file := path.Join(s.Key, e.Name())
			slug := render.Slug(e.Name())
			if prev, ok := slugs[slug]; ok {
				add(SeverityWarning, s.Key, file, "slug %q also provided by %s", slug, prev)
			} else {
				slugs[slug] = file
			}

			fm, err := r.checkFile(file)
			if err != nil {
				add(SeverityError, s.Key, file, "%v", err)
				continue
			}
			if fm.Order != nil {
				if prev, ok := orders[*fm.Order]; ok {
					add(SeverityWarning, s.Key, file, "order %d also used by %s", *fm.Order, prev)
				} else {
					orders[*fm.Order] = file
				}
			}
			if fm.Date != "" {
				if _, ok := fm.Time(); !ok {
					add(SeverityWarning, s.Key, file, "date %q is not an ISO-8601 date", fm.Date)
				}
			}
		}
		if contentFiles == 0 {
			add(SeverityWarning, s.Key, "", "section has no documents")
		}
	}

	if root, err := fs.ReadDir(r.fsys, "."); err == nil {
		for _, e := range root {
			if e.IsDir() && !configured[e.Name()] {
				add(SeverityWarning, e.Name(), "", "directory is not a configured section")
			}
		}
	}

	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Severity == SeverityError && problems[j].Severity != SeverityError
	})
	return problems
}

// checkFile runs the full resolution pipeline on one file without caching.
func (r *Resolver) checkFile(name string) (frontmatter.FrontMatter, error) {
	src, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return frontmatter.FrontMatter{}, err
	}
	fm, body, err := frontmatter.Parse(src)
	if err != nil {
		return frontmatter.FrontMatter{}, err
	}
	if err := fm.Validate(); err != nil {
		return frontmatter.FrontMatter{}, err
	}
	if _, err := r.renderer.Render(body); err != nil {
		return frontmatter.FrontMatter{}, fmt.Errorf("render: %w", err)
	}
	return fm, nil
}

// HasErrors reports whether any problem is an error.
func HasErrors(problems []Problem) bool {
	for _, p := range problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}
