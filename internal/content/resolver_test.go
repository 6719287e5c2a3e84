package content

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dskt-cc/docs/internal/config"
	"github.com/dskt-cc/docs/internal/doctree"
	"github.com/dskt-cc/docs/internal/frontmatter"
	"github.com/dskt-cc/docs/internal/metrics"
	"github.com/dskt-cc/docs/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSections = []config.Section{
	{Key: "getting-started", Title: "Getting Started"},
	{Key: "creating-mods", Title: "Creating Mods"},
}

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func dir() *fstest.MapFile { return &fstest.MapFile{Mode: fs.ModeDir | 0o755} }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// countingRenderer counts Render calls.
type countingRenderer struct {
	inner render.Renderer
	calls atomic.Int64
}

func (c *countingRenderer) Render(body []byte) (*doctree.Tree, error) {
	c.calls.Add(1)
	return c.inner.Render(body)
}

type fakeRecorder struct {
	mu       sync.Mutex
	resolves map[metrics.ResolveResult]int
	excluded map[string]int
	listed   map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{resolves: map[metrics.ResolveResult]int{}, excluded: map[string]int{}, listed: map[string]int{}}
}

func (f *fakeRecorder) IncResolve(r metrics.ResolveResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves[r]++
}

func (f *fakeRecorder) ObserveListDuration(section string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed[section]++
}

func (f *fakeRecorder) IncListExcluded(section string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.excluded[section]++
}

func newTestResolver(fsys fs.FS, opts ...Option) *Resolver {
	opts = append([]Option{WithLogger(discard())}, opts...)
	return NewResolver(fsys, testSections, render.NewMarkdown(""), opts...)
}

func gettingStartedFS() fstest.MapFS {
	return fstest.MapFS{
		"getting-started/installation.mdx": file("---\ntitle: Installation\norder: 1\ndescription: Install the loader\n---\n# Installation\n\nRun the installer.\n"),
		"getting-started/community.mdx":    file("---\ntitle: Community\n---\nJoin the Discord.\n"),
	}
}

func slugs(docs []DocumentSummary) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Slug
	}
	return out
}

func TestListSectionDocuments_OrderedBeforeUnordered(t *testing.T) {
	r := newTestResolver(gettingStartedFS())

	docs := r.ListSectionDocuments(context.Background(), "getting-started")
	require.Len(t, docs, 2)
	assert.Equal(t, "Installation", docs[0].Title)
	assert.Equal(t, "installation", docs[0].Slug)
	assert.Equal(t, "Install the loader", docs[0].Description)
	require.NotNil(t, docs[0].Order)
	assert.Equal(t, 1, *docs[0].Order)
	assert.Equal(t, "Community", docs[1].Title)
	assert.Nil(t, docs[1].Order)
}

func TestListSectionDocuments_SortsByOrderThenSlug(t *testing.T) {
	fsys := fstest.MapFS{
		"s/alpha.mdx":   file("---\ntitle: Alpha\norder: 3\n---\n"),
		"s/bravo.mdx":   file("---\ntitle: Bravo\norder: 1\n---\n"),
		"s/charlie.mdx": file("---\ntitle: Charlie\norder: 2\n---\n"),
		"s/aaa.md":      file("---\ntitle: Unordered A\n---\n"),
		"s/zzz.mdx":     file("---\ntitle: Unordered Z\n---\n"),
		"s/delta.mdx":   file("---\ntitle: Delta\norder: 2\n---\n"),
		"s/zero.mdx":    file("---\ntitle: Zero\norder: -1\n---\n"),
	}
	r := newTestResolver(fsys)

	docs := r.ListSectionDocuments(context.Background(), "s")
	assert.Equal(t, []string{"zero", "bravo", "charlie", "delta", "alpha", "aaa", "zzz"}, slugs(docs))
}

func TestListSectionDocuments_EmptyAndMissing(t *testing.T) {
	fsys := fstest.MapFS{
		"empty":             dir(),
		"assets/logo.png":   file("png"),
		"getting-started/x": file("not content"),
	}
	r := newTestResolver(fsys)
	ctx := context.Background()

	for _, section := range []string{"empty", "missing", "assets", "getting-started", "../etc", ""} {
		docs := r.ListSectionDocuments(ctx, section)
		assert.NotNil(t, docs, section)
		assert.Empty(t, docs, section)
	}
}

func TestListSectionDocuments_ExcludesBrokenFiles(t *testing.T) {
	fsys := gettingStartedFS()
	fsys["getting-started/broken.mdx"] = file("---\ntitle: [oops\n---\n")
	fsys["getting-started/untitled.mdx"] = file("---\norder: 0\n---\nNo title.\n")
	rec := newFakeRecorder()
	r := newTestResolver(fsys, WithRecorder(rec))

	docs := r.ListSectionDocuments(context.Background(), "getting-started")
	assert.Equal(t, []string{"installation", "community"}, slugs(docs))
	assert.Equal(t, 2, rec.excluded["getting-started"])
}

func TestListSectionDocuments_PrefersMDXForDuplicateSlug(t *testing.T) {
	fsys := fstest.MapFS{
		"s/setup.md":  file("---\ntitle: Old Setup\n---\n"),
		"s/setup.mdx": file("---\ntitle: Setup\n---\n"),
	}
	r := newTestResolver(fsys)

	docs := r.ListSectionDocuments(context.Background(), "s")
	require.Len(t, docs, 1)
	assert.Equal(t, "Setup", docs[0].Title)

	doc, err := r.ResolveDocument(context.Background(), "s", "setup")
	require.NoError(t, err)
	assert.Equal(t, "Setup", doc.FrontMatter.Title)
}

func TestListSectionDocuments_IgnoresNestedDirectories(t *testing.T) {
	fsys := gettingStartedFS()
	fsys["getting-started/nested/deep.mdx"] = file("---\ntitle: Deep\n---\n")
	r := newTestResolver(fsys)

	docs := r.ListSectionDocuments(context.Background(), "getting-started")
	assert.Equal(t, []string{"installation", "community"}, slugs(docs))
}

func TestListSectionDocuments_CanceledContext(t *testing.T) {
	r := newTestResolver(gettingStartedFS())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := r.ListSectionDocuments(ctx, "getting-started")
	assert.Empty(t, docs)
}

func TestResolveDocument_Success(t *testing.T) {
	r := newTestResolver(gettingStartedFS())

	doc, err := r.ResolveDocument(context.Background(), "getting-started", "installation")
	require.NoError(t, err)
	assert.Equal(t, "getting-started", doc.Section)
	assert.Equal(t, "installation", doc.Slug)
	assert.Equal(t, "Installation", doc.FrontMatter.Title)
	assert.Equal(t, "Install the loader", doc.FrontMatter.Description)
	require.NotNil(t, doc.Body)
	assert.Contains(t, doc.Body.HTML, `<h1 id="installation">`)
	require.Len(t, doc.Body.Outline, 1)
	assert.Equal(t, "installation", doc.Body.Outline[0].ID)
}

func TestResolveDocument_NotFound(t *testing.T) {
	r := newTestResolver(gettingStartedFS())

	tests := []struct {
		section, slug string
	}{
		{"getting-started", "does-not-exist"},
		{"no-such-section", "installation"},
		{"getting-started", "../getting-started/installation"},
		{"..", "secret"},
		{"getting-started", ""},
		{"", "installation"},
	}
	for _, tt := range tests {
		_, err := r.ResolveDocument(context.Background(), tt.section, tt.slug)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
		assert.True(t, IsNotFound(err))

		var nf *DocumentNotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, tt.section, nf.Section)
		assert.Equal(t, tt.slug, nf.Slug)
	}
}

func TestResolveDocument_ParseFailureIsNotFound(t *testing.T) {
	fsys := fstest.MapFS{
		"s/broken.mdx":   file("---\ntitle: [oops\n---\n"),
		"s/untitled.mdx": file("# No front matter\n"),
		"s/badorder.mdx": file("---\ntitle: X\norder: soon\n---\n"),
	}
	r := newTestResolver(fsys)

	for _, slug := range []string{"broken", "untitled", "badorder"} {
		_, err := r.ResolveDocument(context.Background(), "s", slug)
		require.Error(t, err, slug)
		assert.True(t, IsNotFound(err), slug)

		var pe *frontmatter.ParseError
		assert.True(t, errors.As(err, &pe), slug)
	}
}

func TestResolveDocument_Idempotent(t *testing.T) {
	r := newTestResolver(gettingStartedFS())
	ctx := context.Background()

	first, err := r.ResolveDocument(ctx, "getting-started", "installation")
	require.NoError(t, err)
	second, err := r.ResolveDocument(ctx, "getting-started", "installation")
	require.NoError(t, err)

	assert.Equal(t, first.FrontMatter, second.FrontMatter)
	assert.Equal(t, first.Body, second.Body)
}

func TestResolveDocument_CacheServesWithoutRereading(t *testing.T) {
	fsys := gettingStartedFS()
	cache := NewMemoryCache()
	rec := newFakeRecorder()
	r := newTestResolver(fsys, WithCache(cache), WithRecorder(rec))
	ctx := context.Background()

	first, err := r.ResolveDocument(ctx, "getting-started", "installation")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	// The file is gone, but the cache entry lives for the process lifetime.
	delete(fsys, "getting-started/installation.mdx")
	second, err := r.ResolveDocument(ctx, "getting-started", "installation")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, rec.resolves[metrics.ResolveHit])
	assert.Equal(t, 1, rec.resolves[metrics.ResolveRendered])
}

func TestResolveDocument_NopCacheRereads(t *testing.T) {
	fsys := gettingStartedFS()
	r := newTestResolver(fsys)
	ctx := context.Background()

	_, err := r.ResolveDocument(ctx, "getting-started", "installation")
	require.NoError(t, err)

	delete(fsys, "getting-started/installation.mdx")
	_, err = r.ResolveDocument(ctx, "getting-started", "installation")
	assert.True(t, IsNotFound(err))
}

func TestResolveDocument_FailuresAreNotCached(t *testing.T) {
	fsys := gettingStartedFS()
	cache := NewMemoryCache()
	r := newTestResolver(fsys, WithCache(cache))
	ctx := context.Background()

	_, err := r.ResolveDocument(ctx, "getting-started", "later")
	require.True(t, IsNotFound(err))
	assert.Equal(t, 0, cache.Len())

	fsys["getting-started/later.mdx"] = file("---\ntitle: Later\n---\n")
	doc, err := r.ResolveDocument(ctx, "getting-started", "later")
	require.NoError(t, err)
	assert.Equal(t, "Later", doc.FrontMatter.Title)
}

func TestResolveDocument_ConcurrentFirstResolution(t *testing.T) {
	renderer := &countingRenderer{inner: render.NewMarkdown("")}
	r := NewResolver(gettingStartedFS(), testSections, renderer, WithLogger(discard()), WithCache(NewMemoryCache()))
	ctx := context.Background()

	const n = 32
	docs := make([]*SerializedDocument, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := r.ResolveDocument(ctx, "getting-started", "community")
			if err == nil {
				docs[i] = doc
			}
		}()
	}
	wg.Wait()

	for i, doc := range docs {
		require.NotNil(t, doc, "goroutine %d", i)
		assert.Equal(t, "Community", doc.FrontMatter.Title)
	}
	assert.GreaterOrEqual(t, renderer.calls.Load(), int64(1))

	// Once cached, no further renders happen.
	before := renderer.calls.Load()
	_, err := r.ResolveDocument(ctx, "getting-started", "community")
	require.NoError(t, err)
	assert.Equal(t, before, renderer.calls.Load())
}

func TestHasSection(t *testing.T) {
	fsys := gettingStartedFS()
	fsys["legacy/old.mdx"] = file("---\ntitle: Old\n---\n")
	fsys["notadir.mdx"] = file("---\ntitle: Root\n---\n")
	r := newTestResolver(fsys)

	assert.True(t, r.HasSection("getting-started"))
	assert.True(t, r.HasSection("creating-mods"), "configured sections exist even without a directory")
	assert.True(t, r.HasSection("legacy"))
	assert.False(t, r.HasSection("notadir.mdx"))
	assert.False(t, r.HasSection("unknown"))
	assert.False(t, r.HasSection("../x"))
}

func TestSections_ReturnsCopy(t *testing.T) {
	r := newTestResolver(gettingStartedFS())
	s := r.Sections()
	s[0].Key = "mutated"
	assert.Equal(t, "getting-started", r.Sections()[0].Key)

	sec, ok := r.Section("creating-mods")
	require.True(t, ok)
	assert.Equal(t, "Creating Mods", sec.Title)
}

func TestListSectionDocuments_UnconfiguredSectionsShareOneLabel(t *testing.T) {
	fsys := gettingStartedFS()
	fsys["legacy/old.mdx"] = file("---\ntitle: [oops\n---\n")
	rec := newFakeRecorder()
	r := newTestResolver(fsys, WithRecorder(rec))
	ctx := context.Background()

	r.ListSectionDocuments(ctx, "getting-started")
	r.ListSectionDocuments(ctx, "legacy")
	for _, junk := range []string{"junk1", "junk2", "../x", ""} {
		r.ListSectionDocuments(ctx, junk)
	}

	assert.Equal(t, map[string]int{"getting-started": 1, unconfiguredLabel: 5}, rec.listed)
	assert.Equal(t, map[string]int{unconfiguredLabel: 1}, rec.excluded)
}

func TestListSectionDocuments_ListedSlugsResolve(t *testing.T) {
	fsys := gettingStartedFS()
	fsys["getting-started/Guide.MDX"] = file("---\ntitle: Upper\n---\n")
	fsys["getting-started/Tips.md"] = file("---\ntitle: Tips\n---\n")
	r := newTestResolver(fsys)
	ctx := context.Background()

	docs := r.ListSectionDocuments(ctx, "getting-started")
	assert.Equal(t, []string{"installation", "Tips", "community"}, slugs(docs))
	for _, d := range docs {
		_, err := r.ResolveDocument(ctx, "getting-started", d.Slug)
		assert.NoError(t, err, d.Slug)
	}
}

func TestResolveDocument_CanceledContextIsNotFound(t *testing.T) {
	r := newTestResolver(gettingStartedFS())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, slug := range []string{"installation", "does-not-exist"} {
		_, err := r.ResolveDocument(ctx, "getting-started", slug)
		require.Error(t, err, slug)
		assert.True(t, IsNotFound(err), slug)
		assert.ErrorIs(t, err, context.Canceled, slug)

		var nf *DocumentNotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, slug, nf.Slug)
	}
}
