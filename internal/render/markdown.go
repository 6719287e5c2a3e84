package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/dskt-cc/docs/internal/doctree"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "monokai"

// Markdown renders Markdown/MDX bodies with GFM, heading anchors and
// class-based syntax highlighting. It is safe for concurrent use.
type Markdown struct {
	md    goldmark.Markdown
	style string
}

// NewMarkdown builds a Markdown renderer using the named chroma style.
func NewMarkdown(style string) *Markdown {
	if style == "" {
		style = DefaultStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	return &Markdown{md: md, style: style}
}

// Render parses body once and produces the HTML fragment, its element tree
// and the heading outline.
func (m *Markdown) Render(body []byte) (*doctree.Tree, error) {
	src := prepareMDX(body)

	ctx := parser.NewContext()
	doc := m.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var buf bytes.Buffer
	if err := m.md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	nodes, err := parseFragment(buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &doctree.Tree{
		HTML:    buf.String(),
		Nodes:   nodes,
		Outline: outline(doc, src),
	}, nil
}

// WriteStylesheet writes the CSS for the highlighting classes.
func (m *Markdown) WriteStylesheet(w io.Writer) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	return formatter.WriteCSS(w, styles.Get(m.style))
}

// outline builds the heading hierarchy from the top-level headings of doc.
func outline(doc ast.Node, src []byte) []*doctree.Heading {
	// Root is level 0; every heading nests under it.
	type stackEntry struct {
		heading *doctree.Heading
		level   int
	}
	root := &doctree.Heading{}
	stack := []stackEntry{{heading: root, level: 0}}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		node, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		h := &doctree.Heading{
			Level: node.Level,
			ID:    headingID(node),
			Title: strings.TrimSpace(string(node.Text(src))),
		}

		// Pop until the top is a shallower heading.
		for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].heading
		parent.Children = append(parent.Children, h)
		stack = append(stack, stackEntry{heading: h, level: node.Level})
	}
	return root.Children
}

func headingID(n *ast.Heading) string {
	v, ok := n.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}
