package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dskt-cc/docs/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseFragment parses rendered HTML into doctree nodes.
func parseFragment(src []byte) ([]*doctree.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(bytes.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	nodes := make([]*doctree.Node, 0, len(parsed))
	for _, n := range parsed {
		if c := convert(n, false); c != nil {
			nodes = append(nodes, c)
		}
	}
	return nodes, nil
}

func convert(n *html.Node, preformatted bool) *doctree.Node {
	switch n.Type {
	case html.TextNode:
		// Whitespace between blocks carries nothing outside <pre>.
		if !preformatted && strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return &doctree.Node{Type: doctree.TextNode, Text: n.Data}

	case html.ElementNode:
		out := &doctree.Node{Type: doctree.ElementNode, Tag: n.Data}
		if len(n.Attr) > 0 {
			out.Attrs = make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				out.Attrs[a.Key] = a.Val
			}
		}
		pre := preformatted || n.Data == "pre"
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c, pre); child != nil {
				out.Children = append(out.Children, child)
			}
		}
		return out
	}

	// Comments and doctypes are dropped.
	return nil
}

// TextContent returns the concatenated text below the given nodes.
func TextContent(nodes []*doctree.Node) string {
	var buf strings.Builder
	doctree.Walk(nodes, func(n *doctree.Node) bool {
		if n.Type == doctree.TextNode {
			buf.WriteString(n.Text)
		}
		return true
	})
	return strings.TrimSpace(buf.String())
}
