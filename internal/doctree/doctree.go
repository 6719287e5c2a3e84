package doctree

// Tree is the render-ready form of a document body.
type Tree struct {
	HTML    string     `json:"html"`    // Rendered HTML fragment
	Nodes   []*Node    `json:"nodes"`   // The same fragment as an element tree
	Outline []*Heading `json:"outline"` // Heading hierarchy with anchor ids
}

// NodeType distinguishes element and text nodes.
type NodeType string

const (
	ElementNode NodeType = "element"
	TextNode    NodeType = "text"
)

// Node is one element or text node of the rendered body.
type Node struct {
	Type     NodeType          `json:"type"`
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Heading is a recursive entry of the document outline.
type Heading struct {
	Level    int        `json:"level"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Children []*Heading `json:"children,omitempty"`
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of that node.
func Walk(nodes []*Node, fn func(*Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}
