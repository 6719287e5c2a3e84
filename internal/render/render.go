package render

import (
	"path/filepath"
	"strings"

	"github.com/dskt-cc/docs/internal/doctree"
)

// Renderer converts a document body (front matter already removed) into a
// render tree.
type Renderer interface {
	Render(body []byte) (*doctree.Tree, error)
}

// Extensions lists recognized content file extensions in lookup order.
// When two files share a slug the earlier extension wins. Matching is
// case-sensitive, the same as resolving a slug to a file name.
var Extensions = []string{".mdx", ".md", ".markdown"}

// IsContentFile reports whether name has a recognized content extension.
func IsContentFile(name string) bool {
	return extensionRank(name) >= 0
}

// Slug returns the file name without its content extension.
func Slug(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Preferred reports whether extension a should win over b for the same slug.
func Preferred(a, b string) bool {
	ra, rb := extensionRank(a), extensionRank(b)
	if ra < 0 {
		return false
	}
	return rb < 0 || ra < rb
}

func extensionRank(name string) int {
	ext := filepath.Ext(name)
	for i, e := range Extensions {
		if e == ext {
			return i
		}
	}
	return -1
}
