package render

import (
	"regexp"
	"strings"
)

// componentTag matches opening tags of capitalized (MDX component) elements.
var componentTag = regexp.MustCompile(`<([A-Z][A-Za-z0-9]*)((?:\s[^<>]*?)?)(\s*/)?>`)

// prepareMDX turns an MDX body into Markdown goldmark can render:
// top-level ESM blocks (import/export paragraphs) are dropped and component
// tags are tagged with their original name, self-closing ones expanded so the
// HTML parser does not swallow following content.
// An import/export line only opens an ESM block at the start of a block; in
// the middle of a paragraph it is prose. Fenced code and inline code spans are
// left untouched.
func prepareMDX(src []byte) []byte {
	lines := strings.SplitAfter(string(src), "\n")
	var out strings.Builder
	out.Grow(len(src))

	var fence string
	inESM := false
	blockStart := true
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if fence != "" {
			out.WriteString(line)
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
				blockStart = true
			}
			continue
		}

		if inESM {
			if trimmed == "" {
				inESM = false
				blockStart = true
				out.WriteString(line)
			}
			continue
		}

		if f := fenceMarker(line); f != "" {
			fence = f
			blockStart = false
			out.WriteString(line)
			continue
		}

		if blockStart && (strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "export ")) {
			inESM = true
			continue
		}

		blockStart = trimmed == ""
		out.WriteString(expandComponents(line))
	}
	return []byte(out.String())
}

// expandComponents rewrites component tags in line outside inline code spans.
// A backtick run without a matching closing run is literal text.
func expandComponents(line string) string {
	var out strings.Builder
	rest := line
	for {
		open := strings.IndexByte(rest, '`')
		if open < 0 {
			out.WriteString(componentTag.ReplaceAllStringFunc(rest, expandComponent))
			return out.String()
		}
		out.WriteString(componentTag.ReplaceAllStringFunc(rest[:open], expandComponent))

		n := backtickRun(rest[open:])
		run := rest[open : open+n]
		after := rest[open+n:]
		end := closingRun(after, n)
		if end < 0 {
			out.WriteString(run)
			rest = after
			continue
		}
		out.WriteString(run + after[:end+n])
		rest = after[end+n:]
	}
}

func backtickRun(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}

// closingRun returns the index in s of a backtick run of exactly n, or -1.
func closingRun(s string, n int) int {
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		m := backtickRun(s[i:])
		if m == n {
			return i
		}
		i += m
	}
	return -1
}

func expandComponent(tag string) string {
	m := componentTag.FindStringSubmatch(tag)
	name, attrs, selfClosing := m[1], m[2], m[3] != ""
	open := "<" + name + ` data-mdx-component="` + name + `"` + attrs + ">"
	if selfClosing {
		return open + "</" + name + ">"
	}
	return open
}

// fenceMarker returns the fence run (``` or ~~~) opening a code block on
// line, or "" when line does not open one.
func fenceMarker(line string) string {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 {
		return ""
	}
	rest := line[indent:]
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(rest) && rest[n] == c {
			n++
		}
		if n >= 3 {
			return rest[:n]
		}
	}
	return ""
}
