package template

import (
	"strings"
)

// rawAttr is one attribute inside the source text of a start tag. The span
// covers the whitespace in front of the attribute so dropping it leaves the
// rest of the tag as written.
type rawAttr struct {
	name       string
	start, end int
}

// rawTag locates the attributes of a start tag ("<path ... />") so single
// attributes can be replaced without reformatting the others.
type rawTag struct {
	src     string
	attrs   []rawAttr
	closeAt int // index where trailing whitespace and '>' or "/>" begin
}

// scanTag expects a well formed start tag, as already accepted by the XML
// decoder.
func scanTag(src string) rawTag {
	t := rawTag{src: src, closeAt: len(src)}
	i := 1
	for i < len(src) && !isSpace(src[i]) && src[i] != '/' && src[i] != '>' {
		i++
	}
	for i < len(src) {
		wsStart := i
		for i < len(src) && isSpace(src[i]) {
			i++
		}
		if i >= len(src) || src[i] == '/' || src[i] == '>' {
			t.closeAt = wsStart
			return t
		}
		nameStart := i
		for i < len(src) && src[i] != '=' && !isSpace(src[i]) {
			i++
		}
		name := src[nameStart:i]
		for i < len(src) && (isSpace(src[i]) || src[i] == '=') {
			i++
		}
		if i >= len(src) {
			break
		}
		quote := src[i]
		i++
		for i < len(src) && src[i] != quote {
			i++
		}
		i++ // closing quote
		t.attrs = append(t.attrs, rawAttr{name: name, start: wsStart, end: i})
	}
	return t
}

func (t rawTag) has(name string) bool {
	for _, a := range t.attrs {
		if a.name == name {
			return true
		}
	}
	return false
}

// rewrite returns the tag with every attribute named in drop removed and the
// given name/value pairs appended after the remaining attributes.
func (t rawTag) rewrite(drop []string, add ...[2]string) string {
	var b strings.Builder
	b.Grow(len(t.src) + 64)
	pos := 0
	for _, a := range t.attrs {
		if !contains(drop, a.name) {
			continue
		}
		b.WriteString(t.src[pos:a.start])
		pos = a.end
	}
	b.WriteString(t.src[pos:t.closeAt])
	for _, kv := range add {
		b.WriteByte(' ')
		b.WriteString(kv[0])
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(kv[1]))
		b.WriteByte('"')
	}
	b.WriteString(t.src[t.closeAt:])
	return b.String()
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// --- XML Escaping ---

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;", "\n", "&#10;", "\t", "&#9;")
)
