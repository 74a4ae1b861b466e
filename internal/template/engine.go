package template

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/buffos/go-trackcard/internal/log"
	"github.com/buffos/go-trackcard/internal/svg"
)

// Attributes removed from an image before its new href is written.
var imageHrefAttrs = []string{"xlink:href", "href", "sodipodi:absref"}

// Apply returns the template with every resolvable placeholder replaced.
// Parse errors are reported as *ParseError; unresolved placeholders are not
// errors.
func (t *Template) Apply(values Values, assets AssetProvider) (string, error) {
	info, err := scan(t.Source, t.fallbackWidth())
	if err != nil {
		return "", err
	}
	s := &substitution{name: t.Name, src: t.Source, values: values, assets: assets, info: info}
	return s.run()
}

// pendingText holds a value waiting for the first text of the element that
// asked for it. Only one value can wait at a time.
type pendingText struct {
	armed bool
	depth int
	value string
}

func (p *pendingText) arm(value string, depth int) {
	*p = pendingText{armed: true, depth: depth, value: value}
}

func (p *pendingText) clear() { *p = pendingText{} }

// take hands out the waiting value once.
func (p *pendingText) take() (string, bool) {
	if !p.armed {
		return "", false
	}
	v := p.value
	p.clear()
	return v, true
}

type substitution struct {
	name   string
	src    string
	values Values
	assets AssetProvider
	info   docInfo

	out     strings.Builder
	depth   int
	pending pendingText

	// replacing is set while the text run that took the pending value
	// continues, e.g. text following a CDATA section.
	replacing bool
}

func (s *substitution) run() (string, error) {
	s.out.Grow(len(s.src) + len(s.src)/4)
	dec := newDecoder(s.src)
	var prev int64
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &ParseError{Offset: dec.InputOffset(), Err: err}
		}
		off := dec.InputOffset()
		raw := s.src[prev:off]
		prev = off

		if _, ok := tok.(xml.CharData); !ok {
			s.replacing = false
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			s.depth++
			s.out.WriteString(s.startElement(tok, raw))
		case xml.EndElement:
			if s.pending.armed && s.pending.depth == s.depth {
				s.pending.clear()
			}
			s.depth--
			s.out.WriteString(raw)
		case xml.CharData:
			s.out.WriteString(s.charData(tok, raw))
		case xml.Directive:
			declareEntities(dec, tok)
			s.out.WriteString(raw)
		default:
			s.out.WriteString(raw)
		}
	}
	s.out.WriteString(s.src[prev:])
	return s.out.String(), nil
}

func (s *substitution) charData(cd xml.CharData, raw string) string {
	if s.replacing {
		return ""
	}
	if !s.pending.armed || strings.TrimSpace(string(cd)) == "" {
		return raw
	}
	v, _ := s.pending.take()
	s.replacing = true
	return textEscaper.Replace(v)
}

func (s *substitution) startElement(e xml.StartElement, raw string) string {
	id, ok := attr(e, "id")
	if !ok {
		return raw
	}
	switch e.Name.Local {
	case "tspan", "text":
		if strings.HasPrefix(id, ValuePrefix) {
			s.valueElement(id)
		}
	case "path":
		if strings.HasPrefix(id, PathPrefix) {
			return s.pathElement(e, id, raw)
		}
	case "image":
		if strings.HasPrefix(id, ImagePrefix) {
			return s.imageElement(e, id, raw)
		}
	}
	return raw
}

// valueElement arms or clears the pending slot. A later value element
// always wins over one that never received text.
func (s *substitution) valueElement(id string) {
	if s.values == nil {
		s.unresolved(id)
		s.pending.clear()
		return
	}
	v, ok := s.values.String(id)
	if !ok {
		s.unresolved(id)
		s.pending.clear()
		return
	}
	s.pending.arm(v, s.depth)
}

func (s *substitution) pathElement(e xml.StartElement, id, raw string) string {
	d, ok := attr(e, "d")
	if !ok || s.values == nil {
		s.unresolved(id)
		return raw
	}
	desc, err := svg.ParsePathDescriptor(d)
	if err != nil {
		log.Debugf("template %s: %s: %v", s.name, id, err)
		return raw
	}
	nd, ok := s.values.Path(id, desc)
	if !ok {
		s.unresolved(id)
		return raw
	}
	return scanTag(raw).rewrite([]string{"d"}, [2]string{"d", nd})
}

func (s *substitution) imageElement(e xml.StartElement, id, raw string) string {
	if s.assets == nil {
		s.unresolved(id)
		return raw
	}
	req, ok := s.info.imageRequest(e, id)
	if !ok {
		log.Debugf("template %s: %s has no usable width/height", s.name, id)
		return raw
	}
	href, ok := s.assets.Image(req)
	if !ok {
		s.unresolved(id)
		return raw
	}

	tag := scanTag(raw)
	hrefAttr := "xlink:href"
	if tag.has("href") && !tag.has("xlink:href") {
		hrefAttr = "href"
	}
	return tag.rewrite(imageHrefAttrs, [2]string{hrefAttr, href})
}

func (s *substitution) unresolved(id string) {
	log.Debugf("template %s: %s left unchanged", s.name, id)
}
