package template

import (
	"encoding/xml"
	"errors"
	"io"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/buffos/go-trackcard/internal/svg"
)

// docInfo is what the preliminary scan learns about a document before any
// substitution happens.
type docInfo struct {
	metrics    svg.Metrics
	hasMetrics bool

	trackColor svg.Color
	hasColor   bool

	mapRequest ImageRequest
	hasMap     bool

	fallbackWidth int
}

// scan walks the whole document once, collecting the root metrics, the
// elevation path's stroke color and the map image request. It also
// validates the markup, so substitution never starts on a broken document.
func scan(src string, fallbackWidth int) (docInfo, error) {
	info := docInfo{fallbackWidth: fallbackWidth}
	sawSVG := false
	var mapElem *xml.StartElement

	dec := newDecoder(src)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return docInfo{}, &ParseError{Offset: dec.InputOffset(), Err: err}
		}
		if d, ok := tok.(xml.Directive); ok {
			declareEntities(dec, d)
			continue
		}
		e, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if e.Name.Local == "svg" && !sawSVG {
			sawSVG = true
			w, _ := attr(e, "width")
			h, _ := attr(e, "height")
			vb, _ := attr(e, "viewBox")
			info.metrics, info.hasMetrics = svg.NewMetrics(w, h, vb)
		}

		id, _ := attr(e, "id")
		switch {
		case id == ElevationPathID && !info.hasColor:
			stroke, _ := attr(e, "stroke")
			style, _ := attr(e, "style")
			info.trackColor, info.hasColor = svg.StrokeColor(stroke, style)
		case id == MapImageID && e.Name.Local == "image" && mapElem == nil:
			c := e.Copy()
			mapElem = &c
		}
	}

	if mapElem != nil {
		info.mapRequest, info.hasMap = info.imageRequest(*mapElem, MapImageID)
	}
	return info, nil
}

// imageRequest sizes an image element in pixels. ok is false when width or
// height are missing or not plain numbers.
func (info docInfo) imageRequest(e xml.StartElement, id string) (ImageRequest, bool) {
	wUnits, okW := numberAttr(e, "width")
	hUnits, okH := numberAttr(e, "height")
	if !okW || !okH || wUnits <= 0 || hUnits <= 0 {
		return ImageRequest{}, false
	}

	req := ImageRequest{ID: id}
	if info.hasMetrics {
		req.Width, req.Height = info.metrics.ImagePixels(wUnits, hUnits)
	} else {
		req.Width, req.Height = svg.FallbackPixels(wUnits, hUnits, info.fallbackWidth)
	}
	if id == MapImageID && info.hasColor {
		req.Color, req.HasColor = info.trackColor, true
	}
	return req, true
}

// entityDecl matches an internal general entity, <!ENTITY name "value">.
// Parameter and external entities are not matched.
var entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%"'<>]+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

func newDecoder(src string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Entity = maps.Clone(xml.HTMLEntity)
	return dec
}

// declareEntities makes the entities of a DOCTYPE internal subset known to
// dec. Illustrator exports declare their namespaces this way.
func declareEntities(dec *xml.Decoder, d xml.Directive) {
	for _, m := range entityDecl.FindAllSubmatch(d, -1) {
		v := m[2]
		if v == nil {
			v = m[3]
		}
		dec.Entity[string(m[1])] = string(v)
	}
}

// attr finds an unprefixed attribute.
func attr(e xml.StartElement, local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func numberAttr(e xml.StartElement, local string) (float64, bool) {
	v, ok := attr(e, local)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
