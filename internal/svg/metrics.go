// Package svg holds the small parsers the template engine needs from an SVG
// document: lengths and viewBox, stroke colors and path start commands.
package svg

import (
	"math"
	"strconv"
	"strings"
)

// Pixels per unit, anchored at the CSS reference of 96 px per inch.
var unitPx = map[string]float64{
	"":   1,
	"px": 1,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
	"pt": 96.0 / 72.0,
}

// ParseLength converts an SVG length such as "1080", "285.75mm" or "72pt"
// to pixels. ok is false for an empty value or an unknown unit.
func ParseLength(s string) (px float64, ok bool) {
	s = strings.TrimSpace(s)
	split := 0
	for split < len(s) {
		c := s[split]
		if (c < '0' || c > '9') && c != '.' && c != '-' {
			break
		}
		split++
	}
	if split == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:split], 64)
	if err != nil {
		return 0, false
	}
	factor, known := unitPx[strings.TrimSpace(s[split:])]
	if !known {
		return 0, false
	}
	return v * factor, true
}

// ViewBox is the logical coordinate window of an SVG document.
type ViewBox struct {
	MinX, MinY    float64
	Width, Height float64
}

// ParseViewBox reads four numbers separated by whitespace and/or commas.
func ParseViewBox(s string) (ViewBox, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(parts) != 4 {
		return ViewBox{}, false
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return ViewBox{}, false
		}
		v[i] = f
	}
	return ViewBox{MinX: v[0], MinY: v[1], Width: v[2], Height: v[3]}, true
}

// Metrics relates a document's user space to the pixels it is exported at.
type Metrics struct {
	PxWidth, PxHeight           float64
	ViewBoxWidth, ViewBoxHeight float64
}

// NewMetrics builds metrics from the root element's width, height and
// viewBox attributes. Without a usable viewBox, user space is taken to be
// pixel sized. ok is false when width or height cannot be parsed or is not
// positive.
func NewMetrics(width, height, viewBox string) (Metrics, bool) {
	w, okW := ParseLength(width)
	h, okH := ParseLength(height)
	if !okW || !okH || w <= 0 || h <= 0 {
		return Metrics{}, false
	}
	m := Metrics{PxWidth: w, PxHeight: h, ViewBoxWidth: w, ViewBoxHeight: h}
	if vb, ok := ParseViewBox(viewBox); ok && vb.Width > 0 && vb.Height > 0 {
		m.ViewBoxWidth = vb.Width
		m.ViewBoxHeight = vb.Height
	}
	return m, true
}

// Scale returns pixels per user unit on each axis.
func (m Metrics) Scale() (sx, sy float64) {
	return m.PxWidth / m.ViewBoxWidth, m.PxHeight / m.ViewBoxHeight
}

// ImagePixels converts a size in user units to whole pixels, never below 1.
func (m Metrics) ImagePixels(wUnits, hUnits float64) (w, h int) {
	sx, sy := m.Scale()
	return atLeastOne(wUnits * sx), atLeastOne(hUnits * sy)
}

// FallbackPixels sizes an image when the document has no metrics: the width
// is baseWidth and the height keeps the declared aspect ratio.
func FallbackPixels(wUnits, hUnits float64, baseWidth int) (w, h int) {
	aspect := math.Max(wUnits/hUnits, 0.0001)
	return baseWidth, atLeastOne(float64(baseWidth) / aspect)
}

// atLeastOne rounds v to a pixel count in [1, MaxInt32]. NaN counts as 1.
func atLeastOne(v float64) int {
	switch {
	case math.IsNaN(v) || v < 1:
		return 1
	case v > math.MaxInt32:
		return math.MaxInt32
	}
	return int(math.Round(v))
}
