// Package template stamps computed ride values into a designer-authored SVG.
//
// Placeholders are found by the id attribute of elements:
//
//	value_*  on <tspan> or <text>  the first text inside is replaced
//	path_*   on <path>             the d attribute is rebuilt from its start point
//	image_*  on <image>            the href is replaced by a rendered asset
//
// Everything else in the document is copied through byte for byte. A
// placeholder that cannot be resolved is left exactly as written.
package template

import (
	"github.com/buffos/go-trackcard/internal/svg"
)

// Identifier conventions.
const (
	ValuePrefix = "value_"
	PathPrefix  = "path_"
	ImagePrefix = "image_"

	// ElevationPathID marks the elevation curve; its stroke is the track color.
	ElevationPathID = "path_elevation"
	// MapImageID is the image slot that receives the map thumbnail.
	MapImageID = "image_map"

	// DefaultFallbackWidth is the pixel width given to images in documents
	// without usable width/height on the root element.
	DefaultFallbackWidth = 1000
)

// Values resolves value_ and path_ placeholders.
type Values interface {
	// String returns the text for a value_ identifier.
	String(id string) (string, bool)
	// Path returns new path data for a path_ identifier, drawn from the
	// descriptor of the path currently in the template.
	Path(id string, desc svg.PathDescriptor) (string, bool)
}

// ImageRequest describes the raster an image_ placeholder needs.
type ImageRequest struct {
	ID     string
	Width  int // pixels
	Height int // pixels
	// Color is the template's track color, set only for the map image.
	Color    svg.Color
	HasColor bool
}

// AssetProvider resolves image_ placeholders to an href, usually a data URL.
type AssetProvider interface {
	Image(req ImageRequest) (string, bool)
}

// AssetFunc adapts a function to AssetProvider.
type AssetFunc func(req ImageRequest) (string, bool)

func (f AssetFunc) Image(req ImageRequest) (string, bool) { return f(req) }

// Template is one SVG document ready to be filled in.
type Template struct {
	Name   string
	Source string
	// FallbackWidth sizes images when the document has no metrics.
	FallbackWidth int
}

// New wraps SVG source text.
func New(name, source string) *Template {
	return &Template{Name: name, Source: source, FallbackWidth: DefaultFallbackWidth}
}

// Substitute applies values and assets to src in one call.
func Substitute(src string, values Values, assets AssetProvider) (string, error) {
	return New("", src).Apply(values, assets)
}

// MapImageRequest reports the size and color the template's map image will
// be asked for, so a caller can render the map ahead of Apply. ok is false
// when the template has no usable image_map element or does not parse.
func (t *Template) MapImageRequest() (ImageRequest, bool) {
	info, err := scan(t.Source, t.fallbackWidth())
	if err != nil || !info.hasMap {
		return ImageRequest{}, false
	}
	return info.mapRequest, true
}

// TrackColor returns the stroke color of the elevation path, if any.
func (t *Template) TrackColor() (svg.Color, bool) {
	info, err := scan(t.Source, t.fallbackWidth())
	if err != nil {
		return svg.Color{}, false
	}
	return info.trackColor, info.hasColor
}

func (t *Template) fallbackWidth() int {
	if t.FallbackWidth > 0 {
		return t.FallbackWidth
	}
	return DefaultFallbackWidth
}
