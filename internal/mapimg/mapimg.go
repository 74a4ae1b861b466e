// Package mapimg renders the map thumbnail placed in a card's image_map slot:
// the track drawn as a cased line over an optional OpenStreetMap basemap.
package mapimg

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"

	"github.com/buffos/go-trackcard/internal/log"
	"github.com/buffos/go-trackcard/internal/svg"
)

var (
	ErrNoCoords = errors.New("mapimg: no coordinates")
	ErrBadSize  = errors.New("mapimg: invalid image size")
)

// TransparentPNG is a 1x1 fully transparent PNG, for blanking an image slot.
const TransparentPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// DefaultMaxPoints bounds the polyline drawn for very dense tracks.
const DefaultMaxPoints = 2000

// Line styling.
const (
	outlineWidth = 10.0
	innerWidth   = 6.0
)

var (
	outlineColor = color.NRGBA{R: 0, G: 0, B: 0, A: 200}
	// DefaultTrackColor is used when the template has no track color.
	DefaultTrackColor = svg.Color{R: 255, G: 45, B: 85, A: 255}
)

// Request is one map thumbnail: its pixel size and the track color.
type Request struct {
	Width, Height int
	Color         svg.Color
	HasColor      bool
}

func (r Request) trackColor() color.NRGBA {
	if r.HasColor {
		return r.Color.NRGBA()
	}
	return DefaultTrackColor.NRGBA()
}

// Renderer draws map thumbnails. The zero value draws the track on a
// transparent background.
type Renderer struct {
	// Tiles provides the basemap; nil leaves the background transparent.
	Tiles *Tiles
	// MaxPoints caps the simplified polyline; 0 means DefaultMaxPoints.
	MaxPoints int
}

// Render draws coords (lon/lat) into an image of the requested size.
func (r *Renderer) Render(ctx context.Context, coords orb.LineString, req Request) (image.Image, error) {
	if len(coords) == 0 {
		return nil, ErrNoCoords
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, req.Width, req.Height)
	}

	maxPoints := r.MaxPoints
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	line := simplifyLine(dedupe(coords), maxPoints)
	log.Debugf("map: %d points after simplification (from %d)", len(line), len(coords))

	v := fitView(line, req.Width, req.Height)
	dc := gg.NewContext(req.Width, req.Height)

	if r.Tiles != nil {
		r.Tiles.draw(ctx, dc, v)
	}

	pts := v.pixels(line)
	strokeTrack(dc, pts, outlineColor, outlineWidth)
	strokeTrack(dc, pts, req.trackColor(), innerWidth)
	return dc.Image(), nil
}

// RenderHref renders the map and returns it as a PNG data URL.
func (r *Renderer) RenderHref(coords orb.LineString, req Request) (string, error) {
	img, err := r.Render(context.Background(), coords, req)
	if err != nil {
		return "", err
	}
	return encodeDataURL(img)
}

func strokeTrack(dc *gg.Context, pts []orb.Point, c color.Color, width float64) {
	dc.SetColor(c)
	if len(pts) == 1 {
		dc.DrawCircle(pts[0][0], pts[0][1], width/2)
		dc.Fill()
		return
	}
	dc.SetLineWidth(width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		dc.LineTo(p[0], p[1])
	}
	dc.Stroke()
}

func encodeDataURL(img image.Image) (string, error) {
	dc := gg.NewContextForImage(img)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encoding map png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
