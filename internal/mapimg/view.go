package mapimg

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// Web Mercator world width in meters.
	mercatorWorld = 2 * math.Pi * 6378137
	tileSize      = 256

	// fitMargin leaves 10% around the track.
	fitMargin = 1.1
	// maxZoom limits how close the view gets on very short tracks.
	maxZoom = 17
)

// view maps Web Mercator meters to image pixels.
type view struct {
	center     orb.Point // mercator
	resolution float64   // meters per pixel
	width      int
	height     int
}

// zoomResolution is the meters per pixel of a 256 px tile pyramid level.
func zoomResolution(z int) float64 {
	return mercatorWorld / (tileSize * math.Exp2(float64(z)))
}

// fitView centers the line's extent and picks the coarser of the two axis
// resolutions, never finer than maxZoom.
func fitView(ls orb.LineString, width, height int) view {
	merc := project.LineString(ls.Clone(), project.WGS84.ToMercator)
	b := merc.Bound()
	rx := (b.Max[0] - b.Min[0]) / float64(width)
	ry := (b.Max[1] - b.Min[1]) / float64(height)
	res := math.Max(math.Max(rx, ry)*fitMargin, zoomResolution(maxZoom))
	return view{center: b.Center(), resolution: res, width: width, height: height}
}

// pixel converts one mercator point.
func (v view) pixel(m orb.Point) orb.Point {
	return orb.Point{
		(m[0]-v.center[0])/v.resolution + float64(v.width)/2,
		(v.center[1]-m[1])/v.resolution + float64(v.height)/2,
	}
}

// pixels projects a lon/lat line into image coordinates.
func (v view) pixels(ls orb.LineString) []orb.Point {
	out := make([]orb.Point, len(ls))
	for i, p := range ls {
		out[i] = v.pixel(project.Point(p, project.WGS84.ToMercator))
	}
	return out
}

// zoom is the tile level whose resolution is closest to the view's.
func (v view) zoom() int {
	z := int(math.Round(math.Log2(mercatorWorld / (tileSize * v.resolution))))
	return max(0, min(z, maxZoom+1))
}

// topLeft is the mercator point at pixel (0, 0).
func (v view) topLeft() orb.Point {
	return orb.Point{
		v.center[0] - float64(v.width)/2*v.resolution,
		v.center[1] + float64(v.height)/2*v.resolution,
	}
}
