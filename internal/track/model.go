// Package track models a recorded GPS track and reduces it to the ride
// statistics stamped into a card.
package track

import (
	"fmt"
	"time"
)

// Point is one recorded trackpoint. Elevation is only meaningful when HasEle
// is set; a zero Time means the point carries no timestamp.
type Point struct {
	Lat, Lon float64
	Ele      float64
	HasEle   bool
	Time     time.Time
}

// Segment is an ordered run of points without gaps.
type Segment []Point

// Track is a named sequence of segments.
type Track struct {
	Name     string
	Segments []Segment
}

// Document is everything read from one track file. Source is the path the
// data came from and feeds the display-name fallback.
type Document struct {
	Source string
	Tracks []Track
}

// NumPoints counts every point across all tracks and segments.
func (d *Document) NumPoints() int {
	n := 0
	for _, t := range d.Tracks {
		for _, s := range t.Segments {
			n += len(s)
		}
	}
	return n
}

// LoadError reports track data that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading track %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
