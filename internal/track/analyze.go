package track

import (
	"iter"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/buffos/go-trackcard/internal/geodesy"
)

const (
	// Stride selects every Stride-th point of a segment for the time, speed
	// and elevation statistics. It keeps GPS jitter out of instantaneous
	// speeds and elevation deltas.
	Stride = 10

	// MovingSpeedKmh is the speed above which a pair counts as moving.
	MovingSpeedKmh = 0.5
)

// ElevPoint is one sample of the elevation profile: the cumulative decimated
// distance reached and the elevation at the start of that pair.
type ElevPoint struct {
	Distance  float64 // meters
	Elevation float64 // meters
}

// Stats is the computed summary of a document. Build it with Analyze and
// treat it as read-only afterwards.
type Stats struct {
	Name string

	Distance   float64 // meters, full resolution
	Time       time.Duration
	MovingTime time.Duration

	SpeedAvg       float64 // km/h
	SpeedAvgMoving float64 // km/h
	SpeedMax       float64 // km/h

	Uphill       float64 // meters
	Downhill     float64 // meters
	ElevationMin float64 // meters
	ElevationMax float64 // meters

	Profile []ElevPoint
	Coords  orb.LineString // every raw point, lon/lat
}

// HasElevation reports whether any decimated pair carried elevation.
func (s *Stats) HasElevation() bool { return len(s.Profile) > 0 }

// Analyze reduces a document to its Stats. An empty document gives zero
// values, an empty profile and no coordinates.
func Analyze(doc *Document) *Stats {
	st := &Stats{Name: ResolveName(doc), Coords: orb.LineString{}}
	var fold pairFold

	for _, t := range doc.Tracks {
		for _, seg := range t.Segments {
			line := make(orb.LineString, 0, len(seg))
			for _, p := range seg {
				line = append(line, orb.Point{p.Lon, p.Lat})
			}
			st.Distance += geodesy.LineLength(line)
			st.Coords = append(st.Coords, line...)

			for a, b := range decimatedPairs(seg, Stride) {
				fold.add(a, b)
			}
		}
	}

	st.Time = fold.total
	st.MovingTime = fold.moving
	st.SpeedAvg = averageKmh(st.Distance, fold.total)
	st.SpeedAvgMoving = averageKmh(st.Distance, fold.moving)
	st.SpeedMax = fold.speedMax
	st.Uphill = fold.uphill
	st.Downhill = fold.downhill
	st.ElevationMin = fold.elevMin
	st.ElevationMax = fold.elevMax
	st.Profile = fold.profile
	if st.Profile == nil {
		st.Profile = []ElevPoint{}
	}
	return st
}

// decimatedPairs yields (seg[i*stride], seg[(i+1)*stride]) for every i where
// both indices exist.
func decimatedPairs(seg Segment, stride int) iter.Seq2[Point, Point] {
	return func(yield func(Point, Point) bool) {
		for i := stride; i < len(seg); i += stride {
			if !yield(seg[i-stride], seg[i]) {
				return
			}
		}
	}
}

// pairFold accumulates the decimated-pair statistics of a whole document.
type pairFold struct {
	distance float64 // running sum of decimated pair distances

	total, moving time.Duration
	speedMax      float64

	uphill, downhill float64
	elevMin, elevMax float64
	profile          []ElevPoint
}

func (f *pairFold) add(a, b Point) {
	d := geodesy.Distance(a.Lat, a.Lon, b.Lat, b.Lon)
	f.distance += d

	if elapsed, ok := geodesy.Elapsed(a.Time, b.Time); ok && elapsed > 0 {
		f.total += elapsed
		speed := math.Round(d) / elapsed.Seconds() * 3.6
		if speed > MovingSpeedKmh {
			f.moving += elapsed
		}
		if speed > f.speedMax {
			f.speedMax = speed
		}
	}

	if a.HasEle && b.HasEle {
		delta := b.Ele - a.Ele
		if delta > 0 {
			f.uphill += delta
		} else {
			f.downhill -= delta
		}
		// extremes follow the first point of each pair only
		if len(f.profile) == 0 {
			f.elevMin, f.elevMax = a.Ele, a.Ele
		} else {
			f.elevMin = math.Min(f.elevMin, a.Ele)
			f.elevMax = math.Max(f.elevMax, a.Ele)
		}
		f.profile = append(f.profile, ElevPoint{Distance: f.distance, Elevation: a.Ele})
	}
}

func averageKmh(distance float64, d time.Duration) float64 {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return 0
	}
	return math.Round(distance) / float64(secs) * 3.6
}
