package track

import (
	"os"

	"github.com/tkrajina/gpxgo/gpx"
)

// LoadGPX reads and converts a GPX file. Any read or parse failure comes back
// as a *LoadError.
func LoadGPX(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return ParseGPX(data, path)
}

// ParseGPX converts GPX bytes. source is recorded on the document for name
// resolution and error messages.
func ParseGPX(data []byte, source string) (*Document, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, &LoadError{Path: source, Err: err}
	}
	return fromGPX(g, source), nil
}

func fromGPX(g *gpx.GPX, source string) *Document {
	doc := &Document{Source: source, Tracks: make([]Track, 0, len(g.Tracks))}
	for _, gt := range g.Tracks {
		t := Track{Name: gt.Name, Segments: make([]Segment, 0, len(gt.Segments))}
		for _, gs := range gt.Segments {
			seg := make(Segment, 0, len(gs.Points))
			for _, p := range gs.Points {
				pt := Point{Lat: p.Latitude, Lon: p.Longitude, Time: p.Timestamp}
				if p.Elevation.NotNull() {
					pt.Ele = p.Elevation.Value()
					pt.HasEle = true
				}
				seg = append(seg, pt)
			}
			t.Segments = append(t.Segments, seg)
		}
		doc.Tracks = append(doc.Tracks, t)
	}
	return doc
}
