package card

import (
	"math"
	"strings"

	"github.com/buffos/go-trackcard/internal/svg"
	"github.com/buffos/go-trackcard/internal/track"
)

// MinElevationSpan is the smallest elevation range mapped onto the path
// height, so flat rides are not stretched into mountains.
const MinElevationSpan = 100.0

// ElevationPath draws the profile into the box described by desc, starting
// at its start point. Each sample becomes one relative line; a final
// vertical line returns to the baseline so the shape can be filled. ok is
// false when there is nothing to draw.
func ElevationPath(s *track.Stats, desc svg.PathDescriptor) (string, bool) {
	if len(s.Profile) == 0 || s.Distance <= 0 {
		return "", false
	}

	span := math.Max(s.ElevationMax-s.ElevationMin, MinElevationSpan)
	fx := desc.Length / s.Distance
	fy := desc.Height / span

	var b strings.Builder
	b.WriteString(desc.Prefix())
	b.WriteByte(' ')
	b.WriteString(desc.Start)

	var px, py float64
	for _, p := range s.Profile {
		x := p.Distance * fx
		y := (p.Elevation - s.ElevationMin) * fy
		b.WriteString(" l ")
		b.WriteString(svg.FormatNumber(x - px))
		b.WriteByte(' ')
		b.WriteString(svg.FormatNumber(y - py))
		px, py = x, y
	}
	b.WriteString(" l 0 ")
	b.WriteString(svg.FormatNumber(-py))
	return b.String(), true
}
