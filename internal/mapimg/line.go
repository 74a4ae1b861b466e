package mapimg

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// Douglas-Peucker tolerances tried in order, in degrees (roughly 1 to 20 m).
var simplifyEpsilons = []float64{0, 0.00001, 0.00003, 0.00005, 0.0001, 0.0002}

// dedupe drops points equal to their predecessor.
func dedupe(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, len(ls))
	for _, p := range ls {
		if len(out) > 0 && out[len(out)-1].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// simplifyLine raises the tolerance until the line has at most maxPoints
// points. A candidate with fewer than two points is never taken.
func simplifyLine(ls orb.LineString, maxPoints int) orb.LineString {
	best := ls
	for _, eps := range simplifyEpsilons {
		candidate := simplify.DouglasPeucker(eps).LineString(ls.Clone())
		if len(candidate) >= 2 {
			best = candidate
		}
		if len(best) <= maxPoints {
			break
		}
	}
	return best
}
