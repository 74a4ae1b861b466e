// Package geodesy holds the small geometry and time helpers the track analyzer
// is built on. Everything here is a pure function.
package geodesy

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// WGS84 ellipsoid
const (
	semiMajor  = 6378137.0
	flattening = 1 / 298.257223563
	semiMinor  = semiMajor * (1 - flattening)

	maxIterations = 200
	convergence   = 1e-12
)

// Distance returns the geodesic distance in meters between two WGS84 points
// given in degrees. It solves Vincenty's inverse problem on the ellipsoid and
// falls back to the spherical haversine distance for the nearly antipodal
// pairs where the iteration does not converge.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	if d, ok := vincenty(lat1, lon1, lat2, lon2); ok {
		return d
	}
	return geo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// PointDistance is Distance for orb points (lon, lat order).
func PointDistance(a, b orb.Point) float64 {
	return Distance(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// LineLength sums the geodesic length of every leg of the line.
func LineLength(ls orb.LineString) float64 {
	total := 0.0
	for i := 1; i < len(ls); i++ {
		total += PointDistance(ls[i-1], ls[i])
	}
	return total
}

func vincenty(lat1, lon1, lat2, lon2 float64) (float64, bool) {
	l := toRad(lon2 - lon1)
	u1 := math.Atan((1 - flattening) * math.Tan(toRad(lat1)))
	u2 := math.Atan((1 - flattening) * math.Tan(toRad(lat2)))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, cos2Alpha, cos2SigmaM float64

	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		a := cosU2 * sinLambda
		b := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(a*a + b*b)
		if sinSigma == 0 {
			// coincident points
			return 0, true
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha
		if cos2Alpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		} else {
			// both points on the equator
			cos2SigmaM = 0
		}
		c := flattening / 16 * cos2Alpha * (4 + flattening*(4-3*cos2Alpha))
		prev := lambda
		lambda = l + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < convergence {
			uSq := cos2Alpha * (semiMajor*semiMajor - semiMinor*semiMinor) / (semiMinor * semiMinor)
			bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
				bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
			return semiMinor * bigA * (sigma - deltaSigma), true
		}
	}
	return 0, false
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// --- Time Helpers ---

// Elapsed returns the whole seconds between t1 and t2, truncated toward zero.
// ok is false when either timestamp is missing (zero).
func Elapsed(t1, t2 time.Time) (d time.Duration, ok bool) {
	if t1.IsZero() || t2.IsZero() {
		return 0, false
	}
	return t2.Sub(t1).Truncate(time.Second), true
}

// HHMMSS formats a duration as zero padded hours, minutes and seconds.
// Hours are not wrapped at 24.
func HHMMSS(d time.Duration) string {
	total := int64(d / time.Second)
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := total / 3600
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
