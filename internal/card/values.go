package card

import (
	"fmt"

	"github.com/buffos/go-trackcard/internal/geodesy"
	"github.com/buffos/go-trackcard/internal/track"
)

// Value identifiers understood by FormatValue.
const (
	ValueTrackName    = "value_track_name"
	ValueDistance     = "value_distance"
	ValueSpeed        = "value_speed"
	ValueSpeedMax     = "value_speed_max"
	ValueSpeedMoving  = "value_speed_moving"
	ValueUphill       = "value_uphill"
	ValueDownhill     = "value_downhill"
	ValueElevationMax = "value_elevation_max"
	ValueElevationMin = "value_elevation_min"
	ValueTime         = "value_time"
	ValueMovingTime   = "value_moving_time"
)

func kmh(v float64) string    { return fmt.Sprintf("%.1fkm/h", v) }
func meters(v float64) string { return fmt.Sprintf("%.0fm", v) }

var formatters = map[string]func(*track.Stats) string{
	ValueTrackName:    func(s *track.Stats) string { return s.Name },
	ValueDistance:     func(s *track.Stats) string { return fmt.Sprintf("%.0fkm", s.Distance/1000) },
	ValueSpeed:        func(s *track.Stats) string { return kmh(s.SpeedAvg) },
	ValueSpeedMax:     func(s *track.Stats) string { return kmh(s.SpeedMax) },
	ValueSpeedMoving:  func(s *track.Stats) string { return kmh(s.SpeedAvgMoving) },
	ValueUphill:       func(s *track.Stats) string { return meters(s.Uphill) },
	ValueDownhill:     func(s *track.Stats) string { return meters(s.Downhill) },
	ValueElevationMax: func(s *track.Stats) string { return meters(s.ElevationMax) },
	ValueElevationMin: func(s *track.Stats) string { return meters(s.ElevationMin) },
	ValueTime:         func(s *track.Stats) string { return geodesy.HHMMSS(s.Time) },
	ValueMovingTime:   func(s *track.Stats) string { return geodesy.HHMMSS(s.MovingTime) },
}

// FormatValue renders one value_ identifier. ok is false for identifiers
// outside the table.
func FormatValue(s *track.Stats, id string) (string, bool) {
	f, ok := formatters[id]
	if !ok {
		return "", false
	}
	return f(s), true
}

// ValueIDs lists every identifier FormatValue knows, in table order.
func ValueIDs() []string {
	return []string{
		ValueTrackName, ValueDistance, ValueSpeed, ValueSpeedMax, ValueSpeedMoving,
		ValueUphill, ValueDownhill, ValueElevationMax, ValueElevationMin,
		ValueTime, ValueMovingTime,
	}
}
