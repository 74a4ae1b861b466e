package main

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/buffos/go-trackcard/internal/card"
	"github.com/buffos/go-trackcard/internal/track"
)

// writeGeoJSON stores the track line as a feature carrying the formatted
// card values as properties.
func writeGeoJSON(path string, stats *track.Stats) error {
	f := geojson.NewFeature(stats.Coords)
	for _, id := range card.ValueIDs() {
		if v, ok := card.FormatValue(stats, id); ok {
			f.Properties[id] = v
		}
	}
	f.Properties["distance_m"] = stats.Distance
	f.Properties["uphill_m"] = stats.Uphill

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
