package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buffos/go-trackcard/internal/card"
	"github.com/buffos/go-trackcard/internal/config"
	"github.com/buffos/go-trackcard/internal/export"
	"github.com/buffos/go-trackcard/internal/track"
)

// writeRide writes a GPX climbing north for 101 points, one every 10s.
func writeRide(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"><trk><name>Test loop</name><trkseg>`)
	start := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i <= 100; i++ {
		fmt.Fprintf(&b, `<trkpt lat="%.5f" lon="10.0"><ele>%d</ele><time>%s</time></trkpt>`,
			45+float64(i)*0.0005, 100+i, start.Add(time.Duration(i)*10*time.Second).Format(time.RFC3339))
	}
	b.WriteString(`</trkseg></trk></gpx>`)

	path := filepath.Join(dir, "ride.gpx")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func testConfig() *config.Config {
	return &config.Config{
		Template: "story_split",
		Map:      config.MapConfig{MaxPoints: 2000, FallbackWidth: 1000},
		Export:   config.ExportConfig{Timeout: time.Minute, JPEGQuality: 90},
	}
}

func fakeScreenshot(context.Context, string) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func TestResolveOutput(t *testing.T) {
	assert.Equal(t, "ride.png", resolveOutput("tracks/ride.gpx", ""))
	assert.Equal(t, "card.jpg", resolveOutput("tracks/ride.gpx", "card.jpg"))
	assert.Equal(t, "output.png", resolveOutput("", ""))
}

func TestResolveFormat(t *testing.T) {
	f, err := resolveFormat("", "card.jpg")
	require.NoError(t, err)
	assert.Equal(t, export.JPEG, f)

	f, err = resolveFormat("svg", "card.png")
	require.NoError(t, err)
	assert.Equal(t, export.SVG, f)

	f, err = resolveFormat("", "card")
	require.NoError(t, err)
	assert.Equal(t, export.PNG, f)

	_, err = resolveFormat("html", "card.png")
	assert.Error(t, err)
}

func TestLoadTemplate(t *testing.T) {
	tpl, err := loadTemplate("story_split")
	require.NoError(t, err)
	assert.Equal(t, "story_split", tpl.Name)

	path := filepath.Join(t.TempDir(), "mine.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<svg/>`), 0644))
	tpl, err = loadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", tpl.Name)
	assert.Equal(t, `<svg/>`, tpl.Source)

	_, err = loadTemplate(filepath.Join(t.TempDir(), "missing.svg"))
	assert.Error(t, err)
}

func TestRunWritesSVGAndGeoJSON(t *testing.T) {
	dir := t.TempDir()
	gpxPath := writeRide(t, dir)
	out := filepath.Join(dir, "card.svg")
	geo := filepath.Join(dir, "ride.geojson")

	err := run(t.Context(), options{DataFile: gpxPath, OutFile: out, GeoJSON: geo}, testConfig(), nil)
	require.NoError(t, err)

	doc, err := track.LoadGPX(gpxPath)
	require.NoError(t, err)
	stats := track.Analyze(doc)
	distance, _ := card.FormatValue(stats, card.ValueDistance)

	svgBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	svg := string(svgBytes)
	assert.Contains(t, svg, `y="246">Test loop</tspan>`)
	assert.Contains(t, svg, `<tspan id="value_distance">`+distance+`</tspan>`)
	assert.Contains(t, svg, `<tspan id="value_uphill">100m</tspan>`)
	assert.NotContains(t, svg, `d="m 14,490 257.75,-80"`)
	assert.Contains(t, svg, `d="m 14,490 l `)

	geoBytes, err := os.ReadFile(geo)
	require.NoError(t, err)
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string       `json:"type"`
				Coordinates [][2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(geoBytes, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "LineString", fc.Features[0].Geometry.Type)
	assert.Len(t, fc.Features[0].Geometry.Coordinates, 101)
	assert.Equal(t, "Test loop", fc.Features[0].Properties[card.ValueTrackName])
}

func TestRunRasterizes(t *testing.T) {
	dir := t.TempDir()
	gpxPath := writeRide(t, dir)

	err := run(t.Context(), options{DataFile: gpxPath, OutFile: filepath.Join(dir, "card.png")}, testConfig(), fakeScreenshot)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "card.svg"))
	require.NoError(t, err)
	pngBytes, err := os.ReadFile(filepath.Join(dir, "card.png"))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
}

func TestRunFailsOnBadTrack(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.gpx")
	require.NoError(t, os.WriteFile(bad, []byte("<gpx"), 0644))

	err := run(t.Context(), options{DataFile: bad, OutFile: filepath.Join(dir, "x.svg")}, testConfig(), nil)
	var lerr *track.LoadError
	assert.ErrorAs(t, err, &lerr)
}
