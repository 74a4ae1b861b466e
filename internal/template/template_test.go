package template

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buffos/go-trackcard/internal/svg"
)

const testHref = "data:image/png;base64,TEST"

// fakeValues answers from a fixed table and redraws every path as a single
// relative line spanning the descriptor.
type fakeValues map[string]string

func (f fakeValues) String(id string) (string, bool) {
	v, ok := f[id]
	return v, ok
}

func (f fakeValues) Path(id string, desc svg.PathDescriptor) (string, bool) {
	if id != ElevationPathID {
		return "", false
	}
	return desc.Prefix() + " " + desc.Start + " l " + svg.FormatNumber(desc.Length) + " " + svg.FormatNumber(desc.Height), true
}

type noValues struct{}

func (noValues) String(string) (string, bool) { return "", false }
func (noValues) Path(string, svg.PathDescriptor) (string, bool) { return "", false }

var testValues = fakeValues{
	"value_distance":   "22km",
	"value_time":       "01:02:03",
	"value_track_name": "Col & Pass",
}

// recordingAssets hands out testHref and remembers what it was asked for.
type recordingAssets struct {
	requests []ImageRequest
}

func (r *recordingAssets) Image(req ImageRequest) (string, bool) {
	r.requests = append(r.requests, req)
	if req.ID != MapImageID {
		return "", false
	}
	return testHref, true
}

// TestApplyGolden stamps every testdata/*.svg that has an .expected.svg
// sibling and compares the bytes.
func TestApplyGolden(t *testing.T) {
	testDataDir := "testdata"

	inputs, err := filepath.Glob(filepath.Join(testDataDir, "*.svg"))
	if err != nil {
		t.Fatalf("Error finding template files: %v", err)
	}

	found := 0
	for _, input := range inputs {
		if strings.HasSuffix(input, ".expected.svg") || strings.HasSuffix(input, ".failed.svg") {
			continue
		}
		found++
		baseName := strings.TrimSuffix(filepath.Base(input), ".svg")
		t.Run(baseName, func(t *testing.T) {
			expectedFile := filepath.Join(testDataDir, baseName+".expected.svg")

			src, err := os.ReadFile(input)
			if err != nil {
				t.Fatalf("Error reading template %s: %v", input, err)
			}

			got, err := New(baseName, string(src)).Apply(testValues, &recordingAssets{})
			if err != nil {
				t.Fatalf("Error applying template %s: %v", baseName, err)
			}

			expectedBytes, err := os.ReadFile(expectedFile)
			if err != nil {
				if os.IsNotExist(err) {
					t.Logf("Expected file %s not found. Creating it.", expectedFile)
					if writeErr := os.WriteFile(expectedFile, []byte(got), 0644); writeErr != nil {
						t.Errorf("Failed to write new expected SVG %s: %v", expectedFile, writeErr)
					}
					return
				}
				t.Fatalf("Error reading expected file %s: %v", expectedFile, err)
			}

			normalizedGot := strings.ReplaceAll(got, "\r\n", "\n")
			normalizedExpected := strings.ReplaceAll(string(expectedBytes), "\r\n", "\n")
			if normalizedGot != normalizedExpected {
				diff := findFirstDifference(normalizedExpected, normalizedGot)
				t.Errorf("Output for %s does not match %s.\nFirst difference near character %d:\nEXPECTED:\n...%s...\nGOT:\n...%s...",
					baseName, expectedFile, diff.Index, diff.ExpectedContext, diff.GotContext)
				failedFile := filepath.Join(testDataDir, baseName+".failed.svg")
				os.WriteFile(failedFile, []byte(got), 0644)
				t.Logf("Wrote differing output to %s", failedFile)
			}
		})
	}
	if found == 0 {
		t.Fatalf("No templates found in %s", testDataDir)
	}
}

func TestApplyWithoutResolversIsIdentity(t *testing.T) {
	for _, name := range []string{"basic.svg", "inkscape.svg"} {
		src, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)

		got, err := Substitute(string(src), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, string(src), got, name)

		got, err = Substitute(string(src), noValues{}, AssetFunc(func(ImageRequest) (string, bool) { return "", false }))
		require.NoError(t, err)
		assert.Equal(t, string(src), got, name)
	}
}

func TestDistanceText(t *testing.T) {
	src := `<svg><text><tspan id="value_distance">0km</tspan></text></svg>`
	got, err := Substitute(src, testValues, nil)
	require.NoError(t, err)
	assert.Equal(t, `<svg><text><tspan id="value_distance">22km</tspan></text></svg>`, got)
}

func TestPendingText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "empty element does not take a later text",
			src:  `<svg><text id="value_distance"></text><text>other</text></svg>`,
			want: `<svg><text id="value_distance"></text><text>other</text></svg>`,
		},
		{
			name: "self closing element does not take a later text",
			src:  `<svg><tspan id="value_distance"/><text>keep</text></svg>`,
			want: `<svg><tspan id="value_distance"/><text>keep</text></svg>`,
		},
		{
			name: "whitespace is skipped",
			src:  `<svg><text id="value_distance">  <tspan>00</tspan> </text></svg>`,
			want: `<svg><text id="value_distance">  <tspan>22km</tspan> </text></svg>`,
		},
		{
			name: "inner value wins",
			src:  `<svg><text id="value_distance"><tspan id="value_time">x</tspan></text></svg>`,
			want: `<svg><text id="value_distance"><tspan id="value_time">01:02:03</tspan></text></svg>`,
		},
		{
			name: "unknown inner id clears the outer value",
			src:  `<svg><text id="value_distance"><tspan id="value_unknown">x</tspan></text></svg>`,
			want: `<svg><text id="value_distance"><tspan id="value_unknown">x</tspan></text></svg>`,
		},
		{
			name: "only the first text is replaced",
			src:  `<svg><text id="value_time">a<tspan>b</tspan></text></svg>`,
			want: `<svg><text id="value_time">01:02:03<tspan>b</tspan></text></svg>`,
		},
		{
			name: "text after a CDATA section belongs to the replaced run",
			src:  `<svg><text id="value_distance"><![CDATA[a]]>b</text></svg>`,
			want: `<svg><text id="value_distance">22km</text></svg>`,
		},
		{
			name: "a comment ends the replaced run",
			src:  `<svg><text id="value_distance">a<!-- c -->b</text></svg>`,
			want: `<svg><text id="value_distance">22km<!-- c -->b</text></svg>`,
		},
		{
			name: "value ids on other elements are ignored",
			src:  `<svg><g id="value_distance">x</g></svg>`,
			want: `<svg><g id="value_distance">x</g></svg>`,
		},
		{
			name: "replacement is escaped",
			src:  `<svg><text id="value_track_name">n</text></svg>`,
			want: `<svg><text id="value_track_name">Col &amp; Pass</text></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute(tt.src, testValues, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMultilineTspan(t *testing.T) {
	src := `<text
       xml:space="preserve"
       x="153.52859"
       id="text_distance"><tspan
         sodipodi:role="line"
         id="value_distance"
         style="stroke-width:0.264583">132</tspan></text>`
	want := strings.Replace(src, ">132<", ">22km<", 1)
	got, err := Substitute(src, testValues, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFragmentsWithUnknownIDs(t *testing.T) {
	src := `<tspan>TEST</tspan><tspan id="test">TEST</tspan>`
	got, err := Substitute(src, testValues, nil)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestPathLeftAloneWhenDataIsBad(t *testing.T) {
	src := `<svg><path id="path_elevation" d="L 1,2 3,4"/><path id="path_elevation" d="m 1,2"/></svg>`
	got, err := Substitute(src, testValues, nil)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestImageRequestSizing(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "inkscape.svg"))
	require.NoError(t, err)

	req, ok := New("inkscape", string(src)).MapImageRequest()
	require.True(t, ok)
	assert.Equal(t, MapImageID, req.ID)
	assert.Equal(t, 600, req.Width)
	assert.Equal(t, 720, req.Height)
	require.True(t, req.HasColor)
	assert.Equal(t, svg.Color{R: 0x2d, G: 0xb1, B: 0x92, A: 0xff}, req.Color)

	assets := &recordingAssets{}
	_, err = New("inkscape", string(src)).Apply(testValues, assets)
	require.NoError(t, err)
	require.Len(t, assets.requests, 1)
	assert.Equal(t, req, assets.requests[0])
}

func TestTrackColorFromStyle(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "basic.svg"))
	require.NoError(t, err)

	c, ok := New("basic", string(src)).TrackColor()
	require.True(t, ok)
	assert.Equal(t, "#FF2D55", c.Hex())
}

func TestImageFallbackSizeAndHref(t *testing.T) {
	src := `<svg><image id="image_map" width="10" height="5" href="a.png"/><image id="image_logo" width="1" height="1" href="b.png"/></svg>`
	assets := &recordingAssets{}
	got, err := Substitute(src, nil, assets)
	require.NoError(t, err)
	assert.Equal(t, `<svg><image id="image_map" width="10" height="5" href="`+testHref+`"/><image id="image_logo" width="1" height="1" href="b.png"/></svg>`, got)

	require.Len(t, assets.requests, 2)
	assert.Equal(t, ImageRequest{ID: MapImageID, Width: 1000, Height: 500}, assets.requests[0])
	assert.Equal(t, ImageRequest{ID: "image_logo", Width: 1000, Height: 1000}, assets.requests[1])
}

func TestImageWithoutSizeIsUntouched(t *testing.T) {
	src := `<svg><image id="image_map" href="a.png"/></svg>`
	assets := &recordingAssets{}
	got, err := Substitute(src, nil, assets)
	require.NoError(t, err)
	assert.Equal(t, src, got)
	assert.Empty(t, assets.requests)

	_, ok := New("", src).MapImageRequest()
	assert.False(t, ok)
}

func TestParseError(t *testing.T) {
	_, err := Substitute(`<svg><g></svg>`, testValues, nil)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Positive(t, perr.Offset)
	assert.Contains(t, err.Error(), "template parse error")
}

func TestDoctypeEntities(t *testing.T) {
	src := `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd" [
	<!ENTITY ns_svg "http://www.w3.org/2000/svg">
	<!ENTITY ns_xlink 'http://www.w3.org/1999/xlink'>
	<!ENTITY brand "Trackcard">
]>
<svg xmlns="&ns_svg;" xmlns:xlink="&ns_xlink;" width="1080" height="1080" viewBox="0 0 285.75 285.75">
<text id="title">&brand;</text>
<text id="value_distance">x</text>
<image id="image_map" width="158.75" height="190.5" xlink:href="old.png"/>
</svg>`
	want := strings.Replace(src, `>x<`, `>22km<`, 1)
	want = strings.Replace(want, `xlink:href="old.png"`, `xlink:href="`+testHref+`"`, 1)

	assets := &recordingAssets{}
	got, err := Substitute(src, testValues, assets)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	req, ok := New("illustrator", src).MapImageRequest()
	require.True(t, ok)
	assert.Equal(t, 600, req.Width)
	assert.Equal(t, 720, req.Height)
}

func TestUndeclaredEntityIsParseError(t *testing.T) {
	_, err := Substitute(`<svg xmlns="&ns_svg;"></svg>`, testValues, nil)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
}

func TestZeroSizedRootUsesFallbackSize(t *testing.T) {
	src := `<svg width="0" height="0"><image id="image_map" width="10" height="10"/></svg>`
	req, ok := New("zero", src).MapImageRequest()
	require.True(t, ok)
	assert.Equal(t, DefaultFallbackWidth, req.Width)
	assert.Equal(t, DefaultFallbackWidth, req.Height)
}

// diffResult helps show context around the first difference.
type diffResult struct {
	Index           int
	ExpectedContext string
	GotContext      string
}

// findFirstDifference finds the first differing byte and provides context.
func findFirstDifference(s1, s2 string) diffResult {
	limit := min(len(s1), len(s2))
	idx := -1
	for i := 0; i < limit; i++ {
		if s1[i] != s2[i] {
			idx = i
			break
		}
	}
	if idx == -1 && len(s1) != len(s2) {
		idx = limit
	}
	if idx == -1 {
		return diffResult{Index: 0, ExpectedContext: "(Strings are identical)", GotContext: "(Strings are identical)"}
	}

	contextSize := 20
	start := max(idx-contextSize, 0)
	return diffResult{
		Index:           idx,
		ExpectedContext: s1[start:min(idx+contextSize, len(s1))],
		GotContext:      s2[start:min(idx+contextSize, len(s2))],
	}
}
