package svg

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an sRGB color with alpha, as written in hex in SVG attributes.
type Color struct {
	R, G, B, A uint8
}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA" (any case).
func ParseHex(s string) (Color, bool) {
	if !strings.HasPrefix(s, "#") {
		return Color{}, false
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// Hex formats the color as "#RRGGBB", or "#RRGGBBAA" when not opaque.
func (c Color) Hex() string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c Color) String() string { return c.Hex() }

// HexToken takes the hex color at the start of s: a '#' followed by a run of
// exactly 6 or 8 hex digits. Whatever follows the run is ignored.
func HexToken(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return "", false
	}
	n := 0
	for n+1 < len(s) && isHexDigit(s[n+1]) {
		n++
	}
	if n != 6 && n != 8 {
		return "", false
	}
	return s[:n+1], true
}

// StyleProperty returns the value of one declaration of an inline style
// attribute ("fill:none;stroke:#2db192").
func StyleProperty(style, name string) (string, bool) {
	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// StrokeColor extracts a hex stroke color from an element's stroke
// attribute, falling back to a stroke declaration in its style attribute.
func StrokeColor(stroke, style string) (Color, bool) {
	if tok, ok := HexToken(stroke); ok {
		if c, ok := ParseHex(tok); ok {
			return c, true
		}
	}
	if v, ok := StyleProperty(style, "stroke"); ok {
		if tok, ok := HexToken(v); ok {
			return ParseHex(tok)
		}
	}
	return Color{}, false
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
