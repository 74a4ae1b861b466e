package svg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadPath is returned for a path whose data does not open with a move
// command followed by a second point.
var ErrBadPath = errors.New("svg: path must start with m/M and two points")

// PathDescriptor is read from the first two points of a template path. The
// start point is kept verbatim so a rewritten path stays anchored exactly
// where the designer put it; Length and Height are the extent from the start
// to the second point, in user units.
type PathDescriptor struct {
	Start    string
	Absolute bool
	Length   float64
	Height   float64
}

// Prefix is the move command the descriptor was written with.
func (p PathDescriptor) Prefix() string {
	if p.Absolute {
		return "M"
	}
	return "m"
}

// ParsePathDescriptor reads "m x,y dx,dy ..." or "M x,y x2,y2 ...". The
// command may be glued to the first number and pairs may use whitespace
// instead of a comma. Anything after the second point is ignored.
func ParsePathDescriptor(d string) (PathDescriptor, error) {
	fields := strings.Fields(d)
	if len(fields) == 0 {
		return PathDescriptor{}, ErrBadPath
	}

	var desc PathDescriptor
	switch cmd := fields[0][0]; cmd {
	case 'M':
		desc.Absolute = true
	case 'm':
	default:
		return PathDescriptor{}, fmt.Errorf("%w: got %q", ErrBadPath, fields[0])
	}
	rest := fields[1:]
	if len(fields[0]) > 1 {
		rest = append([]string{fields[0][1:]}, rest...)
	}

	var nums []float64
	start := ""
	for i, tok := range rest {
		parts := strings.Split(tok, ",")
		for _, p := range parts {
			if p == "" {
				continue
			}
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return PathDescriptor{}, fmt.Errorf("%w: %q", ErrBadPath, tok)
			}
			nums = append(nums, v)
		}
		if i == 0 && len(parts) == 2 && len(nums) == 2 {
			start = tok
		}
		if len(nums) >= 4 {
			break
		}
	}
	if len(nums) < 4 {
		return PathDescriptor{}, ErrBadPath
	}

	sx, sy, x2, y2 := nums[0], nums[1], nums[2], nums[3]
	if start == "" {
		start = FormatNumber(sx) + "," + FormatNumber(sy)
	}
	desc.Start = start
	if desc.Absolute {
		desc.Length, desc.Height = x2-sx, y2-sy
	} else {
		desc.Length, desc.Height = x2, y2
	}
	return desc, nil
}

// FormatNumber writes the shortest decimal that reads back as v, without an
// exponent and without a negative zero.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
