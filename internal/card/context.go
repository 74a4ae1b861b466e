// Package card binds computed ride statistics to template placeholders.
package card

import (
	"sync"

	"github.com/paulmach/orb"

	"github.com/buffos/go-trackcard/internal/log"
	"github.com/buffos/go-trackcard/internal/mapimg"
	"github.com/buffos/go-trackcard/internal/svg"
	"github.com/buffos/go-trackcard/internal/template"
	"github.com/buffos/go-trackcard/internal/track"
)

// MapRenderer turns track coordinates into an image href.
type MapRenderer interface {
	RenderHref(coords orb.LineString, req mapimg.Request) (string, error)
}

// Context answers template lookups for one loaded track. It is safe for
// concurrent use; the only mutable state is the memoized map.
type Context struct {
	stats *track.Stats
	maps  MapRenderer

	mu      sync.Mutex
	mapReq  mapimg.Request
	mapHref string
	hasMap  bool
}

var (
	_ template.Values        = (*Context)(nil)
	_ template.AssetProvider = (*Context)(nil)
)

// NewContext wraps stats. maps may be nil, in which case image_map stays
// unresolved.
func NewContext(stats *track.Stats, maps MapRenderer) *Context {
	return &Context{stats: stats, maps: maps}
}

// Stats returns the statistics the context was built from.
func (c *Context) Stats() *track.Stats { return c.stats }

// String implements template.Values.
func (c *Context) String(id string) (string, bool) {
	if c.stats == nil {
		return "", false
	}
	return FormatValue(c.stats, id)
}

// Path implements template.Values.
func (c *Context) Path(id string, desc svg.PathDescriptor) (string, bool) {
	if c.stats == nil || id != template.ElevationPathID {
		return "", false
	}
	return ElevationPath(c.stats, desc)
}

// Image implements template.AssetProvider. Only the map image is known;
// it is rendered again only when size or track color change.
func (c *Context) Image(req template.ImageRequest) (string, bool) {
	if c.stats == nil || c.maps == nil || req.ID != template.MapImageID {
		return "", false
	}
	mr := mapimg.Request{Width: req.Width, Height: req.Height, Color: req.Color, HasColor: req.HasColor}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasMap && c.mapReq == mr {
		return c.mapHref, true
	}

	href, err := c.maps.RenderHref(c.stats.Coords, mr)
	if err != nil {
		log.Warnf("map image %dx%d unavailable: %v", mr.Width, mr.Height, err)
		return "", false
	}
	c.mapReq, c.mapHref, c.hasMap = mr, href, true
	return href, true
}

// Reset drops the memoized map.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mapReq, c.mapHref, c.hasMap = mapimg.Request{}, "", false
}
