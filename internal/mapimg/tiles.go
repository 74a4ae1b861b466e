package mapimg

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"

	"github.com/buffos/go-trackcard/internal/log"
)

// OSMTileURL is the standard OpenStreetMap tile server.
const OSMTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// DefaultUserAgent identifies tile requests.
const DefaultUserAgent = "go-trackcard/0.1"

// Tiles fetches raster basemap tiles, keeping them in memory and, when
// CacheDir is set, on disk as <CacheDir>/<z>/<x>/<y>.png.
type Tiles struct {
	URL       string // template with {z}, {x} and {y}
	CacheDir  string
	UserAgent string
	Client    *http.Client

	cache sync.Map // path -> image.Image
}

// NewTiles returns a tile source with a 30 second HTTP timeout.
func NewTiles(url, cacheDir, userAgent string) *Tiles {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Tiles{
		URL:       url,
		CacheDir:  cacheDir,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Tile returns tile x/y at zoom z, from cache when possible.
func (t *Tiles) Tile(ctx context.Context, z, x, y int) (image.Image, error) {
	key := filepath.Join(strconv.Itoa(z), strconv.Itoa(x), strconv.Itoa(y)+".png")
	if img, ok := t.cache.Load(key); ok {
		return img.(image.Image), nil
	}

	if t.CacheDir != "" {
		if img, err := readTile(filepath.Join(t.CacheDir, key)); err == nil {
			t.cache.Store(key, img)
			return img, nil
		}
	}

	img, err := t.download(ctx, z, x, y)
	if err != nil {
		return nil, err
	}
	if t.CacheDir != "" {
		if err := writeTile(filepath.Join(t.CacheDir, key), img); err != nil {
			log.Warnf("map: caching tile %s: %v", key, err)
		}
	}
	t.cache.Store(key, img)
	return img, nil
}

func (t *Tiles) download(ctx context.Context, z, x, y int) (image.Image, error) {
	url := strings.Replace(t.URL, "{z}", strconv.Itoa(z), 1)
	url = strings.Replace(url, "{x}", strconv.Itoa(x), 1)
	url = strings.Replace(url, "{y}", strconv.Itoa(y), 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", t.UserAgent)

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download tile %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download tile %s: status %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding tile %s: %w", url, err)
	}
	return img, nil
}

func readTile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func writeTile(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// draw paints every tile covering the view. Tiles that fail to load are
// skipped so the track still renders.
func (t *Tiles) draw(ctx context.Context, dc *gg.Context, v view) {
	z := v.zoom()
	n := 1 << z
	span := mercatorWorld / float64(n) // meters per tile
	scale := span / v.resolution / tileSize

	tl := v.topLeft()
	x0 := int(math.Floor((tl[0] + mercatorWorld/2) / span))
	y0 := int(math.Floor((mercatorWorld/2 - tl[1]) / span))
	x1 := int(math.Floor((tl[0] + float64(v.width)*v.resolution + mercatorWorld/2) / span))
	y1 := int(math.Floor((mercatorWorld/2 - tl[1] + float64(v.height)*v.resolution) / span))

	for ty := max(y0, 0); ty <= min(y1, n-1); ty++ {
		for tx := x0; tx <= x1; tx++ {
			img, err := t.Tile(ctx, z, ((tx%n)+n)%n, ty)
			if err != nil {
				log.Warnf("map: %v", err)
				continue
			}
			origin := v.pixel(tileOrigin(tx, ty, span))
			dc.Push()
			dc.Translate(origin[0], origin[1])
			dc.Scale(scale, scale)
			dc.DrawImage(img, 0, 0)
			dc.Pop()
		}
	}
}

// tileOrigin is the mercator position of a tile's top-left corner.
func tileOrigin(tx, ty int, span float64) orb.Point {
	return orb.Point{float64(tx)*span - mercatorWorld/2, mercatorWorld/2 - float64(ty)*span}
}
