// Package export rasterizes a finished card with headless Chrome.
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/buffos/go-trackcard/internal/log"
)

// Format is an output file format.
type Format string

const (
	SVG  Format = "svg"
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// ParseFormat accepts svg, png, jpg and jpeg in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "svg":
		return SVG, nil
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return "", fmt.Errorf("unsupported export format '%s'. Supported formats: svg, png, jpg/jpeg", s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Options controls rasterization.
type Options struct {
	Timeout     time.Duration // 0 means no deadline
	JPEGQuality int           // 0 means 90
}

// Screenshotter returns a PNG of the first svg element of the page at url.
type Screenshotter func(ctx context.Context, url string) ([]byte, error)

// Chrome is the headless Chrome screenshotter.
func Chrome(ctx context.Context, url string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	var screenshotBuf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &screenshotBuf, chromedp.ByQuery),
	}

	log.Debugf("Running chromedp tasks (navigate and screenshot)...")
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}
	return screenshotBuf, nil
}

// Exporter writes cards in any Format.
type Exporter struct {
	Options
	// Shoot takes the screenshot; nil means Chrome.
	Shoot Screenshotter
}

// Rasterize renders svg and writes it to w as format. SVG is written as is.
func (e *Exporter) Rasterize(ctx context.Context, svg string, format Format, w io.Writer) error {
	if format == SVG {
		_, err := io.WriteString(w, svg)
		return err
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	shoot := e.Shoot
	if shoot == nil {
		shoot = Chrome
	}
	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
	screenshot, err := shoot(ctx, dataURI)
	if err != nil {
		return err
	}
	if len(screenshot) == 0 {
		return fmt.Errorf("screenshot buffer is empty, screenshot failed")
	}
	return encode(screenshot, format, w, e.JPEGQuality)
}

// encode writes a PNG screenshot as format.
func encode(screenshot []byte, format Format, w io.Writer, quality int) error {
	switch format {
	case PNG:
		if _, err := w.Write(screenshot); err != nil {
			return fmt.Errorf("failed to write PNG screenshot data: %w", err)
		}
	case JPEG:
		img, err := png.Decode(bytes.NewReader(screenshot))
		if err != nil {
			return fmt.Errorf("failed to decode PNG screenshot: %w", err)
		}
		if quality <= 0 {
			quality = 90
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported image format '%s'", format)
	}
	return nil
}

// WriteFiles stores svg next to outfile as <base>.svg and, unless format is
// SVG, renders outfile itself. It returns the paths written.
func (e *Exporter) WriteFiles(ctx context.Context, svg, outfile string, format Format) ([]string, error) {
	base := strings.TrimSuffix(outfile, filepath.Ext(outfile))
	svgPath := base + ".svg"
	if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", svgPath, err)
	}
	written := []string{svgPath}
	if format == SVG {
		return written, nil
	}

	outPath := outfile
	if filepath.Ext(outfile) == "" {
		outPath = base + "." + string(format)
	}
	var buf bytes.Buffer
	if err := e.Rasterize(ctx, svg, format, &buf); err != nil {
		return written, err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return written, fmt.Errorf("writing %s: %w", outPath, err)
	}
	log.Infof("Successfully encoded %s image.", strings.ToUpper(string(format)))
	return append(written, outPath), nil
}
