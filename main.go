// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/buffos/go-trackcard/internal/card"
	"github.com/buffos/go-trackcard/internal/config"
	"github.com/buffos/go-trackcard/internal/export"
	"github.com/buffos/go-trackcard/internal/log"
	"github.com/buffos/go-trackcard/internal/mapimg"
	"github.com/buffos/go-trackcard/internal/template"
	"github.com/buffos/go-trackcard/internal/track"
	"github.com/buffos/go-trackcard/templates"
)

// options are the command line flags; empty values defer to the config.
type options struct {
	Template      string
	DataFile      string
	OutFile       string
	Format        string
	ConfigFile    string
	GeoJSON       string
	ListTemplates bool
	Debug         bool
}

func main() { // NOSONAR
	var opts options
	flag.StringVar(&opts.Template, "t", "", "Template name (embedded) or path to SVG file (default: story_split)")
	flag.StringVar(&opts.DataFile, "d", "", "Path to GPX data file")
	flag.StringVar(&opts.OutFile, "o", "", "Output file (default: data file name with .png)")
	flag.StringVar(&opts.Format, "f", "", "Output format (svg, png, jpg/jpeg); inferred from -o when empty")
	flag.StringVar(&opts.ConfigFile, "config", "", "Config file (default: trackcard.yaml in . or $HOME/.config/trackcard)")
	flag.StringVar(&opts.GeoJSON, "geojson", "", "Also write the track and its stats as GeoJSON to this file")
	flag.BoolVar(&opts.ListTemplates, "list-templates", false, "List embedded templates and exit")
	flag.BoolVar(&opts.Debug, "debug", false, "Verbose logging")
	flag.Parse()

	if opts.ListTemplates {
		for _, t := range templates.List() {
			fmt.Println(t.Name)
		}
		return
	}

	if err := log.Init(opts.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if cfg.Debug && !opts.Debug {
		if err := log.Init(true); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if opts.DataFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] -d <track.gpx>\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(context.Background(), opts, cfg, nil); err != nil {
		log.Fatalf("%v", err)
	}
}

// run produces the card. shoot overrides the browser screenshotter.
func run(ctx context.Context, opts options, cfg *config.Config, shoot export.Screenshotter) error {
	outfile := resolveOutput(opts.DataFile, firstNonEmpty(opts.OutFile, cfg.Output))
	format, err := resolveFormat(firstNonEmpty(opts.Format, cfg.Format), outfile)
	if err != nil {
		return err
	}

	tpl, err := loadTemplate(firstNonEmpty(opts.Template, cfg.Template))
	if err != nil {
		return err
	}
	tpl.FallbackWidth = cfg.Map.FallbackWidth
	log.Infof("Using template '%s' for %s -> %s", tpl.Name, opts.DataFile, outfile)

	log.Infof("Loading track: %s", opts.DataFile)
	doc, err := track.LoadGPX(opts.DataFile)
	if err != nil {
		return err
	}
	stats := track.Analyze(doc)
	log.Infow("Track analyzed",
		"name", stats.Name,
		"points", doc.NumPoints(),
		"distance_m", stats.Distance,
		"moving_time", stats.MovingTime.String(),
	)

	if opts.GeoJSON != "" {
		if err := writeGeoJSON(opts.GeoJSON, stats); err != nil {
			return err
		}
		log.Infof("GeoJSON saved to: %s", opts.GeoJSON)
	}

	renderer := &mapimg.Renderer{MaxPoints: cfg.Map.MaxPoints}
	if cfg.Map.TileURL != "" {
		renderer.Tiles = mapimg.NewTiles(cfg.Map.TileURL, cfg.Map.TileCache, cfg.Map.UserAgent)
	}
	cardCtx := card.NewContext(stats, renderer)
	defer cardCtx.Reset()

	if req, ok := tpl.MapImageRequest(); ok {
		log.Infof("Map image: %dx%d px", req.Width, req.Height)
	}

	svg, err := tpl.Apply(cardCtx, card.Assets(cardCtx, card.FileAssets{Dir: cfg.Assets.Dir}))
	if err != nil {
		return fmt.Errorf("applying template %s: %w", tpl.Name, err)
	}

	exp := &export.Exporter{
		Options: export.Options{Timeout: cfg.Export.Timeout, JPEGQuality: cfg.Export.JPEGQuality},
		Shoot:   shoot,
	}
	written, err := exp.WriteFiles(ctx, svg, outfile, format)
	if err != nil {
		return fmt.Errorf("error generating %s: %w", format, err)
	}
	for _, p := range written {
		log.Infof("Output saved to: %s", p)
	}
	return nil
}

// loadTemplate tries the embedded templates first, then a file path.
func loadTemplate(nameOrPath string) (*template.Template, error) {
	if t, ok := templates.ByName(nameOrPath); ok {
		log.Debugf("Using embedded template '%s'", nameOrPath)
		return template.New(t.Name, t.Content), nil
	}
	log.Infof("Reading template file: %s", nameOrPath)
	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("error reading template file '%s': %w", nameOrPath, err)
	}
	name := strings.TrimSuffix(filepath.Base(nameOrPath), filepath.Ext(nameOrPath))
	return template.New(name, string(data)), nil
}

// resolveOutput defaults the output to the data file's stem with .png.
func resolveOutput(datafile, outfile string) string {
	if outfile != "" {
		return outfile
	}
	stem := strings.TrimSuffix(filepath.Base(datafile), filepath.Ext(datafile))
	if stem == "" || stem == "." {
		return "output.png"
	}
	return stem + ".png"
}

// resolveFormat uses the explicit format, else the output extension, else PNG.
func resolveFormat(format, outfile string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if f, ok := export.FormatFromPath(outfile); ok {
		return f, nil
	}
	return export.PNG, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
