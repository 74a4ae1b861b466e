// Package config loads trackcard settings from defaults, an optional YAML
// file and TRACKCARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Template string       `mapstructure:"template"`
	Output   string       `mapstructure:"output"`
	Format   string       `mapstructure:"format"`
	Debug    bool         `mapstructure:"debug"`
	Map      MapConfig    `mapstructure:"map"`
	Export   ExportConfig `mapstructure:"export"`
	Assets   AssetsConfig `mapstructure:"assets"`
}

type MapConfig struct {
	TileURL       string `mapstructure:"tile_url"`
	TileCache     string `mapstructure:"tile_cache"`
	UserAgent     string `mapstructure:"user_agent"`
	MaxPoints     int    `mapstructure:"max_points"`
	FallbackWidth int    `mapstructure:"fallback_width"`
}

type ExportConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	JPEGQuality int           `mapstructure:"jpeg_quality"`
}

type AssetsConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration. With an empty file, trackcard.yaml is looked up
// in the working directory and in $HOME/.config/trackcard and may be
// missing; a named file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("template", "story_split")
	v.SetDefault("output", "")
	v.SetDefault("format", "")
	v.SetDefault("debug", false)
	v.SetDefault("map.tile_url", "")
	v.SetDefault("map.tile_cache", ".tile_cache")
	v.SetDefault("map.user_agent", "go-trackcard/0.1")
	v.SetDefault("map.max_points", 2000)
	v.SetDefault("map.fallback_width", 1000)
	v.SetDefault("export.timeout", 60*time.Second)
	v.SetDefault("export.jpeg_quality", 90)
	v.SetDefault("assets.dir", "")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("trackcard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/trackcard")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Environment variables: TRACKCARD_MAP_TILE_URL → map.tile_url
	v.SetEnvPrefix("TRACKCARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var formats = map[string]bool{"": true, "svg": true, "png": true, "jpg": true, "jpeg": true}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []string

	if c.Template == "" {
		errs = append(errs, "template is required")
	}
	if !formats[strings.ToLower(c.Format)] {
		errs = append(errs, fmt.Sprintf("format must be svg, png, jpg or jpeg, got %q", c.Format))
	}
	if c.Map.MaxPoints < 2 {
		errs = append(errs, fmt.Sprintf("map.max_points must be at least 2, got %d", c.Map.MaxPoints))
	}
	if c.Map.FallbackWidth <= 0 {
		errs = append(errs, "map.fallback_width must be positive")
	}
	if c.Map.TileURL != "" && !hasTilePlaceholders(c.Map.TileURL) {
		errs = append(errs, "map.tile_url must contain {z}, {x} and {y}")
	}
	if c.Export.Timeout <= 0 {
		errs = append(errs, "export.timeout must be positive")
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		errs = append(errs, fmt.Sprintf("export.jpeg_quality must be 1-100, got %d", c.Export.JPEGQuality))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func hasTilePlaceholders(url string) bool {
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(url, p) {
			return false
		}
	}
	return true
}
