// Package config provides quill's configuration, loaded through viper from
// (highest priority first) command-line flags, QUILL_-prefixed environment
// variables, and a .quill.yml file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/quillforge/quill/internal/bib"
)

// Config is the root configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Render RenderConfig `mapstructure:"render"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Open controls opening the browser on serve.
	Open bool `mapstructure:"open"`
}

// RenderConfig configures document rendering defaults. Document metadata
// overrides these per document.
type RenderConfig struct {
	// Output is the default output path for `quill render` ("-" = stdout).
	Output string `mapstructure:"output"`
	// Stylesheet links an external stylesheet instead of the embedded one.
	Stylesheet string `mapstructure:"stylesheet"`
	// CiteStyle is the default citation style: numeric or author-year.
	CiteStyle string `mapstructure:"cite-style"`
	// SortRefsByAuthor orders reference lists by collated author names.
	SortRefsByAuthor bool `mapstructure:"sort-refs-by-author"`
	// Lang is the collation language for sorted references (BCP 47).
	Lang string `mapstructure:"lang"`
	// Bibliography names database files merged into every document's own.
	Bibliography []string `mapstructure:"bibliography"`
}

// WatchConfig configures the file watcher behind `quill serve`.
type WatchConfig struct {
	// DebounceMillis groups rapid changes into one rebuild.
	DebounceMillis int `mapstructure:"debounce-millis"`
}

// Load builds the configuration from viper's merged sources and validates
// it.
func Load() (*Config, error) {
	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.open", false)
	viper.SetDefault("render.output", "-")
	viper.SetDefault("render.cite-style", "numeric")
	viper.SetDefault("watch.debounce-millis", 150)
}

// Validate checks field ranges and formats, returning the first problem
// with enough context to fix it.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 1..65535", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server.host must not be empty")
	}
	if _, err := bib.ParseStyle(c.Render.CiteStyle); err != nil {
		return fmt.Errorf("render.cite-style: %w", err)
	}
	if c.Render.Lang != "" {
		if _, err := language.Parse(c.Render.Lang); err != nil {
			return fmt.Errorf("render.lang %q is not a valid BCP 47 tag: %w", c.Render.Lang, err)
		}
	}
	if c.Watch.DebounceMillis < 0 {
		return fmt.Errorf("watch.debounce-millis must not be negative")
	}
	return nil
}

// RenderOptions translates the render section into document render options.
func (c *Config) RenderOptions() RenderDefaults {
	return RenderDefaults{
		CiteStyle:        c.Render.CiteStyle,
		SortRefsByAuthor: c.Render.SortRefsByAuthor,
		Lang:             c.Render.Lang,
		Stylesheet:       c.Render.Stylesheet,
		Bibliography:     c.Render.Bibliography,
	}
}

// RenderDefaults mirrors document.RenderOptions without importing it, so
// config stays a leaf package.
type RenderDefaults struct {
	CiteStyle        string
	SortRefsByAuthor bool
	Lang             string
	Stylesheet       string
	Bibliography     []string
}
