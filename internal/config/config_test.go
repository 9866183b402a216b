package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Server.Open)
	assert.Equal(t, "-", cfg.Render.Output)
	assert.Equal(t, "numeric", cfg.Render.CiteStyle)
	assert.Equal(t, 150, cfg.Watch.DebounceMillis)
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("server.port", 3000)
	viper.Set("render.cite-style", "author-year")
	viper.Set("render.bibliography", []string{"shared.bib"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "author-year", cfg.Render.CiteStyle)
	assert.Equal(t, []string{"shared.bib"}, cfg.Render.Bibliography)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "localhost", Port: 8080},
			Render: RenderConfig{CiteStyle: "numeric"},
			Watch:  WatchConfig{DebounceMillis: 150},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "out of range",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "out of range",
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Server.Host = "" },
			wantErr: "must not be empty",
		},
		{
			name:    "bad cite style",
			mutate:  func(c *Config) { c.Render.CiteStyle = "chicago" },
			wantErr: "cite-style",
		},
		{
			name:    "bad language tag",
			mutate:  func(c *Config) { c.Render.Lang = "!!" },
			wantErr: "BCP 47",
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Watch.DebounceMillis = -1 },
			wantErr: "negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRenderOptions(t *testing.T) {
	cfg := &Config{Render: RenderConfig{
		CiteStyle:        "author-year",
		SortRefsByAuthor: true,
		Lang:             "de",
		Stylesheet:       "site.css",
		Bibliography:     []string{"a.bib"},
	}}
	opts := cfg.RenderOptions()
	assert.Equal(t, "author-year", opts.CiteStyle)
	assert.True(t, opts.SortRefsByAuthor)
	assert.Equal(t, "de", opts.Lang)
	assert.Equal(t, "site.css", opts.Stylesheet)
	assert.Equal(t, []string{"a.bib"}, opts.Bibliography)
}
