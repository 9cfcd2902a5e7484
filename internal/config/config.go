// Package config loads the ggstudio YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/studio/export"
	"github.com/gogpu/studio/history"
	"github.com/gogpu/studio/render"
)

// DefaultPath is the file read when no path is given and it exists.
const DefaultPath = "ggstudio.yaml"

// Config holds all ggstudio configuration.
type Config struct {
	History HistoryConfig `yaml:"history"`
	Export  ExportConfig  `yaml:"export"`
	Render  RenderConfig  `yaml:"render"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
}

// HistoryConfig controls the undo log.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// ExportConfig controls single and batch exports.
type ExportConfig struct {
	Format      string         `yaml:"format"`
	Scale       float64        `yaml:"scale"`
	Quality     float64        `yaml:"quality"`
	Concurrency int            `yaml:"concurrency"`
	Thumbnail   int            `yaml:"thumbnail"`
	Presets     []export.Ratio `yaml:"presets"`
}

// RenderConfig controls rasterization.
type RenderConfig struct {
	FontPath       string `yaml:"font_path"`
	ImageRoot      string `yaml:"image_root"`
	ImageCacheSize int    `yaml:"image_cache_size"`
}

// StoreConfig locates the project database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultPresets are the batch targets used when none are configured.
var DefaultPresets = []export.Ratio{
	{Name: "square", Width: 1080, Height: 1080},
	{Name: "portrait", Width: 1080, Height: 1350},
	{Name: "story", Width: 1080, Height: 1920},
	{Name: "landscape", Width: 1920, Height: 1080},
}

func (c *Config) defaults() {
	if c.History.Capacity <= 0 {
		c.History.Capacity = history.DefaultCapacity
	}
	if c.Export.Format == "" {
		c.Export.Format = "png"
	}
	if c.Export.Scale <= 0 {
		c.Export.Scale = 1
	}
	if c.Export.Quality <= 0 {
		c.Export.Quality = export.DefaultQuality
	}
	if c.Export.Concurrency <= 0 {
		c.Export.Concurrency = export.DefaultConcurrency
	}
	if c.Export.Thumbnail <= 0 {
		c.Export.Thumbnail = 256
	}
	if len(c.Export.Presets) == 0 {
		c.Export.Presets = append([]export.Ratio(nil), DefaultPresets...)
	}
	if c.Render.ImageCacheSize <= 0 {
		c.Render.ImageCacheSize = render.DefaultImageCacheSize
	}
	if c.Store.Path == "" {
		c.Store.Path = "ggstudio.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// Load reads a YAML config file and fills unset fields with defaults.
// An empty path reads DefaultPath if it exists and returns the defaults
// otherwise.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills unset fields with defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Export.Quality > 1 {
		return fmt.Errorf("config: export.quality %g outside [0,1]", c.Export.Quality)
	}
	seen := make(map[string]bool, len(c.Export.Presets))
	for _, p := range c.Export.Presets {
		if p.Name == "" {
			return fmt.Errorf("config: export preset without name")
		}
		if seen[p.Name] {
			return fmt.Errorf("config: duplicate export preset %q", p.Name)
		}
		seen[p.Name] = true
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("config: export preset %q has size %dx%d", p.Name, p.Width, p.Height)
		}
	}
	return nil
}

// Preset returns the named export preset.
func (c *Config) Preset(name string) (export.Ratio, bool) {
	for _, p := range c.Export.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return export.Ratio{}, false
}

// Renderer builds a renderer from the render settings.
func (c *Config) Renderer() (*render.Renderer, error) {
	opts := []render.Option{
		render.WithLoader(render.FileLoader{Root: c.Render.ImageRoot}),
		render.WithImageCacheSize(c.Render.ImageCacheSize),
	}
	if c.Render.FontPath != "" {
		fonts, err := render.LoadFonts(c.Render.FontPath)
		if err != nil {
			return nil, fmt.Errorf("config: render.font_path: %w", err)
		}
		opts = append(opts, render.WithFonts(fonts))
	}
	return render.New(opts...), nil
}
