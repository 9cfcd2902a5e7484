package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/studio/export"
	"github.com/gogpu/studio/history"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.History.Capacity != history.DefaultCapacity {
		t.Errorf("History.Capacity = %d, want %d", cfg.History.Capacity, history.DefaultCapacity)
	}
	if cfg.Export.Format != "png" || cfg.Export.Scale != 1 || cfg.Export.Quality != export.DefaultQuality {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if len(cfg.Export.Presets) != len(DefaultPresets) {
		t.Errorf("Presets = %d, want %d", len(cfg.Export.Presets), len(DefaultPresets))
	}
	if cfg.Server.Addr != ":8080" || cfg.Store.Path != "ggstudio.db" {
		t.Errorf("Server.Addr = %q, Store.Path = %q", cfg.Server.Addr, cfg.Store.Path)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
history:
  capacity: 20
export:
  quality: 0.7
  presets:
    - {name: banner, width: 1500, height: 500}
store:
  path: /tmp/x.db
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.History.Capacity != 20 {
		t.Errorf("History.Capacity = %d, want 20", cfg.History.Capacity)
	}
	if cfg.Export.Quality != 0.7 {
		t.Errorf("Export.Quality = %g, want 0.7", cfg.Export.Quality)
	}
	if cfg.Export.Concurrency != export.DefaultConcurrency {
		t.Errorf("Export.Concurrency = %d, want default", cfg.Export.Concurrency)
	}
	p, ok := cfg.Preset("banner")
	if !ok || p.Width != 1500 || p.Height != 500 {
		t.Errorf("Preset(banner) = %+v, %v", p, ok)
	}
	if _, ok := cfg.Preset("square"); ok {
		t.Error("configured presets should replace the defaults")
	}
	if cfg.Store.Path != "/tmp/x.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"syntax", "history: [", "config:"},
		{"quality", "export: {quality: 3}", "quality"},
		{"duplicate preset", "export: {presets: [{name: a, width: 1, height: 1}, {name: a, width: 2, height: 2}]}", "duplicate"},
		{"bad size", "export: {presets: [{name: a, width: 0, height: 1}]}", "size"},
		{"unnamed", "export: {presets: [{width: 1, height: 1}]}", "without name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studio.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: 127.0.0.1:9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil")
	}

	t.Chdir(dir)
	cfg, err = Load("")
	if err != nil || cfg.Server.Addr != ":8080" {
		t.Errorf("Load(\"\") without %s = %v, %v, want defaults", DefaultPath, cfg, err)
	}
}

func TestRenderer(t *testing.T) {
	if _, err := Default().Renderer(); err != nil {
		t.Errorf("Renderer() error = %v", err)
	}
	cfg := Default()
	cfg.Render.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	if _, err := cfg.Renderer(); err == nil {
		t.Error("Renderer() with missing font error = nil")
	}
}
