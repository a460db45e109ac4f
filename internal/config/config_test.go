package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProcessingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Processing)
		wantErr bool
	}{
		{"defaults ok", func(p *Processing) {}, false},
		{"tolerance low", func(p *Processing) { p.BackgroundTolerance = -1 }, true},
		{"tolerance high", func(p *Processing) { p.BackgroundTolerance = 101 }, true},
		{"tolerance edge", func(p *Processing) { p.BackgroundTolerance = 100 }, false},
		{"zero target", func(p *Processing) { p.TargetSize = 0 }, true},
		{"padding full", func(p *Processing) { p.PaddingPercent = 100 }, true},
		{"padding edge", func(p *Processing) { p.PaddingPercent = 99.9 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProcessing()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: ":9090"
defaults:
  target_size: 256
  remove_background: false
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != ":9090" {
		t.Errorf("port = %s, want :9090", cfg.Server.Port)
	}
	if cfg.Defaults.TargetSize != 256 {
		t.Errorf("target_size = %d, want 256", cfg.Defaults.TargetSize)
	}
	if cfg.Defaults.RemoveBackground {
		t.Error("remove_background override lost")
	}
	// Untouched fields keep their defaults.
	if cfg.Defaults.PaddingPercent != 10 {
		t.Errorf("padding_percent = %f, want default 10", cfg.Defaults.PaddingPercent)
	}
	if cfg.Server.Mode != "debug" {
		t.Errorf("mode = %s, want default debug", cfg.Server.Mode)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	// Absent file: built-in defaults, no error.
	cfg, err := loadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("absent file: %v", err)
	}
	if cfg.Server.Port != ":8080" || cfg.Defaults.TargetSize != 512 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	// Present but malformed file: the error must surface, not be masked
	// by the defaults fallback.
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := loadOrDefault(path); err == nil {
		t.Error("malformed config must not silently fall back to defaults")
	}
}
