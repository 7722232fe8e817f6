package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	opts := cfg.Detector.Options()
	if opts.MinAreaFraction != 0.25 {
		t.Errorf("MinAreaFraction: got %v, want 0.25", opts.MinAreaFraction)
	}
	if opts.EdgeLow != 50 || opts.EdgeHigh != 150 {
		t.Errorf("edge thresholds: got %d/%d, want 50/150", opts.EdgeLow, opts.EdgeHigh)
	}
	if cfg.Batch.DownloadTimeout != 30*time.Second {
		t.Errorf("DownloadTimeout: got %v, want 30s", cfg.Batch.DownloadTimeout)
	}
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
detector:
  min_area_fraction: 0.4
  close_size: 9
batch:
  workers: 3
crop_models:
  - name: front
    left: 0.14
    right: 0.71
    top: 0.35
    bottom: 0.47
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Detector.MinAreaFraction != 0.4 {
		t.Errorf("MinAreaFraction: got %v, want 0.4", cfg.Detector.MinAreaFraction)
	}
	if cfg.Detector.CloseSize != 9 {
		t.Errorf("CloseSize: got %d, want 9", cfg.Detector.CloseSize)
	}
	// Untouched fields keep their defaults.
	if cfg.Detector.MarginFraction != 0.03 {
		t.Errorf("MarginFraction: got %v, want default 0.03", cfg.Detector.MarginFraction)
	}
	if cfg.Batch.Workers != 3 {
		t.Errorf("Workers: got %d, want 3", cfg.Batch.Workers)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Name != "front" {
		t.Errorf("crop models: got %+v", cfg.Models)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing config accepted, want error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("detector: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("invalid yaml accepted, want error")
	}
}

func TestDetectorOptions_ClampsEdgeThresholds(t *testing.T) {
	d := Detector{EdgeLow: -10, EdgeHigh: 400}

	opts := d.Options()
	if opts.EdgeLow != 0 || opts.EdgeHigh != 255 {
		t.Errorf("clamped thresholds: got %d/%d, want 0/255", opts.EdgeLow, opts.EdgeHigh)
	}
}
