// Package config loads the YAML configuration consumed by the CLI: detector
// tuning parameters, batch-runner settings, and named proportional crop
// models. Every field has a working default; a config file only overrides
// what it mentions.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brunosoda/crop-id-fields/internal/detect"
	"github.com/brunosoda/crop-id-fields/internal/imaging"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Detector Detector            `yaml:"detector"`
	Batch    Batch               `yaml:"batch"`
	Models   []imaging.CropModel `yaml:"crop_models"`
}

// Detector mirrors detect.Options with YAML field names.
type Detector struct {
	MinAreaFraction  float64 `yaml:"min_area_fraction"`
	SquareAspectLow  float64 `yaml:"square_aspect_low"`
	SquareAspectHigh float64 `yaml:"square_aspect_high"`
	MarginFraction   float64 `yaml:"margin_fraction"`
	CloseSize        int     `yaml:"close_size"`
	EdgeLow          int     `yaml:"edge_low"`
	EdgeHigh         int     `yaml:"edge_high"`
	BlurRadius       float64 `yaml:"blur_radius"`
}

// Options converts the YAML representation into detect.Options.
func (d Detector) Options() detect.Options {
	return detect.Options{
		MinAreaFraction:  d.MinAreaFraction,
		SquareAspectLow:  d.SquareAspectLow,
		SquareAspectHigh: d.SquareAspectHigh,
		MarginFraction:   d.MarginFraction,
		CloseSize:        d.CloseSize,
		EdgeLow:          clampByte(d.EdgeLow),
		EdgeHigh:         clampByte(d.EdgeHigh),
		BlurRadius:       d.BlurRadius,
	}
}

// Batch configures the manifest batch runner.
type Batch struct {
	// Workers is the number of concurrent images processed. Zero selects an
	// automatic value from CPU count and available memory.
	Workers int `yaml:"workers"`

	// MaxRows caps how many manifest rows are processed. Zero means all.
	MaxRows int `yaml:"max_rows"`

	// TemplateDir holds the reference images crops are scored against with
	// SSIM. Empty disables scoring.
	TemplateDir string `yaml:"template_dir"`

	// OutputDir receives the cropped images and output.json.
	OutputDir string `yaml:"output_dir"`

	// DownloadTimeout bounds each remote image download.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := detect.DefaultOptions()
	return &Config{
		Detector: Detector{
			MinAreaFraction:  opts.MinAreaFraction,
			SquareAspectLow:  opts.SquareAspectLow,
			SquareAspectHigh: opts.SquareAspectHigh,
			MarginFraction:   opts.MarginFraction,
			CloseSize:        opts.CloseSize,
			EdgeLow:          int(opts.EdgeLow),
			EdgeHigh:         int(opts.EdgeHigh),
			BlurRadius:       opts.BlurRadius,
		},
		Batch: Batch{
			OutputDir:       "cropped",
			DownloadTimeout: 30 * time.Second,
		},
	}
}

// Load reads a YAML config file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
