package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/brunosoda/crop-id-fields/internal/batch"
	"github.com/brunosoda/crop-id-fields/internal/config"
	"github.com/brunosoda/crop-id-fields/internal/detect"
	"github.com/brunosoda/crop-id-fields/internal/imaging"
	"github.com/brunosoda/crop-id-fields/internal/ssim"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("crop-id-fields %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if os.Getenv("CROP_ID_FIELDS_LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var err error
	switch os.Args[1] {
	case "detect":
		err = runDetect(os.Args[2:])
	case "crop":
		err = runCrop(os.Args[2:])
	case "compare":
		err = runCompare(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:], log)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("crop-id-fields - document boundary detection and cropping")
	fmt.Println()
	fmt.Println("Usage: crop-id-fields <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  detect    Locate the document boundary in one image")
	fmt.Println("  crop      Crop one image to its detected boundary or a named crop model")
	fmt.Println("  compare   Report the SSIM similarity of two images")
	fmt.Println("  batch     Process a JSON manifest of images concurrently")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CROP_ID_FIELDS_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println()
	fmt.Println("Run 'crop-id-fields <command> -h' for command options.")
}

// loadConfig resolves the effective configuration: file contents when a path
// is given, built-in defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runDetect(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	in := fs.String("in", "", "input image path (required)")
	annotated := fs.String("annotated", "", "write a debug overlay image to this path")
	cfgPath := fs.String("config", "", "YAML config file")
	fs.Parse(args)

	if *in == "" {
		fs.Usage()
		return fmt.Errorf("-in is required")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	img, err := imaging.Load(*in)
	if err != nil {
		return err
	}

	result, err := detect.New(cfg.Detector.Options()).Detect(img)
	if err != nil {
		return err
	}

	if *annotated != "" {
		if err := imaging.Save(imaging.Annotate(img, result), *annotated); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runCrop(args []string) error {
	fs := flag.NewFlagSet("crop", flag.ExitOnError)
	in := fs.String("in", "", "input image path (required)")
	out := fs.String("out", "", "output image path (required)")
	model := fs.String("model", "", "named crop model from the config instead of detection")
	cfgPath := fs.String("config", "", "YAML config file")
	fs.Parse(args)

	if *in == "" || *out == "" {
		fs.Usage()
		return fmt.Errorf("-in and -out are required")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	img, err := imaging.Load(*in)
	if err != nil {
		return err
	}

	var cropped image.Image
	if *model != "" {
		m, ok := findModel(cfg.Models, *model)
		if !ok {
			return fmt.Errorf("crop model %q not found in config", *model)
		}
		cropped, err = m.Apply(img)
	} else {
		var result *detect.Result
		result, err = detect.New(cfg.Detector.Options()).Detect(img)
		if err == nil {
			cropped, err = imaging.CropBox(img, result.BBox)
		}
	}
	if err != nil {
		return err
	}
	return imaging.Save(cropped, *out)
}

func findModel(models []imaging.CropModel, name string) (imaging.CropModel, bool) {
	for _, m := range models {
		if m.Name == name {
			return m, true
		}
	}
	return imaging.CropModel{}, false
}

func runCompare(args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	a := fs.String("a", "", "first image path (required)")
	b := fs.String("b", "", "second image path (required)")
	resize := fs.Bool("resize", true, "resize the second image to match the first")
	fs.Parse(args)

	if *a == "" || *b == "" {
		fs.Usage()
		return fmt.Errorf("-a and -b are required")
	}

	imgA, err := imaging.Load(*a)
	if err != nil {
		return err
	}
	imgB, err := imaging.Load(*b)
	if err != nil {
		return err
	}

	score, err := ssim.Compare(imgA, imgB, ssim.Options{ResizeToMatch: *resize})
	if err != nil {
		return err
	}
	fmt.Printf("%.4f\n", score)
	return nil
}

func runBatch(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	manifest := fs.String("manifest", "", "JSON manifest of images to process (required)")
	cfgPath := fs.String("config", "", "YAML config file")
	outDir := fs.String("out", "", "output directory (overrides config)")
	templates := fs.String("templates", "", "template directory for SSIM scoring (overrides config)")
	workers := fs.Int("workers", 0, "concurrent images (overrides config; 0 = automatic)")
	fs.Parse(args)

	if *manifest == "" {
		fs.Usage()
		return fmt.Errorf("-manifest is required")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *outDir != "" {
		cfg.Batch.OutputDir = *outDir
	}
	if *templates != "" {
		cfg.Batch.TemplateDir = *templates
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	entries, err := batch.ReadManifest(*manifest, cfg.Batch.MaxRows)
	if err != nil {
		return err
	}
	log.Info().Int("entries", len(entries)).Str("manifest", *manifest).Msg("manifest loaded")

	runner := &batch.Runner{
		Detector:    detect.New(cfg.Detector.Options()),
		Client:      &http.Client{Timeout: cfg.Batch.DownloadTimeout},
		TemplateDir: cfg.Batch.TemplateDir,
		OutputDir:   cfg.Batch.OutputDir,
		Workers:     cfg.Batch.Workers,
		Log:         log,
	}

	rows, err := runner.Run(context.Background(), entries)
	if err != nil {
		return err
	}

	outPath := filepath.Join(cfg.Batch.OutputDir, "output.json")
	if err := batch.WriteOutputs(outPath, rows); err != nil {
		return err
	}

	failed := 0
	for _, row := range rows {
		if row.Error != "" {
			failed++
		}
	}
	log.Info().
		Int("processed", len(rows)-failed).
		Int("failed", failed).
		Str("output", outPath).
		Msg("batch finished")
	return nil
}
