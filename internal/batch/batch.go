// Package batch processes manifests of document photos: each image is
// fetched, run through boundary detection, cropped, optionally scored
// against reference templates with SSIM, and summarized in an output.json.
//
// Images are processed concurrently; a failure on one image is recorded in
// its output row and logged, never aborting the rest of the batch.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"

	"github.com/brunosoda/crop-id-fields/internal/detect"
	"github.com/brunosoda/crop-id-fields/internal/geometry"
	"github.com/brunosoda/crop-id-fields/internal/imaging"
	"github.com/brunosoda/crop-id-fields/internal/ssim"
)

// perWorkerBytes is a rough budget of peak memory per in-flight image
// (decoded frame plus pipeline masks) used for automatic worker sizing.
const perWorkerBytes = 256 << 20

// Output is one row of output.json.
type Output struct {
	ID           string                `json:"id"`
	FileURL      string                `json:"file_url"`
	Method       string                `json:"method,omitempty"`
	BBox         *geometry.BoundingBox `json:"bbox,omitempty"`
	CropPath     string                `json:"crop_path,omitempty"`
	BestTemplate string                `json:"best_template,omitempty"`
	// Similarity is a pointer so a legitimate score of exactly 0 is still
	// serialized; nil means the row was not scored.
	Similarity *float64 `json:"similarity,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Runner executes a batch. Fields must be populated before Run; the runner
// itself holds no mutable state and can be reused for several batches.
type Runner struct {
	// Detector performs boundary detection. Required.
	Detector *detect.Detector

	// Client fetches remote images. Required for http(s) manifest rows.
	Client *http.Client

	// TemplateDir holds reference images to score crops against. Empty
	// disables SSIM scoring.
	TemplateDir string

	// OutputDir receives cropped images and output.json.
	OutputDir string

	// Workers limits concurrent images. Zero selects AutoWorkers().
	Workers int

	// Log receives per-image progress and failures.
	Log zerolog.Logger

	templates *imaging.Cache
}

// AutoWorkers picks a worker count from the CPU count, lowered when
// available memory cannot hold that many in-flight images.
func AutoWorkers() int {
	workers := runtime.NumCPU()
	if vm, err := mem.VirtualMemory(); err == nil {
		if byMem := int(vm.Available / perWorkerBytes); byMem < workers {
			workers = byMem
		}
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Run processes all entries and returns one output row per entry, in input
// order. Only infrastructure problems (output directory creation, context
// cancellation) fail the whole run; per-image errors land in the row's
// Error field.
func (r *Runner) Run(ctx context.Context, entries []Entry) ([]Output, error) {
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	r.templates = imaging.NewCache()

	workers := r.Workers
	if workers <= 0 {
		workers = AutoWorkers()
	}

	rows := make([]Output, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = r.processOne(ctx, entry)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// WriteOutputs writes the rows as indented JSON to path.
func WriteOutputs(path string, rows []Output) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write outputs: %w", err)
	}
	return nil
}

func (r *Runner) processOne(ctx context.Context, entry Entry) Output {
	row := Output{ID: entry.ID, FileURL: entry.FileURL}

	img, err := r.fetch(ctx, entry.FileURL)
	if err != nil {
		r.Log.Warn().Str("id", entry.ID).Err(err).Msg("fetch failed")
		row.Error = err.Error()
		return row
	}

	result, err := r.Detector.Detect(img)
	if err != nil {
		r.Log.Warn().Str("id", entry.ID).Err(err).Msg("detection failed")
		row.Error = err.Error()
		return row
	}
	row.Method = result.Method
	row.BBox = &result.BBox

	crop, err := imaging.CropBox(img, result.BBox)
	if err != nil {
		row.Error = err.Error()
		return row
	}

	cropPath := filepath.Join(r.OutputDir, entry.ID+"_cropped.jpg")
	if err := imaging.Save(crop, cropPath); err != nil {
		r.Log.Warn().Str("id", entry.ID).Err(err).Msg("crop save failed")
		row.Error = err.Error()
		return row
	}
	row.CropPath = cropPath

	if r.TemplateDir != "" {
		name, score, err := r.bestTemplate(crop)
		if err != nil {
			r.Log.Warn().Str("id", entry.ID).Err(err).Msg("template scoring failed")
		} else {
			row.BestTemplate = name
			row.Similarity = &score
		}
	}

	r.Log.Info().
		Str("id", entry.ID).
		Str("method", row.Method).
		Str("crop", row.CropPath).
		Msg("processed")
	return row
}

// fetch loads an image from an http(s) URL or a local path.
func (r *Runner) fetch(ctx context.Context, location string) (image.Image, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return imaging.Load(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", location, err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s returned %s", location, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", location, err)
	}
	return img, nil
}

// bestTemplate scores a crop against every image in TemplateDir and returns
// the best-matching template name with its SSIM score.
func (r *Runner) bestTemplate(crop image.Image) (string, float64, error) {
	names, err := templateFiles(r.TemplateDir)
	if err != nil {
		return "", 0, err
	}
	if len(names) == 0 {
		return "", 0, fmt.Errorf("no templates found in %s", r.TemplateDir)
	}

	bestName := ""
	bestScore := -1.0
	for _, name := range names {
		tmpl, err := r.templates.Load(filepath.Join(r.TemplateDir, name))
		if err != nil {
			return "", 0, err
		}
		score, err := ssim.Compare(tmpl, crop, ssim.Options{ResizeToMatch: true})
		if err != nil {
			return "", 0, err
		}
		if score > bestScore {
			bestScore = score
			bestName = name
		}
	}
	return bestName, bestScore, nil
}

// templateFiles lists image files in a directory in sorted order.
func templateFiles(dir string) ([]string, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	var names []string
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(item.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
			names = append(names, item.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
