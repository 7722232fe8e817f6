package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/brunosoda/crop-id-fields/internal/geometry"
)

// CropBox extracts the region of img covered by a detected bounding box.
// The box must lie within the image and have positive area.
func CropBox(img image.Image, box geometry.BoundingBox) (image.Image, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("invalid crop box %+v: empty region", box)
	}
	bounds := img.Bounds()
	rect := box.ToRect().Add(bounds.Min)
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop box %+v outside image bounds %v", box, bounds)
	}
	return imaging.Crop(img, rect), nil
}

// CropModel describes a fixed proportional crop region. Each field is a
// fraction (0..1) of the corresponding image dimension, so one model works
// at any resolution: Left/Right select the horizontal band, Top/Bottom the
// vertical one.
type CropModel struct {
	Name   string  `yaml:"name"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// Region resolves the model against concrete image dimensions, clamping to
// image bounds and normalizing inverted coordinates.
func (m CropModel) Region(width, height int) (geometry.BoundingBox, error) {
	left := int(m.Left * float64(width))
	right := int(m.Right * float64(width))
	top := int(m.Top * float64(height))
	bottom := int(m.Bottom * float64(height))

	x1 := clampInt(minInt(left, right), 0, width)
	y1 := clampInt(minInt(top, bottom), 0, height)
	x2 := clampInt(maxInt(left, right), 0, width)
	y2 := clampInt(maxInt(top, bottom), 0, height)

	if x2 <= x1 || y2 <= y1 {
		return geometry.BoundingBox{}, fmt.Errorf("crop model %q yields an empty region at %dx%d", m.Name, width, height)
	}
	return geometry.BoundingBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, nil
}

// Apply crops img to the model's proportional region.
func (m CropModel) Apply(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	box, err := m.Region(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	return CropBox(img, box)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
