// Package vision provides the low-level image-analysis primitives the
// document-detection pipelines are built on.
//
// The Engine interface exposes exactly the five operations the pipelines
// need: automatic binarization, morphological closing, contour extraction,
// quadrilateral approximation, and dual-threshold edge detection. Pipeline
// and filter logic depend only on this interface, so a different image
// processing backend can be substituted without touching orchestration code.
//
// All operations are pure: they never mutate their input and are
// deterministic for identical input bytes.
package vision

import (
	"image"
	"image/color"

	"github.com/brunosoda/crop-id-fields/internal/geometry"
)

// Engine is the capability interface backing the detection pipelines.
type Engine interface {
	// Threshold binarizes a grayscale image using an automatically computed
	// global (Otsu) threshold with inverted polarity: pixels at or below the
	// threshold become foreground (255), pixels above it become background
	// (0). Document regions photographed against a lighter backdrop therefore
	// appear as foreground.
	Threshold(src *image.Gray) *image.Gray

	// Close applies morphological closing (dilation followed by erosion) with
	// a square structuring element of the given size, merging fragmented
	// foreground regions into contiguous blobs.
	Close(mask *image.Gray, size int) *image.Gray

	// Contours extracts the connected foreground components of a binary
	// mask. Components smaller than a few pixels are discarded as noise.
	Contours(mask *image.Gray) []geometry.Contour

	// ApproxQuad fits a minimal-area rotated rectangle around a contour and
	// returns its four corners. Returns geometry.ErrDegenerate for contours
	// that collapse to a line or point.
	ApproxQuad(c geometry.Contour) (geometry.Quad, error)

	// Edges runs dual-threshold (Canny-style) edge detection on a grayscale
	// image, returning a binary mask with edge pixels set to 255.
	Edges(src *image.Gray, low, high uint8) *image.Gray
}

// NewEngine returns the default Engine implementation, backed by the bild
// library for binarization and morphology.
func NewEngine() Engine {
	return &bildEngine{}
}

// Grayscale converts an image to 8-bit grayscale using ITU-R BT.601
// luminance weights (0.299*R + 0.587*G + 0.114*B).
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			v := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(v)})
		}
	}
	return gray
}
