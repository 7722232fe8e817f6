package detect

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"

	"github.com/brunosoda/crop-id-fields/internal/geometry"
	"github.com/brunosoda/crop-id-fields/internal/vision"
)

// Method identifiers naming which pipeline produced a detection result.
const (
	// MethodThresholdQuad marks a quad found by Otsu binarization plus
	// morphological closing.
	MethodThresholdQuad = "threshold_close_largest_non_square_quad"

	// MethodCannyQuad marks a quad found by dual-threshold edge detection.
	MethodCannyQuad = "canny_largest_non_square_quad"

	// MethodPageLikeBBox marks the relaxed fallback: the largest non-square
	// contour's bounding box, regardless of area coverage.
	MethodPageLikeBBox = "fallback_page_like_bbox"

	// MethodLargestContour marks the last resort: the bounding box of the
	// single largest contour, with no shape constraints.
	MethodLargestContour = "fallback_largest_contour"
)

var (
	// ErrInvalidImage is returned when the input buffer is nil or has zero
	// dimensions. Detection fails fast before any pipeline runs.
	ErrInvalidImage = errors.New("detect: invalid image")

	// ErrNoDocumentFound is returned when all four pipeline stages are
	// exhausted without producing a usable result.
	ErrNoDocumentFound = errors.New("detect: no document found")
)

// Options holds the tunable parameters of the detection pipelines.
// The zero value is not usable; start from DefaultOptions.
type Options struct {
	// MinAreaFraction is the minimum fraction of total image area a
	// quadrilateral from the threshold or edge pipelines must cover.
	// Default 0.25.
	MinAreaFraction float64

	// SquareAspectLow and SquareAspectHigh bound the width/height band
	// rejected as "square, likely not a document" by the quad pipelines and
	// the page-like fallback. Defaults 0.90 and 1.10.
	SquareAspectLow  float64
	SquareAspectHigh float64

	// MarginFraction is the fraction of the corresponding image dimension by
	// which an accepted bounding box is expanded on each side, clipped to
	// image bounds. Default 0.03.
	MarginFraction float64

	// CloseSize is the structuring-element size of the morphological closing
	// applied to both binary masks. Default 5.
	CloseSize int

	// EdgeLow and EdgeHigh are the dual thresholds (0-255) of the edge
	// detector. Defaults 50 and 150.
	EdgeLow  uint8
	EdgeHigh uint8

	// BlurRadius is the Gaussian blur radius applied during preprocessing.
	// Zero disables the blur. Default 2.
	BlurRadius float64
}

// DefaultOptions returns the documented default parameters.
func DefaultOptions() Options {
	return Options{
		MinAreaFraction:  0.25,
		SquareAspectLow:  0.90,
		SquareAspectHigh: 1.10,
		MarginFraction:   0.03,
		CloseSize:        5,
		EdgeLow:          50,
		EdgeHigh:         150,
		BlurRadius:       2,
	}
}

// Result is the outcome of a successful detection.
//
// Points are the four corners of the detected quadrilateral, ordered
// clockwise starting at the corner nearest the image origin. BBox is the
// axis-aligned bounding rectangle after margin expansion; it always fully
// contains all four points.
type Result struct {
	Points geometry.Quad        `json:"points"`
	BBox   geometry.BoundingBox `json:"bbox"`
	Method string               `json:"method"`
}

// Detector runs the four-stage detection over in-memory images.
//
// A Detector is immutable after construction and safe for concurrent use.
type Detector struct {
	engine vision.Engine
	opts   Options
}

// New creates a Detector backed by the default vision engine.
func New(opts Options) *Detector {
	return NewWithEngine(vision.NewEngine(), opts)
}

// NewWithEngine creates a Detector with a custom vision engine. Useful for
// substituting the image-processing backend in tests.
func NewWithEngine(engine vision.Engine, opts Options) *Detector {
	return &Detector{engine: engine, opts: opts}
}

// Detect locates the document boundary in an image.
//
// The four strategies are attempted strictly in priority order, each at most
// once; the first to produce a candidate wins and the remaining stages are
// skipped. There are no retries and no parameter adjustment between stages.
//
// Returns ErrInvalidImage for a nil or zero-dimension image, and
// ErrNoDocumentFound when every stage is exhausted.
func (d *Detector) Detect(img image.Image) (*Result, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, width, height)
	}

	pre := d.preprocess(img)

	thresholdContours := d.maskContours(d.engine.Threshold(pre))
	if cand, ok := d.largestQuad(thresholdContours, width, height); ok {
		return d.finish(cand, MethodThresholdQuad, width, height), nil
	}

	edgeContours := d.maskContours(d.engine.Edges(pre, d.opts.EdgeLow, d.opts.EdgeHigh))
	if cand, ok := d.largestQuad(edgeContours, width, height); ok {
		return d.finish(cand, MethodCannyQuad, width, height), nil
	}

	combined := make([]geometry.Contour, 0, len(thresholdContours)+len(edgeContours))
	combined = append(combined, thresholdContours...)
	combined = append(combined, edgeContours...)

	if cand, ok := d.largestPageLike(combined); ok {
		return d.finish(cand, MethodPageLikeBBox, width, height), nil
	}

	if cand, ok := d.largestAny(combined); ok {
		return d.finish(cand, MethodLargestContour, width, height), nil
	}

	return nil, ErrNoDocumentFound
}

// preprocess normalizes the input for analysis: grayscale conversion plus a
// Gaussian noise-reduction blur.
func (d *Detector) preprocess(img image.Image) *image.Gray {
	if d.opts.BlurRadius > 0 {
		return vision.Grayscale(blur.Gaussian(img, d.opts.BlurRadius))
	}
	return vision.Grayscale(img)
}

// maskContours closes a binary mask and extracts its contours.
func (d *Detector) maskContours(mask *image.Gray) []geometry.Contour {
	return d.engine.Contours(d.engine.Close(mask, d.opts.CloseSize))
}

// finish applies the margin expansion to an accepted candidate and tags it.
func (d *Detector) finish(cand candidate, method string, imgW, imgH int) *Result {
	dx := int(d.opts.MarginFraction * float64(imgW))
	dy := int(d.opts.MarginFraction * float64(imgH))
	return &Result{
		Points: cand.quad,
		BBox:   cand.bbox.Expand(dx, dy, imgW, imgH),
		Method: method,
	}
}
