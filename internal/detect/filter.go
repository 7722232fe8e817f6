package detect

import (
	"github.com/brunosoda/crop-id-fields/internal/geometry"
)

// candidate is the "found something" outcome of a pipeline stage. Stages
// return (candidate, false) to signal the normal no-candidate outcome that
// advances the orchestrator to the next strategy.
type candidate struct {
	quad geometry.Quad
	bbox geometry.BoundingBox
}

// largestQuad is the shared quad filter of the threshold and edge pipelines.
//
// Each contour is approximated by a minimal rotated rectangle; degenerate
// geometry, quads below the area threshold, and near-square bounding boxes
// are discarded. Among the survivors the one with the largest quad area wins.
func (d *Detector) largestQuad(contours []geometry.Contour, imgW, imgH int) (candidate, bool) {
	minArea := d.opts.MinAreaFraction * float64(imgW) * float64(imgH)

	var best candidate
	bestArea := 0.0
	for _, c := range contours {
		quad, err := d.engine.ApproxQuad(c)
		if err != nil {
			// Degenerate geometry is an invalid candidate, not a failure.
			continue
		}
		// A document clipped by the frame yields a rotated rectangle with
		// corners outside the image; only the visible part counts.
		quad = quad.Clamp(imgW, imgH)
		area := quad.Area()
		if area < minArea {
			continue
		}
		bbox := geometry.BoundsOf(quad[:])
		if d.nearSquare(bbox) {
			continue
		}
		if area > bestArea {
			bestArea = area
			best = candidate{quad: quad, bbox: bbox}
		}
	}
	return best, bestArea > 0
}

// largestPageLike relaxes the area constraint: it selects the largest
// bounding box among contours that are not near-square. The quad of the
// candidate is the box's own corners.
func (d *Detector) largestPageLike(contours []geometry.Contour) (candidate, bool) {
	var best candidate
	bestArea := 0
	for _, c := range contours {
		bbox := geometry.BoundsOf(c)
		if bbox.Width == 0 || bbox.Height == 0 {
			continue
		}
		if d.nearSquare(bbox) {
			continue
		}
		if area := bbox.Area(); area > bestArea {
			bestArea = area
			best = candidate{quad: bbox.Corners(), bbox: bbox}
		}
	}
	return best, bestArea > 0
}

// largestAny is the absolute last resort: the bounding box of the single
// largest contour (by pixel count), with no shape constraints. It can
// succeed even when the image contains no clear document boundary.
func (d *Detector) largestAny(contours []geometry.Contour) (candidate, bool) {
	var largest geometry.Contour
	for _, c := range contours {
		if len(c) > len(largest) {
			largest = c
		}
	}
	if len(largest) == 0 {
		return candidate{}, false
	}
	bbox := geometry.BoundsOf(largest)
	if bbox.Width == 0 || bbox.Height == 0 {
		return candidate{}, false
	}
	return candidate{quad: bbox.Corners(), bbox: bbox}, true
}

// nearSquare reports whether a box falls inside the rejected aspect band.
func (d *Detector) nearSquare(b geometry.BoundingBox) bool {
	ratio := b.AspectRatio()
	return ratio >= d.opts.SquareAspectLow && ratio <= d.opts.SquareAspectHigh
}
