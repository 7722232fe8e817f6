// Package detect locates the boundary of a physical document photographed
// digitally, returning a quadrilateral plus its axis-aligned bounding box for
// downstream cropping.
//
// # Detection Strategies
//
// Detection runs four strategies in fixed priority order, stopping at the
// first one to produce a candidate. The winning strategy is recorded in the
// result's Method field:
//
//  1. Threshold pipeline: Otsu binarization (inverted polarity), morphological
//     closing, contour extraction, quad filter.
//     Method: "threshold_close_largest_non_square_quad"
//  2. Edge pipeline: dual-threshold edge detection, closing, the same contour
//     and filter path. Runs only when the threshold pipeline finds nothing.
//     Method: "canny_largest_non_square_quad"
//  3. Page-like fallback: bounding box of the largest non-square contour,
//     ignoring the area filter. Method: "fallback_page_like_bbox"
//  4. Largest-contour fallback: bounding box of the single largest contour in
//     either binarized representation, no shape constraints.
//     Method: "fallback_largest_contour"
//
// Failing to find a candidate is a normal stage outcome, not an error; only
// exhausting all four stages fails the call, with ErrNoDocumentFound.
//
// # Quad Filter
//
// The two quad pipelines share the same acceptance logic:
//
//   - Area: the quadrilateral must cover at least MinAreaFraction of the
//     image (default 25%).
//   - Aspect: bounding boxes with a width/height ratio inside
//     [SquareAspectLow, SquareAspectHigh] (default [0.90, 1.10]) are rejected
//     as square, likely not a document.
//   - Margin: the accepted bounding box is expanded outward by MarginFraction
//     of the corresponding image dimension per side (default 3%), clipped to
//     the image.
//
// The page-like fallback applies the aspect exclusion but not the area
// filter; the largest-contour fallback applies neither.
//
// # Concurrency
//
// Detection is synchronous, deterministic, and free of shared mutable state.
// A single Detector is safe for concurrent use across goroutines; callers
// processing many images parallelize across images.
package detect
