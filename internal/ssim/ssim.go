// Package ssim implements grayscale structural-similarity (SSIM) scoring
// between a candidate crop and a reference template.
//
// SSIM compares local luminance, contrast and structure over a sliding
// window and averages the per-window scores, yielding 1.0 for identical
// images and values near 0 for unrelated content. The batch runner uses it
// to rank crop candidates against known-good templates.
package ssim

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/brunosoda/crop-id-fields/internal/vision"
)

// windowSize is the side of the square sliding window. 7 matches the common
// default for uniform (non-Gaussian) SSIM.
const windowSize = 7

// Stabilization constants for a dynamic range of 255:
// c1 = (0.01*255)², c2 = (0.03*255)².
const (
	c1 = 6.5025
	c2 = 58.5225
)

// ErrSizeMismatch is returned when the two images differ in size and
// resizing was not requested.
var ErrSizeMismatch = errors.New("ssim: image sizes differ")

// Options controls a comparison.
type Options struct {
	// ResizeToMatch scales the candidate to the reference's dimensions when
	// they differ, instead of failing with ErrSizeMismatch.
	ResizeToMatch bool
}

// Compare computes the mean SSIM score between a reference image and a
// candidate, both converted to grayscale first. The result is in [-1, 1],
// with 1.0 meaning structurally identical.
//
// Both images must be at least 7x7 pixels.
func Compare(ref, candidate image.Image, opts Options) (float64, error) {
	refW, refH := ref.Bounds().Dx(), ref.Bounds().Dy()
	candW, candH := candidate.Bounds().Dx(), candidate.Bounds().Dy()

	if refW != candW || refH != candH {
		if !opts.ResizeToMatch {
			return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, refW, refH, candW, candH)
		}
		candidate = imaging.Resize(candidate, refW, refH, imaging.Lanczos)
	}

	if refW < windowSize || refH < windowSize {
		return 0, fmt.Errorf("ssim: image %dx%d smaller than %dx%d window",
			refW, refH, windowSize, windowSize)
	}

	a := vision.Grayscale(ref)
	b := vision.Grayscale(candidate)

	var total float64
	var windows int
	for y := 0; y+windowSize <= refH; y++ {
		for x := 0; x+windowSize <= refW; x++ {
			total += windowScore(a, b, x, y)
			windows++
		}
	}
	return total / float64(windows), nil
}

// windowScore computes the SSIM score of one window anchored at (x, y).
func windowScore(a, b *image.Gray, x, y int) float64 {
	const n = windowSize * windowSize

	var sumA, sumB float64
	var sumAA, sumBB, sumAB float64
	for dy := 0; dy < windowSize; dy++ {
		rowA := a.Pix[a.PixOffset(x, y+dy) : a.PixOffset(x, y+dy)+windowSize]
		rowB := b.Pix[b.PixOffset(x, y+dy) : b.PixOffset(x, y+dy)+windowSize]
		for i := 0; i < windowSize; i++ {
			va := float64(rowA[i])
			vb := float64(rowB[i])
			sumA += va
			sumB += vb
			sumAA += va * va
			sumBB += vb * vb
			sumAB += va * vb
		}
	}

	muA := sumA / n
	muB := sumB / n
	varA := sumAA/n - muA*muA
	varB := sumBB/n - muB*muB
	cov := sumAB/n - muA*muB

	num := (2*muA*muB + c1) * (2*cov + c2)
	den := (muA*muA + muB*muB + c1) * (varA + varB + c2)
	return num / den
}
