package vision

import "image"

// otsuLevel computes the global binarization threshold that maximizes the
// between-class variance of the grayscale histogram (Otsu's method).
//
// For an image whose histogram has no separable classes (e.g. a uniform
// image) every threshold scores zero and the lowest one is returned, which
// downstream binarization turns into an empty foreground mask.
func otsuLevel(src *image.Gray) uint8 {
	var hist [256]int
	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := src.Pix[src.PixOffset(bounds.Min.X, y) : src.PixOffset(bounds.Min.X, y)+bounds.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}

	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	var sum float64
	for v, n := range hist {
		sum += float64(v) * float64(n)
	}

	var sumB, wB float64
	var bestVar float64
	var level uint8

	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])

		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			level = uint8(t + 1)
		}
	}

	return level
}
