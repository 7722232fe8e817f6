package vision

import (
	"image"

	"github.com/brunosoda/crop-id-fields/internal/geometry"
)

// minContourSize is the smallest connected component kept by contour
// extraction. Smaller components are binarization noise.
const minContourSize = 10

// findContours finds connected foreground components in a binary mask.
//
// Pixels with value >= 128 are treated as foreground. Connectivity is
// 8-connected (includes diagonals). Components are emitted in scan order
// (top-to-bottom, left-to-right by their first pixel), which keeps the
// result deterministic for identical inputs.
func findContours(mask *image.Gray) []geometry.Contour {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	visited := make([]bool, width*height)
	foreground := func(x, y int) bool {
		return mask.Pix[mask.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)] >= 128
	}

	var contours []geometry.Contour
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !foreground(x, y) || visited[y*width+x] {
				continue
			}
			contour := traceComponent(foreground, visited, x, y, width, height)
			if len(contour) >= minContourSize {
				contours = append(contours, contour)
			}
		}
	}
	return contours
}

// traceComponent collects one connected component using an iterative
// stack-based flood fill (recursion would overflow on large regions).
func traceComponent(foreground func(x, y int) bool, visited []bool, startX, startY, width, height int) geometry.Contour {
	var contour geometry.Contour
	stack := []geometry.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		idx := p.Y*width + p.X
		if visited[idx] || !foreground(p.X, p.Y) {
			continue
		}

		visited[idx] = true
		contour = append(contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, geometry.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return contour
}
