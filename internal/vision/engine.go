package vision

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	"github.com/brunosoda/crop-id-fields/internal/geometry"
)

// bildEngine implements Engine on top of the bild image-processing library,
// with contour extraction and edge detection implemented directly on
// image.Gray masks.
type bildEngine struct{}

func (e *bildEngine) Threshold(src *image.Gray) *image.Gray {
	level := otsuLevel(src)
	mask := segment.Threshold(src, level)
	// segment.Threshold marks pixels >= level as white; the pipelines want the
	// opposite polarity so darker document regions become foreground.
	out := image.NewGray(mask.Bounds())
	for i, v := range mask.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

func (e *bildEngine) Close(mask *image.Gray, size int) *image.Gray {
	if size <= 0 {
		return cloneGray(mask)
	}
	radius := float64(size)
	dilated := effect.Dilate(mask, radius)
	eroded := effect.Erode(dilated, radius)
	return binarizeRGBA(eroded)
}

func (e *bildEngine) Contours(mask *image.Gray) []geometry.Contour {
	return findContours(mask)
}

func (e *bildEngine) ApproxQuad(c geometry.Contour) (geometry.Quad, error) {
	return geometry.MinAreaQuad(c)
}

func (e *bildEngine) Edges(src *image.Gray, low, high uint8) *image.Gray {
	return cannyEdges(src, low, high)
}

// cloneGray returns a copy of a grayscale image normalized to a zero origin.
func cloneGray(src *image.Gray) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	copy(out.Pix, src.Pix)
	return out
}

// binarizeRGBA collapses an RGBA mask produced by bild's morphology back to a
// strict 0/255 grayscale mask. Dilate and Erode operate per channel, so the
// red channel of a binary input carries the full signal.
func binarizeRGBA(src *image.RGBA) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := src.Pix[src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)]
			if v >= 128 {
				out.Pix[out.PixOffset(x, y)] = 255
			}
		}
	}
	return out
}
