package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/brunosoda/crop-id-fields/internal/detect"
)

// methodHues assigns each detection method a distinct overlay hue so a debug
// image immediately shows which strategy fired.
var methodHues = map[string]float64{
	detect.MethodThresholdQuad:  120, // green
	detect.MethodCannyQuad:      210, // blue
	detect.MethodPageLikeBBox:   45,  // amber
	detect.MethodLargestContour: 0,   // red
}

// MethodColor returns the overlay color associated with a detection method.
// Unknown methods map to magenta.
func MethodColor(method string) color.RGBA {
	hue, ok := methodHues[method]
	if !ok {
		hue = 300
	}
	r, g, b := colorful.Hsv(hue, 0.9, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Annotate draws a detection result onto a copy of the input image: the
// quadrilateral edges in the method's color and the bounding box in a dimmer
// shade of the same hue. The input image is not modified.
func Annotate(img image.Image, result *detect.Result) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	quadColor := MethodColor(result.Method)
	hue := methodHues[result.Method]
	r, g, b := colorful.Hsv(hue, 0.5, 0.6).RGB255()
	boxColor := color.RGBA{R: r, G: g, B: b, A: 255}

	box := result.BBox
	drawLine(out, box.X, box.Y, box.X+box.Width-1, box.Y, boxColor)
	drawLine(out, box.X+box.Width-1, box.Y, box.X+box.Width-1, box.Y+box.Height-1, boxColor)
	drawLine(out, box.X+box.Width-1, box.Y+box.Height-1, box.X, box.Y+box.Height-1, boxColor)
	drawLine(out, box.X, box.Y+box.Height-1, box.X, box.Y, boxColor)

	for i := 0; i < 4; i++ {
		p1 := result.Points[i]
		p2 := result.Points[(i+1)%4]
		drawLine(out, p1.X, p1.Y, p2.X, p2.Y, quadColor)
	}

	return out
}

// drawLine draws a straight line using Bresenham's algorithm, skipping
// pixels outside the image.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	dx := absInt(x2 - x1)
	dy := -absInt(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	x, y := x1, y1
	for {
		if (image.Point{X: x, Y: y}).In(img.Bounds()) {
			img.Set(x, y, c)
		}
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
