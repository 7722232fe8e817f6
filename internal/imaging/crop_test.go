package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/brunosoda/crop-id-fields/internal/geometry"
)

func testImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	return img
}

func TestCropBox(t *testing.T) {
	img := testImage(100, 80)

	cropped, err := CropBox(img, geometry.BoundingBox{X: 10, Y: 20, Width: 30, Height: 40})
	if err != nil {
		t.Fatalf("CropBox failed: %v", err)
	}

	if cropped.Bounds().Dx() != 30 || cropped.Bounds().Dy() != 40 {
		t.Errorf("cropped size: got %dx%d, want 30x40",
			cropped.Bounds().Dx(), cropped.Bounds().Dy())
	}

	// The top-left of the crop is pixel (10,20) of the source.
	r, g, _, _ := cropped.At(cropped.Bounds().Min.X, cropped.Bounds().Min.Y).RGBA()
	if uint8(r>>8) != 10 || uint8(g>>8) != 20 {
		t.Errorf("crop origin pixel: got (%d,%d), want (10,20)", r>>8, g>>8)
	}
}

func TestCropBox_Invalid(t *testing.T) {
	img := testImage(100, 80)

	tests := []struct {
		name string
		box  geometry.BoundingBox
	}{
		{"empty region", geometry.BoundingBox{X: 10, Y: 10, Width: 0, Height: 5}},
		{"outside bounds", geometry.BoundingBox{X: 90, Y: 70, Width: 30, Height: 30}},
		{"negative origin", geometry.BoundingBox{X: -5, Y: 0, Width: 10, Height: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropBox(img, tt.box); err == nil {
				t.Errorf("box %+v accepted, want error", tt.box)
			}
		})
	}
}

func TestCropModel_Region(t *testing.T) {
	model := CropModel{Name: "front", Left: 0.14, Right: 0.71, Top: 0.35, Bottom: 0.47}

	box, err := model.Region(1000, 800)
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}

	want := geometry.BoundingBox{X: 140, Y: 280, Width: 570, Height: 96}
	if box != want {
		t.Errorf("region: got %+v, want %+v", box, want)
	}
}

func TestCropModel_NormalizesInvertedEdges(t *testing.T) {
	// Right < Left must not fail; edges are reordered before cropping.
	model := CropModel{Name: "swapped", Left: 0.7, Right: 0.2, Top: 0.1, Bottom: 0.5}

	box, err := model.Region(100, 100)
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if box.X != 20 || box.Width != 50 {
		t.Errorf("region: got %+v, want x=20 width=50", box)
	}
}

func TestCropModel_EmptyRegion(t *testing.T) {
	model := CropModel{Name: "line", Left: 0.5, Right: 0.5, Top: 0.1, Bottom: 0.9}

	if _, err := model.Region(100, 100); err == nil {
		t.Error("zero-width model accepted, want error")
	}
}

func TestCropModel_Apply(t *testing.T) {
	img := testImage(200, 100)
	model := CropModel{Name: "center-band", Left: 0.25, Right: 0.75, Top: 0.2, Bottom: 0.8}

	cropped, err := model.Apply(img)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if cropped.Bounds().Dx() != 100 || cropped.Bounds().Dy() != 60 {
		t.Errorf("cropped size: got %dx%d, want 100x60",
			cropped.Bounds().Dx(), cropped.Bounds().Dy())
	}
}
