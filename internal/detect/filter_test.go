package detect

import (
	"testing"

	"github.com/brunosoda/crop-id-fields/internal/geometry"
)

// rectContour builds a filled rectangular contour [x1,x2) x [y1,y2).
func rectContour(x1, y1, x2, y2 int) geometry.Contour {
	var c geometry.Contour
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			c = append(c, geometry.Point{X: x, Y: y})
		}
	}
	return c
}

// lineContour builds a degenerate single-row contour.
func lineContour(x1, x2, y int) geometry.Contour {
	var c geometry.Contour
	for x := x1; x < x2; x++ {
		c = append(c, geometry.Point{X: x, Y: y})
	}
	return c
}

func TestLargestQuad_AreaFilter(t *testing.T) {
	d := New(DefaultOptions())

	// 40x20 = 800 of 100x100 = 8%: below the 25% area floor.
	small := rectContour(10, 10, 50, 30)
	if _, ok := d.largestQuad([]geometry.Contour{small}, 100, 100); ok {
		t.Error("quad below the area threshold was accepted")
	}

	// 80x40 = 3200 of 100x100 = 32%: above the floor.
	large := rectContour(10, 10, 90, 50)
	cand, ok := d.largestQuad([]geometry.Contour{large}, 100, 100)
	if !ok {
		t.Fatal("quad above the area threshold was rejected")
	}
	if cand.bbox.Width != 79 || cand.bbox.Height != 39 {
		t.Errorf("candidate bbox: got %+v", cand.bbox)
	}
}

func TestLargestQuad_AspectFilter(t *testing.T) {
	d := New(DefaultOptions())

	tests := []struct {
		name    string
		contour geometry.Contour
		accept  bool
	}{
		{"square", rectContour(10, 10, 71, 71), false},
		{"near-square within band", rectContour(10, 10, 75, 71), false},
		{"landscape outside band", rectContour(10, 10, 90, 50), true},
		{"portrait outside band", rectContour(10, 10, 50, 90), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := d.largestQuad([]geometry.Contour{tt.contour}, 100, 100)
			if ok != tt.accept {
				t.Errorf("accepted=%v, want %v", ok, tt.accept)
			}
		})
	}
}

func TestLargestQuad_PicksMaxArea(t *testing.T) {
	d := New(DefaultOptions())

	smaller := rectContour(0, 0, 160, 100)
	larger := rectContour(100, 100, 280, 200)

	cand, ok := d.largestQuad([]geometry.Contour{smaller, larger}, 300, 200)
	if !ok {
		t.Fatal("no candidate accepted")
	}
	if cand.bbox.X != 100 || cand.bbox.Y != 100 {
		t.Errorf("selected bbox %+v, want the larger contour's box", cand.bbox)
	}
}

func TestLargestQuad_DegenerateRejected(t *testing.T) {
	d := New(DefaultOptions())

	// A zero-area line must be silently rejected, never panic or error out.
	if _, ok := d.largestQuad([]geometry.Contour{lineContour(0, 90, 50)}, 100, 100); ok {
		t.Error("degenerate contour was accepted")
	}
}

func TestLargestPageLike_IgnoresAreaKeepsAspect(t *testing.T) {
	d := New(DefaultOptions())

	square := rectContour(0, 0, 30, 30)
	tiny := rectContour(50, 50, 70, 60) // 4% of a 100x100 image, non-square

	cand, ok := d.largestPageLike([]geometry.Contour{square, tiny})
	if !ok {
		t.Fatal("page-like fallback found nothing")
	}
	if cand.bbox.X != 50 || cand.bbox.Y != 50 {
		t.Errorf("selected %+v, want the non-square contour's box", cand.bbox)
	}
}

func TestLargestAny_NoConstraints(t *testing.T) {
	d := New(DefaultOptions())

	square := rectContour(0, 0, 40, 40)
	smaller := rectContour(60, 60, 80, 70)

	cand, ok := d.largestAny([]geometry.Contour{smaller, square})
	if !ok {
		t.Fatal("largest-contour fallback found nothing")
	}
	// The square wins on pixel count despite its aspect ratio.
	if cand.bbox.X != 0 || cand.bbox.Y != 0 {
		t.Errorf("selected %+v, want the square's box", cand.bbox)
	}
	if cand.quad != cand.bbox.Corners() {
		t.Errorf("fallback quad %v does not match its bbox corners", cand.quad)
	}
}

func TestLargestAny_Empty(t *testing.T) {
	d := New(DefaultOptions())

	if _, ok := d.largestAny(nil); ok {
		t.Error("empty contour list produced a candidate")
	}
}
