// Package geometry provides the primitive types shared by the detection
// pipelines: points, contours, quadrilaterals and axis-aligned bounding boxes,
// together with the hull and rotated-rectangle math used to derive a
// quadrilateral from a contour.
//
// # Coordinate System
//
// All coordinates are 0-based pixel coordinates with (0,0) at the top-left
// corner, X increasing rightward and Y increasing downward.
package geometry

import (
	"errors"
	"image"
	"math"
	"sort"
)

// ErrDegenerate is returned when a candidate region collapses to a point or a
// line and therefore has no usable area. Callers treat it as "not a
// candidate", never as a pipeline failure.
var ErrDegenerate = errors.New("geometry: degenerate region")

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is the set of pixels belonging to one connected foreground region of
// a binary mask. Contours are transient: pipelines build them, derive a
// quadrilateral or bounding box, and discard them.
type Contour []Point

// Quad is a quadrilateral described by exactly four corners.
//
// Corners are ordered clockwise (in screen coordinates, Y down) starting at
// the corner nearest the image origin: the corner with the smallest X+Y sum,
// ties broken by the smaller Y. For an axis-aligned rectangle this yields
// top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// Area returns the enclosed area of the quadrilateral via the shoelace
// formula. The result is independent of winding direction.
func (q Quad) Area() float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		sum += float64(q[i].X*q[j].Y - q[j].X*q[i].Y)
	}
	return math.Abs(sum) / 2
}

// Clamp constrains each corner to the image rectangle (0,0)-(imgW,imgH).
// A rotated rectangle fitted around a frame-clipped contour can have corners
// outside the image; clamping keeps the published corners inside it so the
// clipped bounding box still encloses them.
func (q Quad) Clamp(imgW, imgH int) Quad {
	var out Quad
	for i, p := range q {
		out[i] = Point{X: min(max(p.X, 0), imgW), Y: min(max(p.Y, 0), imgH)}
	}
	return out
}

// BoundingBox is an axis-aligned rectangle in pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`      // Left edge (inclusive)
	Y      int `json:"y"`      // Top edge (inclusive)
	Width  int `json:"width"`  // Horizontal extent in pixels
	Height int `json:"height"` // Vertical extent in pixels
}

// Area returns Width × Height in square pixels.
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// AspectRatio returns Width / Height. Returns +Inf for a zero-height box.
func (b BoundingBox) AspectRatio() float64 {
	if b.Height == 0 {
		return math.Inf(1)
	}
	return float64(b.Width) / float64(b.Height)
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Expand grows the box outward by dx pixels on the left and right sides and
// dy pixels on the top and bottom sides, then clips the result to the image
// rectangle (0,0)-(imgW,imgH). Negative growth is not supported; callers pass
// margins, not shrink factors.
func (b BoundingBox) Expand(dx, dy, imgW, imgH int) BoundingBox {
	x1 := b.X - dx
	y1 := b.Y - dy
	x2 := b.X + b.Width + dx
	y2 := b.Y + b.Height + dy
	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > imgW {
		x2 = imgW
	}
	if y2 > imgH {
		y2 = imgH
	}
	return BoundingBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// ToRect converts the box to a standard image.Rectangle.
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Corners returns the four corners of the box as a Quad in the canonical
// clockwise order (top-left first).
func (b BoundingBox) Corners() Quad {
	return Quad{
		{X: b.X, Y: b.Y},
		{X: b.X + b.Width, Y: b.Y},
		{X: b.X + b.Width, Y: b.Y + b.Height},
		{X: b.X, Y: b.Y + b.Height},
	}
}

// BoundsOf returns the smallest axis-aligned bounding box enclosing all the
// given points. Returns a zero box for an empty slice.
func BoundsOf(points []Point) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// IoU computes the Intersection-over-Union overlap ratio of two bounding
// boxes. The result is in [0, 1]; disjoint boxes score 0.
func IoU(a, b BoundingBox) float64 {
	ix1 := max(a.X, b.X)
	iy1 := max(a.Y, b.Y)
	ix2 := min(a.X+a.Width, b.X+b.Width)
	iy2 := min(a.Y+a.Height, b.Y+b.Height)
	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	inter := (ix2 - ix1) * (iy2 - iy1)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// MinAreaQuad fits the minimal-area rotated rectangle around a set of points
// and returns its four corners in canonical order.
//
// The implementation uses rotating calipers over the convex hull: the minimal
// enclosing rectangle always has one side collinear with a hull edge, so it
// suffices to test one orientation per edge.
//
// Returns ErrDegenerate when the points are collinear or coincident and no
// rectangle with positive area exists.
func MinAreaQuad(points []Point) (Quad, error) {
	hull := convexHull(points)
	if len(hull) < 3 {
		return Quad{}, ErrDegenerate
	}

	bestArea := math.Inf(1)
	var best [4][2]float64

	for i := 0; i < len(hull); i++ {
		j := (i + 1) % len(hull)
		ex := float64(hull[j].X - hull[i].X)
		ey := float64(hull[j].Y - hull[i].Y)
		length := math.Hypot(ex, ey)
		if length == 0 {
			continue
		}
		// Unit vectors along and perpendicular to the edge.
		ux, uy := ex/length, ey/length
		vx, vy := -uy, ux

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := float64(p.X)*ux + float64(p.Y)*uy
			pv := float64(p.X)*vx + float64(p.Y)*vy
			minU = math.Min(minU, pu)
			maxU = math.Max(maxU, pu)
			minV = math.Min(minV, pv)
			maxV = math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			best = [4][2]float64{
				{minU*ux + minV*vx, minU*uy + minV*vy},
				{maxU*ux + minV*vx, maxU*uy + minV*vy},
				{maxU*ux + maxV*vx, maxU*uy + maxV*vy},
				{minU*ux + maxV*vx, minU*uy + maxV*vy},
			}
		}
	}

	if math.IsInf(bestArea, 1) || bestArea == 0 {
		return Quad{}, ErrDegenerate
	}

	var q Quad
	for i, c := range best {
		q[i] = Point{X: int(math.Round(c[0])), Y: int(math.Round(c[1]))}
	}
	return orderQuad(q), nil
}

// orderQuad normalizes corner order: clockwise in screen coordinates,
// starting at the corner with the smallest X+Y sum (ties: smaller Y).
func orderQuad(q Quad) Quad {
	var cx, cy float64
	for _, p := range q {
		cx += float64(p.X)
		cy += float64(p.Y)
	}
	cx /= 4
	cy /= 4

	corners := q[:]
	// With Y pointing down, increasing atan2 angle sweeps clockwise on screen.
	sort.Slice(corners, func(i, j int) bool {
		ai := math.Atan2(float64(corners[i].Y)-cy, float64(corners[i].X)-cx)
		aj := math.Atan2(float64(corners[j].Y)-cy, float64(corners[j].X)-cx)
		return ai < aj
	})

	start := 0
	for i := 1; i < 4; i++ {
		si, s0 := corners[i].X+corners[i].Y, corners[start].X+corners[start].Y
		if si < s0 || (si == s0 && corners[i].Y < corners[start].Y) {
			start = i
		}
	}

	var out Quad
	for i := 0; i < 4; i++ {
		out[i] = corners[(start+i)%4]
	}
	return out
}

// convexHull computes the convex hull of a point set using Andrew's monotone
// chain algorithm. The returned hull is in counter-clockwise order (in
// mathematical coordinates) without repeating the first point.
func convexHull(points []Point) []Point {
	if len(points) < 3 {
		return nil
	}

	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}
	return hull
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
