package geometry

import "math"

// Point represents a 2D point or vector in world coordinates.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Box is an axis-aligned bounding box. Width and Height are never negative
// when produced by BoundingBox.
type Box struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point lies inside the box, boundary included.
// A box with zero width or height contains nothing.
func (b Box) Contains(p Point) bool {
	if b.Width == 0 || b.Height == 0 {
		return false
	}
	return p.X >= b.X && p.X <= b.X+b.Width &&
		p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// boxOf builds a normalized box spanning the given coordinate extremes. No
// coordinates yield the zero box, which contains nothing.
func boxOf(xs, ys []float64) Box {
	if len(xs) == 0 || len(ys) == 0 {
		return Box{}
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for _, x := range xs[1:] {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	for _, y := range ys[1:] {
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// distanceToSegment returns the distance from p to the closest point on the
// segment (a, b).
func distanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	if t < 0 {
		return p.Distance(a)
	}
	if t > 1 {
		return p.Distance(b)
	}
	return p.Distance(Point{X: a.X + t*ab.X, Y: a.Y + t*ab.Y})
}
