package geometry

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Affine matrices are f64.Aff3 values mapping (x, y) to
// (m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]), the convention used by
// golang.org/x/image/draw transformers.

// Identity returns the identity transform
func Identity() f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, 1, 0}
}

// Translation returns a transform moving points by (dx, dy)
func Translation(dx, dy float64) f64.Aff3 {
	return f64.Aff3{1, 0, dx, 0, 1, dy}
}

// Scaling returns a transform scaling about the origin
func Scaling(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

// Rotation returns a transform rotating about the origin. With y pointing
// down, a positive angle turns clockwise on screen.
func Rotation(radians float64) f64.Aff3 {
	sin, cos := math.Sincos(radians)
	return f64.Aff3{cos, -sin, 0, sin, cos, 0}
}

// Mul composes two transforms; b is applied first, then a.
func Mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// Chain composes transforms in application order: the first argument is
// applied first.
func Chain(ms ...f64.Aff3) f64.Aff3 {
	out := Identity()
	for _, m := range ms {
		out = Mul(m, out)
	}
	return out
}

// About conjugates m so that it acts around center instead of the origin
func About(m f64.Aff3, center Point) f64.Aff3 {
	return Chain(Translation(-center.X, -center.Y), m, Translation(center.X, center.Y))
}

// Apply maps a point through m
func Apply(m f64.Aff3, p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// TransformRect returns the bounding box of r after mapping its corners
// through m.
func TransformRect(m f64.Aff3, r Rect) Rect {
	return BoundingRect([]Point{
		Apply(m, Point{X: r.MinX(), Y: r.MinY()}),
		Apply(m, Point{X: r.MaxX(), Y: r.MinY()}),
		Apply(m, Point{X: r.MaxX(), Y: r.MaxY()}),
		Apply(m, Point{X: r.MinX(), Y: r.MaxY()}),
	})
}

// IsIdentity reports whether every coefficient of m is within eps of the
// identity transform.
func IsIdentity(m f64.Aff3, eps float64) bool {
	id := Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) > eps {
			return false
		}
	}
	return true
}

// Radians converts degrees to radians
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
