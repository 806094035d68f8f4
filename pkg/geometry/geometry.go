// Package geometry holds the small amount of plane geometry shared by the
// canvas and the augmentation engine: points, sizes, rectangles, the
// scale-to-fit placement rule and affine transform composition.
package geometry

import (
	"image"
	"math"
)

// Point is a real-valued coordinate in a top-left-origin space
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by k
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Lerp interpolates between p and q; t=0 yields p, t=1 yields q. Each
// product is rounded on its own (the conversions forbid fused multiply-add)
// so results are identical on every architecture.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: float64(p.X*(1-t)) + float64(q.X*t),
		Y: float64(p.Y*(1-t)) + float64(q.Y*t),
	}
}

// Size is a real-valued width and height
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Sz is shorthand for Size{Width: w, Height: h}
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// SizeOf returns the size of an integer rectangle
func SizeOf(r image.Rectangle) Size {
	return Size{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

// Empty reports whether either dimension is not positive
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Pixels rounds the size to whole pixels. Values within 1e-6 of an integer
// snap to it so that float noise from transforms does not add a pixel.
func (s Size) Pixels() image.Point {
	return image.Point{X: snapCeil(s.Width), Y: snapCeil(s.Height)}
}

func snapCeil(v float64) int {
	if r := math.Round(v); math.Abs(v-r) < 1e-6 {
		return int(r)
	}
	return int(math.Ceil(v))
}

// Rect is an axis-aligned rectangle given by its origin and size
type Rect struct {
	Origin Point `json:"origin" yaml:"origin"`
	Size   Size  `json:"size" yaml:"size"`
}

// R builds a Rect from its origin and dimensions
func R(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// RectOf converts an integer rectangle
func RectOf(r image.Rectangle) Rect {
	return R(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}

func (r Rect) MinX() float64 { return r.Origin.X }
func (r Rect) MinY() float64 { return r.Origin.Y }
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// Center returns the midpoint of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.Origin.X + r.Size.Width/2, Y: r.Origin.Y + r.Size.Height/2}
}

// IsZero reports whether r is the zero rectangle
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Inset shrinks the rectangle by dx on the left and right and dy on the
// top and bottom. Negative values grow it.
func (r Rect) Inset(dx, dy float64) Rect {
	return R(r.Origin.X+dx, r.Origin.Y+dy, r.Size.Width-2*dx, r.Size.Height-2*dy)
}

// Union returns the smallest rectangle containing both r and s. A zero
// rectangle is treated as empty.
func (r Rect) Union(s Rect) Rect {
	if r.IsZero() {
		return s
	}
	if s.IsZero() {
		return r
	}
	minX := math.Min(r.MinX(), s.MinX())
	minY := math.Min(r.MinY(), s.MinY())
	maxX := math.Max(r.MaxX(), s.MaxX())
	maxY := math.Max(r.MaxY(), s.MaxY())
	return R(minX, minY, maxX-minX, maxY-minY)
}

// Image returns the smallest integer rectangle covering r
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.MinX())), int(math.Floor(r.MinY())),
		int(math.Ceil(r.MaxX())), int(math.Ceil(r.MaxY())),
	)
}

// Round returns r with every edge rounded to the nearest pixel
func (r Rect) Round() image.Rectangle {
	return image.Rect(
		int(math.Round(r.MinX())), int(math.Round(r.MinY())),
		int(math.Round(r.MaxX())), int(math.Round(r.MaxY())),
	)
}

// BoundingRect returns the smallest rectangle containing every point.
// It returns the zero Rect for an empty slice.
func BoundingRect(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return R(minX, minY, maxX-minX, maxY-minY)
}

// ScaleToFit places content of the given size inside container. Content
// that already has the container's size is returned as the container itself.
// Content larger than the container on either axis is shrunk uniformly until
// it fits; content that fits is never enlarged. The result is centered.
func ScaleToFit(size Size, container Rect) Rect {
	if size == container.Size {
		return container
	}

	scale := 1.0
	if size.Width > container.Size.Width || size.Height > container.Size.Height {
		scaleX := container.Size.Width / size.Width
		scaleY := container.Size.Height / size.Height
		scale = math.Min(scaleX, scaleY)
	}

	w := size.Width * scale
	h := size.Height * scale
	return R(
		container.Origin.X+(container.Size.Width-w)/2,
		container.Origin.Y+(container.Size.Height-h)/2,
		w, h,
	)
}
