package stroke

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/menta2k/sketchpad/pkg/geometry"
)

// kappa places cubic control points for a quarter circle
const kappa = 0.5522847498307936

// Render paints s onto dst in dst's own coordinate space. A single point is
// a filled dot; longer strokes are round-capped, round-joined polylines.
//
// Every dab and segment is added with the same winding, so overlapping
// pieces merge instead of cancelling out.
func Render(dst *image.RGBA, s Stroke) {
	if len(s) == 0 || dst.Rect.Empty() {
		return
	}

	// the rasterizer addresses dst.Pix from its first byte, so work on a
	// view whose bounds start at the origin
	origin := dst.Rect.Min
	view := *dst
	view.Rect = dst.Rect.Sub(origin)

	w, h := view.Rect.Dx(), view.Rect.Dy()
	clip := geometry.R(0, 0, float64(w), float64(h)).Inset(-BrushWidth, -BrushWidth)
	shift := geometry.Pt(float64(origin.X), float64(origin.Y))
	radius := BrushWidth / 2

	z := vector.NewRasterizer(w, h)
	var prev geometry.Point
	for i, p := range s {
		p = p.Sub(shift)
		if contains(clip, p) {
			addDot(z, p, radius)
		}
		if i > 0 && (contains(clip, prev) || contains(clip, p) || crosses(clip, prev, p)) {
			addSegment(z, prev, p, radius)
		}
		prev = p
	}

	z.Draw(&view, view.Rect, image.NewUniform(Color), image.Point{})
}

func addDot(z *vector.Rasterizer, c geometry.Point, r float64) {
	k := kappa * r
	cx, cy := float32(c.X), float32(c.Y)
	fr, fk := float32(r), float32(k)

	z.MoveTo(cx+fr, cy)
	z.CubeTo(cx+fr, cy+fk, cx+fk, cy+fr, cx, cy+fr)
	z.CubeTo(cx-fk, cy+fr, cx-fr, cy+fk, cx-fr, cy)
	z.CubeTo(cx-fr, cy-fk, cx-fk, cy-fr, cx, cy-fr)
	z.CubeTo(cx+fk, cy-fr, cx+fr, cy-fk, cx+fr, cy)
	z.ClosePath()
}

func addSegment(z *vector.Rasterizer, a, b geometry.Point, r float64) {
	d := b.Sub(a)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return
	}
	n := geometry.Pt(-d.Y, d.X).Mul(r / length)

	p0 := a.Sub(n)
	p1 := b.Sub(n)
	p2 := b.Add(n)
	p3 := a.Add(n)

	z.MoveTo(float32(p0.X), float32(p0.Y))
	z.LineTo(float32(p1.X), float32(p1.Y))
	z.LineTo(float32(p2.X), float32(p2.Y))
	z.LineTo(float32(p3.X), float32(p3.Y))
	z.ClosePath()
}

func contains(r geometry.Rect, p geometry.Point) bool {
	return p.X >= r.MinX() && p.X <= r.MaxX() && p.Y >= r.MinY() && p.Y <= r.MaxY()
}

// crosses is a conservative bounding-box test for segments whose endpoints
// both lie outside r
func crosses(r geometry.Rect, a, b geometry.Point) bool {
	return math.Max(a.X, b.X) >= r.MinX() && math.Min(a.X, b.X) <= r.MaxX() &&
		math.Max(a.Y, b.Y) >= r.MinY() && math.Min(a.Y, b.Y) <= r.MaxY()
}
