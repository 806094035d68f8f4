package imageio

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/clone"
	xdraw "golang.org/x/image/draw"

	"github.com/menta2k/sketchpad/pkg/geometry"
)

// NewWhite returns an opaque white image covering r
func NewWhite(r image.Rectangle) *image.RGBA {
	img := image.NewRGBA(r)
	draw.Draw(img, r, image.White, image.Point{}, draw.Src)
	return img
}

// DrawFit composites src over dst, scaled to fit and centered in container.
// Sources that already have the placed size are copied without resampling.
func DrawFit(dst draw.Image, src image.Image, container geometry.Rect, scaler xdraw.Scaler) {
	if src == nil || src.Bounds().Empty() {
		return
	}
	placed := geometry.ScaleToFit(geometry.SizeOf(src.Bounds()), container).Round()
	if placed.Size() == src.Bounds().Size() {
		draw.Draw(dst, placed, src, src.Bounds().Min, draw.Over)
		return
	}
	if scaler == nil {
		scaler = xdraw.CatmullRom
	}
	scaler.Scale(dst, placed, src, src.Bounds(), xdraw.Over, nil)
}

// Fit renders src onto a fresh white image of exactly size
func Fit(src image.Image, size image.Point, scaler xdraw.Scaler) *image.RGBA {
	bounds := image.Rectangle{Max: size}
	dst := NewWhite(bounds)
	DrawFit(dst, src, geometry.RectOf(bounds), scaler)
	return dst
}

// ToRGBA returns img as an *image.RGBA with bounds starting at the origin,
// copying only when needed
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	out := clone.AsRGBA(img)
	out.Rect = out.Rect.Sub(out.Rect.Min)
	return out
}
