// Package canvas composites finished strokes into a persisted raster buffer
// and renders the sketch at any requested output size.
//
// A Canvas has a single owner and its methods must be serialized by the
// caller. Snapshot is the exception: a published buffer is never written
// again (each End publishes a new one), so snapshots may be handed to and
// read from other goroutines.
package canvas

import (
	"image"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"

	"github.com/menta2k/sketchpad/internal/logger"
	"github.com/menta2k/sketchpad/pkg/geometry"
	"github.com/menta2k/sketchpad/pkg/imageio"
	"github.com/menta2k/sketchpad/pkg/stroke"
)

// Handler receives drawing notifications from a Canvas
type Handler interface {
	// StrokeStarted is called when the active stroke first moves
	StrokeStarted(c *Canvas)
	// StrokeBoundsChanged reports the area that must be redrawn
	StrokeBoundsChanged(c *Canvas, region geometry.Rect)
	// StrokeFinished is called once a stroke has been flattened
	StrokeFinished(c *Canvas)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	Started       func(c *Canvas)
	BoundsChanged func(c *Canvas, region geometry.Rect)
	Finished      func(c *Canvas)
}

func (h HandlerFuncs) StrokeStarted(c *Canvas) {
	if h.Started != nil {
		h.Started(c)
	}
}

func (h HandlerFuncs) StrokeBoundsChanged(c *Canvas, region geometry.Rect) {
	if h.BoundsChanged != nil {
		h.BoundsChanged(c, region)
	}
}

func (h HandlerFuncs) StrokeFinished(c *Canvas) {
	if h.Finished != nil {
		h.Finished(c)
	}
}

// Option configures a Canvas
type Option func(*Canvas)

// WithHandler registers the canvas event handler
func WithHandler(h Handler) Option {
	return func(c *Canvas) {
		c.handler = h
	}
}

// WithScaler sets the interpolator used when the buffer is drawn at a
// different size. The default is Catmull-Rom.
func WithScaler(s xdraw.Scaler) Option {
	return func(c *Canvas) {
		c.scaler = s
	}
}

// Canvas is a drawing surface backed by a flattened stroke buffer
type Canvas struct {
	size    image.Point
	buffer  atomic.Pointer[image.RGBA]
	capture stroke.Capture
	moved   bool
	handler Handler
	scaler  xdraw.Scaler
}

// New creates an empty canvas with the given native bounds in pixels
func New(width, height int, opts ...Option) *Canvas {
	c := &Canvas{
		size:    image.Pt(max(width, 1), max(height, 1)),
		handler: HandlerFuncs{},
		scaler:  xdraw.CatmullRom,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bounds returns the canvas's native bounds
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rectangle{Max: c.size}
}

// Resize changes the native bounds. The existing buffer is kept and drawn
// scaled to fit from now on.
func (c *Canvas) Resize(width, height int) {
	c.size = image.Pt(max(width, 1), max(height, 1))
	logger.L().Debug("canvas resized", "width", c.size.X, "height", c.size.Y)
}

// Snapshot returns the current flattened buffer, or nil when nothing has
// been drawn since creation or the last Clear. The image must not be
// modified.
func (c *Canvas) Snapshot() *image.RGBA {
	return c.buffer.Load()
}

// HasContent reports whether any stroke is flattened or in progress
func (c *Canvas) HasContent() bool {
	return c.buffer.Load() != nil || c.capture.Active()
}

// ActiveStroke returns the stroke being drawn, or nil
func (c *Canvas) ActiveStroke() stroke.Stroke {
	return c.capture.Current()
}

// Begin starts a stroke at p
func (c *Canvas) Begin(p geometry.Point) error {
	region, err := c.capture.Begin(p)
	if err != nil {
		return err
	}
	c.moved = false
	c.handler.StrokeBoundsChanged(c, region)
	return nil
}

// Extend adds raw pointer samples, possibly several coalesced ones, to the
// active stroke and returns the area to redraw.
func (c *Canvas) Extend(points ...geometry.Point) (geometry.Rect, error) {
	region, err := c.capture.Extend(points...)
	if err != nil {
		return geometry.Rect{}, err
	}
	if !c.moved {
		c.moved = true
		c.handler.StrokeStarted(c)
	}
	c.handler.StrokeBoundsChanged(c, region)
	return region, nil
}

// End finishes the active stroke and flattens it into the buffer
func (c *Canvas) End() error {
	s, err := c.capture.End()
	if err != nil {
		return err
	}
	c.flatten(s)
	c.handler.StrokeFinished(c)
	return nil
}

// Clear discards every flattened stroke
func (c *Canvas) Clear() {
	c.buffer.Store(nil)
	logger.L().Debug("canvas cleared")
}

// flatten publishes a new buffer made of white, the previous buffer and s.
// The previous buffer is read but never written.
func (c *Canvas) flatten(s stroke.Stroke) {
	previous := c.buffer.Load()
	bounds := c.Bounds()

	next := imageio.NewWhite(bounds)
	c.drawBuffer(next, previous, geometry.RectOf(bounds))
	stroke.Render(next, s)

	c.buffer.Store(next)
	logger.L().Debug("stroke flattened", "points", len(s), "width", bounds.Dx(), "height", bounds.Dy())
}

// DrawRegion renders the part of the canvas inside region: the buffer
// scaled to fit the native bounds, then the active stroke. Pixels with no
// content stay transparent so the result can be layered over a background.
func (c *Canvas) DrawRegion(region geometry.Rect) *image.RGBA {
	r := region.Image().Intersect(c.Bounds())
	dst := image.NewRGBA(r)
	if r.Empty() {
		return dst
	}

	c.drawBuffer(dst, c.buffer.Load(), geometry.RectOf(c.Bounds()))
	stroke.Render(dst, c.capture.Current())
	return dst
}

// Export renders the sketch on an opaque white image of exactly
// width x height. The buffer is scaled to fit and centered in the output
// independently of the canvas's native bounds; the active stroke, if any,
// is drawn on top in canvas coordinates. Non-positive sizes yield an empty
// image.
func (c *Canvas) Export(width, height int) *image.RGBA {
	bounds := image.Rect(0, 0, max(width, 0), max(height, 0))
	dst := imageio.NewWhite(bounds)
	if bounds.Empty() {
		return dst
	}
	c.drawBuffer(dst, c.buffer.Load(), geometry.RectOf(bounds))
	stroke.Render(dst, c.capture.Current())
	return dst
}

// drawBuffer draws buf into container using the scale-to-fit rule
func (c *Canvas) drawBuffer(dst *image.RGBA, buf *image.RGBA, container geometry.Rect) {
	if buf == nil {
		return
	}
	imageio.DrawFit(dst, buf, container, c.scaler)
}
