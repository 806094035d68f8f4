// Package stroke turns raw pointer samples into smoothed polylines and
// rasterizes them with the fixed brush the classifier was trained on.
package stroke

import (
	"fmt"
	"image/color"

	"github.com/menta2k/sketchpad/pkg/geometry"
	"github.com/menta2k/sketchpad/pkg/types"
)

const (
	// BrushWidth is the diameter of the round brush
	BrushWidth = 5.0

	// SmoothingFactor weighs the raw sample against the previous point
	SmoothingFactor = 0.35
)

// Color is the ink color of every stroke
var Color = color.RGBA{0, 0, 0, 255}

// Stroke is an ordered polyline in drawing order
type Stroke []geometry.Point

// Bounds returns the area covered by the rendered stroke
func (s Stroke) Bounds() geometry.Rect {
	if len(s) == 0 {
		return geometry.Rect{}
	}
	return inflate(geometry.BoundingRect(s))
}

// Capture accumulates the stroke currently being drawn. The zero value is
// ready to use. It is not safe for concurrent use.
type Capture struct {
	active Stroke
}

// Active reports whether a stroke is in progress
func (c *Capture) Active() bool {
	return c.active != nil
}

// Current returns the in-progress stroke, or nil. The slice must not be
// modified.
func (c *Capture) Current() Stroke {
	return c.active
}

// Begin starts a stroke at p and returns the area to redraw
func (c *Capture) Begin(p geometry.Point) (geometry.Rect, error) {
	if c.active != nil {
		return geometry.Rect{}, fmt.Errorf("%w: a stroke is already active", types.ErrPreconditionViolation)
	}
	c.active = Stroke{p}
	return DotRect(p), nil
}

// Extend appends smoothed copies of the raw samples to the active stroke.
// The returned rectangle covers the new points plus the two before them so
// line joins at the seam are repainted.
func (c *Capture) Extend(raw ...geometry.Point) (geometry.Rect, error) {
	if c.active == nil {
		return geometry.Rect{}, fmt.Errorf("%w: no active stroke to extend", types.ErrPreconditionViolation)
	}

	for _, p := range raw {
		previous := c.active[len(c.active)-1]
		c.active = append(c.active, Smooth(previous, p))
	}

	n := min(len(raw)+2, len(c.active))
	return inflate(geometry.BoundingRect(c.active[len(c.active)-n:])), nil
}

// End finishes the active stroke and hands it over
func (c *Capture) End() (Stroke, error) {
	if c.active == nil {
		return nil, fmt.Errorf("%w: no active stroke to end", types.ErrPreconditionViolation)
	}
	s := c.active
	c.active = nil
	return s, nil
}

// Smooth damps jitter by moving only part of the way from previous to raw
func Smooth(previous, raw geometry.Point) geometry.Point {
	return previous.Lerp(raw, SmoothingFactor)
}

// DotRect is the square covered by a single brush dab at p
func DotRect(p geometry.Point) geometry.Rect {
	r := BrushWidth / 2
	return geometry.R(p.X-r, p.Y-r, BrushWidth, BrushWidth)
}

func inflate(r geometry.Rect) geometry.Rect {
	return r.Inset(-BrushWidth/2, -BrushWidth/2)
}
