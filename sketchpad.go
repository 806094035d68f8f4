// Package sketchpad captures hand-drawn sketches and turns them into model
// inputs and training data.
//
// A sketch is drawn on a canvas.Canvas as a series of strokes. The canvas
// can be exported as an encoded bitmap, as a raw pixel buffer sized for a
// classifier, or fed to the augmentation engine, which derives a sequence of
// rotated, shifted, scaled and blurred variants from a single drawing.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/menta2k/sketchpad"
//		"github.com/menta2k/sketchpad/pkg/augment"
//		"github.com/menta2k/sketchpad/pkg/geometry"
//	)
//
//	func main() {
//		pad := sketchpad.New(300, 300)
//
//		// a stroke is a begin, any number of moves and an end
//		if err := pad.Draw(geometry.Pt(40, 40), geometry.Pt(260, 260)); err != nil {
//			log.Fatal(err)
//		}
//
//		if err := pad.Save("sketch.png", sketchpad.DefaultExportOptions()); err != nil {
//			log.Fatal(err)
//		}
//
//		variants, err := pad.Augment([]augment.Filter{
//			augment.Rotate{Degrees: 15},
//			augment.Blur{},
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("%d variants", len(variants))
//	}
//
// The package is a thin facade over its components:
//
//   - canvas (pkg/canvas): stroke capture, flattening and export
//   - export (pkg/export): bitmap encoders and classifier pixel buffers
//   - augment (pkg/augment): the filter chain and its asynchronous session
//   - prediction (pkg/prediction): sketch classification via a vision model
//   - samples (pkg/samples): labelled training sample collection
package sketchpad

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/menta2k/sketchpad/internal/logger"
	"github.com/menta2k/sketchpad/pkg/augment"
	"github.com/menta2k/sketchpad/pkg/canvas"
	"github.com/menta2k/sketchpad/pkg/client"
	"github.com/menta2k/sketchpad/pkg/export"
	"github.com/menta2k/sketchpad/pkg/geometry"
	"github.com/menta2k/sketchpad/pkg/prediction"
	"github.com/menta2k/sketchpad/pkg/types"
)

// Version of the sketchpad library
const Version = "1.0.0"

// ErrNoClassifier is returned by Predict when no classifier was configured
var ErrNoClassifier = errors.New("no classifier configured")

// SetLogger installs l as the logger for every sketchpad package. The
// library is silent until this is called.
func SetLogger(l *slog.Logger) {
	logger.Set(l)
}

// DefaultExportOptions returns PNG export options at the canvas sample size
func DefaultExportOptions() types.ExportOptions {
	return types.ExportOptions{
		Width:   300,
		Height:  300,
		Format:  string(export.PNG),
		Quality: export.DefaultQuality,
	}
}

// Option configures a Sketchpad
type Option func(*Sketchpad)

// WithCanvasOptions passes options to the underlying canvas
func WithCanvasOptions(opts ...canvas.Option) Option {
	return func(s *Sketchpad) {
		s.canvasOpts = append(s.canvasOpts, opts...)
	}
}

// WithAugmentOptions sets the options used by Augment and NewAugmentSession
func WithAugmentOptions(opts ...augment.Option) Option {
	return func(s *Sketchpad) {
		s.augmentOpts = append(s.augmentOpts, opts...)
	}
}

// WithClassifier enables Predict using model on the given backend
func WithClassifier(c client.Classifier, model string, opts ...prediction.Option) Option {
	return func(s *Sketchpad) {
		s.predictor = prediction.NewPredictor(c, model, opts...)
	}
}

// Sketchpad bundles a canvas with the operations commonly run on it
type Sketchpad struct {
	canvas      *canvas.Canvas
	canvasOpts  []canvas.Option
	augmentOpts []augment.Option
	predictor   *prediction.Predictor
}

// New creates a sketchpad with an empty width x height canvas
func New(width, height int, opts ...Option) *Sketchpad {
	s := &Sketchpad{}
	for _, opt := range opts {
		opt(s)
	}
	s.canvas = canvas.New(width, height, s.canvasOpts...)
	return s
}

// Canvas returns the underlying canvas for pointer-level drawing
func (s *Sketchpad) Canvas() *canvas.Canvas {
	return s.canvas
}

// Draw adds one complete stroke through points
func (s *Sketchpad) Draw(points ...geometry.Point) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: a stroke needs at least one point", types.ErrPreconditionViolation)
	}
	if err := s.canvas.Begin(points[0]); err != nil {
		return err
	}
	if len(points) > 1 {
		if _, err := s.canvas.Extend(points[1:]...); err != nil {
			return err
		}
	}
	return s.canvas.End()
}

// Clear erases the sketch
func (s *Sketchpad) Clear() {
	s.canvas.Clear()
}

// Export renders the sketch on white at width x height
func (s *Sketchpad) Export(width, height int) *image.RGBA {
	return s.canvas.Export(width, height)
}

// Encode renders and encodes the sketch according to opts
func (s *Sketchpad) Encode(opts types.ExportOptions) ([]byte, error) {
	b, err := export.NewBitmap(opts)
	if err != nil {
		return nil, err
	}
	return export.FromCanvas[[]byte](s.canvas, b)
}

// Save encodes the sketch according to opts and writes it to path
func (s *Sketchpad) Save(path string, opts types.ExportOptions) error {
	data, err := s.Encode(opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ModelInput exports the sketch as a classifier input buffer
func (s *Sketchpad) ModelInput() (*export.PixelBuffer, error) {
	return export.FromCanvas[*export.PixelBuffer](s.canvas, export.ForModel())
}

// Augment runs filters over the sketch and returns every intermediate image
func (s *Sketchpad) Augment(filters []augment.Filter) ([]*image.RGBA, error) {
	b := s.canvas.Bounds()
	return augment.Apply(s.canvas.Export(b.Dx(), b.Dy()), filters, s.augmentOpts...)
}

// NewAugmentSession returns an idle session over filters. Start it with the
// image returned by Export.
func (s *Sketchpad) NewAugmentSession(filters []augment.Filter) *augment.Session {
	return augment.NewSession(filters, s.augmentOpts...)
}

// Predict classifies the sketch
func (s *Sketchpad) Predict(ctx context.Context) (*types.Prediction, error) {
	if s.predictor == nil {
		return nil, ErrNoClassifier
	}
	return s.predictor.Predict(ctx, s.canvas)
}
