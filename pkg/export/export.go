// Package export turns a rendered sketch into the representations its
// consumers need: encoded image bytes for storage, or a raw pixel buffer at
// the classifier's input resolution.
package export

import (
	"errors"
	"image"

	"github.com/menta2k/sketchpad/pkg/canvas"
)

var (
	// ErrUnsupportedFormat is returned for encodings that are not images
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrSerializationFailed wraps encoder failures
	ErrSerializationFailed = errors.New("serialization failed")
	// ErrAllocationFailed is returned when a pixel buffer cannot be created
	ErrAllocationFailed = errors.New("allocation failed")
)

// Exporter converts an image into a target representation of a fixed
// pixel size. Implementations hold no mutable state.
type Exporter[T any] interface {
	// Size is the pixel size the exporter produces. A non-positive axis
	// means the source size is kept.
	Size() image.Point
	Export(img image.Image) (T, error)
}

// FromCanvas renders c at the exporter's size and exports the result
func FromCanvas[T any](c *canvas.Canvas, e Exporter[T]) (T, error) {
	size := e.Size()
	if size.X <= 0 || size.Y <= 0 {
		size = c.Bounds().Size()
	}
	return e.Export(c.Export(size.X, size.Y))
}
