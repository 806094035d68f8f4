package export

import (
	"fmt"
	"image"
	"math"

	"github.com/menta2k/sketchpad/pkg/imageio"
)

// ModelInputSize is the classifier's square input resolution
const ModelInputSize = 224

// DefaultMaxBytes caps pixel buffer allocations
const DefaultMaxBytes = 256 << 20

// PixelFormat is the byte order of a 32-bit pixel
type PixelFormat int

const (
	// BGRA is premultiplied alpha with blue in the first byte
	BGRA PixelFormat = iota
	// RGBA is premultiplied alpha with red in the first byte
	RGBA
)

func (f PixelFormat) String() string {
	switch f {
	case BGRA:
		return "BGRA"
	case RGBA:
		return "RGBA"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// PixelBuffer is a raw 32-bit, 4-channel image
type PixelBuffer struct {
	Width  int
	Height int
	Stride int
	Format PixelFormat
	Pix    []byte
}

// Image converts the buffer back to an *image.RGBA
func (p *PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		src := p.Pix[y*p.Stride : y*p.Stride+p.Width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+p.Width*4]
		copy(dst, src)
		if p.Format == BGRA {
			swapRB(dst)
		}
	}
	return img
}

// PixelBufferExporter rasterizes images into PixelBuffers
type PixelBufferExporter struct {
	Width    int
	Height   int
	Format   PixelFormat
	MaxBytes int
}

// NewPixelBufferExporter returns a BGRA exporter of the given size
func NewPixelBufferExporter(width, height int) PixelBufferExporter {
	return PixelBufferExporter{Width: width, Height: height, Format: BGRA, MaxBytes: DefaultMaxBytes}
}

// ForModel returns the exporter producing classifier input
func ForModel() PixelBufferExporter {
	return NewPixelBufferExporter(ModelInputSize, ModelInputSize)
}

func (e PixelBufferExporter) Size() image.Point {
	return image.Pt(e.Width, e.Height)
}

// Export draws img scaled to fit on white into a new buffer
func (e PixelBufferExporter) Export(img image.Image) (*PixelBuffer, error) {
	buf, err := e.allocate()
	if err != nil {
		return nil, err
	}

	src := imageio.Fit(img, e.Size(), nil)
	for y := 0; y < buf.Height; y++ {
		row := buf.Pix[y*buf.Stride : y*buf.Stride+buf.Width*4]
		copy(row, src.Pix[y*src.Stride:])
		if buf.Format == BGRA {
			swapRB(row)
		}
	}
	return buf, nil
}

func (e PixelBufferExporter) allocate() (*PixelBuffer, error) {
	if e.Width <= 0 || e.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrAllocationFailed, e.Width, e.Height)
	}
	if e.Format != BGRA && e.Format != RGBA {
		return nil, fmt.Errorf("%w: unknown pixel format %s", ErrAllocationFailed, e.Format)
	}
	if e.Width > math.MaxInt/4/e.Height {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrAllocationFailed, e.Width, e.Height)
	}

	stride := e.Width * 4
	size := stride * e.Height
	limit := e.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if size > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrAllocationFailed, size, limit)
	}

	return &PixelBuffer{
		Width:  e.Width,
		Height: e.Height,
		Stride: stride,
		Format: e.Format,
		Pix:    make([]byte, size),
	}, nil
}

func swapRB(row []byte) {
	for i := 0; i+3 < len(row); i += 4 {
		row[i], row[i+2] = row[i+2], row[i]
	}
}
