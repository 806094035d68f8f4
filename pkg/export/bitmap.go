package export

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/menta2k/sketchpad/pkg/imageio"
	"github.com/menta2k/sketchpad/pkg/types"
)

// Format is an image container the Bitmap exporter can write
type Format string

// Supported formats
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	WebP Format = "webp"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// DefaultQuality is used for lossy formats when no quality is given
const DefaultQuality = 90

// ParseFormat maps a format name or file extension to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "webp":
		return WebP, nil
	case "bmp":
		return BMP, nil
	case "tiff", "tif":
		return TIFF, nil
	}
	return "", fmt.Errorf("%w: %q is not an image encoding", ErrUnsupportedFormat, name)
}

// Bitmap encodes images into a compressed image container
type Bitmap struct {
	Width    int
	Height   int
	Format   Format
	Quality  int
	Lossless bool
}

// NewBitmap builds a Bitmap exporter from export options
func NewBitmap(opts types.ExportOptions) (Bitmap, error) {
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return Bitmap{}, err
	}
	return Bitmap{
		Width:    opts.Width,
		Height:   opts.Height,
		Format:   format,
		Quality:  opts.Quality,
		Lossless: opts.Lossless,
	}, nil
}

func (b Bitmap) Size() image.Point {
	return image.Pt(b.Width, b.Height)
}

// Export fits img to the exporter's size and encodes it
func (b Bitmap) Export(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes img to w. Images whose size differs from the exporter's are
// scaled to fit on a white background first.
func (b Bitmap) Encode(w io.Writer, img image.Image) error {
	if _, err := ParseFormat(string(b.Format)); err != nil {
		return err
	}
	if size := b.Size(); size.X > 0 && size.Y > 0 && img.Bounds().Size() != size {
		img = imageio.Fit(img, size, nil)
	}

	quality := b.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	var err error
	switch b.Format {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case GIF:
		err = gif.Encode(w, img, nil)
	case WebP:
		err = webp.Encode(w, img, &webp.Options{Lossless: b.Lossless, Quality: float32(quality)})
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, b.Format, err)
	}
	return nil
}
