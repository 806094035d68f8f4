package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/sketchpad/pkg/canvas"
	"github.com/menta2k/sketchpad/pkg/geometry"
	"github.com/menta2k/sketchpad/pkg/imageio"
	"github.com/menta2k/sketchpad/pkg/types"
)

// createTestImage creates a white image with a red square in the top-left quarter
func createTestImage(width, height int) *image.RGBA {
	img := imageio.NewWhite(image.Rect(0, 0, width, height))
	for y := 0; y < height/2; y++ {
		for x := 0; x < width/2; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	return img
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"png", PNG},
		{"JPG", JPEG},
		{".jpeg", JPEG},
		{"gif", GIF},
		{"webp", WebP},
		{"bmp", BMP},
		{"tif", TIFF},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	for _, name := range []string{"json", "pdf", ""} {
		_, err := ParseFormat(name)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestBitmapRoundTrip(t *testing.T) {
	src := createTestImage(64, 64)

	for _, format := range []Format{PNG, JPEG, GIF, WebP, BMP, TIFF} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Bitmap{Format: format, Lossless: true}.Export(src)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			img, err := imageio.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, image.Pt(64, 64), img.Bounds().Size())

			r, g, b, _ := img.At(48, 48).RGBA()
			assert.Greater(t, r>>8, uint32(200))
			assert.Greater(t, g>>8, uint32(200))
			assert.Greater(t, b>>8, uint32(200))
		})
	}
}

func TestBitmapFitsToSize(t *testing.T) {
	data, err := Bitmap{Width: 300, Height: 300, Format: PNG}.Export(createTestImage(100, 50))
	require.NoError(t, err)

	img, err := imageio.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(300, 300), img.Bounds().Size())
}

func TestBitmapUnsupportedFormat(t *testing.T) {
	_, err := Bitmap{Format: "json"}.Export(createTestImage(8, 8))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewBitmap(types.ExportOptions{Format: "svg"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestBitmapSerializationFailed(t *testing.T) {
	err := Bitmap{Format: PNG}.Encode(failingWriter{}, createTestImage(8, 8))
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorContains(t, err, "disk full")
}

func TestNewBitmap(t *testing.T) {
	b, err := NewBitmap(types.ExportOptions{Width: 300, Height: 200, Format: "jpg", Quality: 80})
	require.NoError(t, err)
	assert.Equal(t, JPEG, b.Format)
	assert.Equal(t, image.Pt(300, 200), b.Size())
	assert.Equal(t, 80, b.Quality)
}

func TestPixelBufferForModel(t *testing.T) {
	buf, err := ForModel().Export(createTestImage(224, 224))
	require.NoError(t, err)

	assert.Equal(t, ModelInputSize, buf.Width)
	assert.Equal(t, ModelInputSize, buf.Height)
	assert.Equal(t, ModelInputSize*4, buf.Stride)
	assert.Len(t, buf.Pix, ModelInputSize*ModelInputSize*4)
	assert.Equal(t, BGRA, buf.Format)

	// red in BGRA order
	assert.Equal(t, []byte{0, 0, 255, 255}, buf.Pix[0:4])
	last := len(buf.Pix) - 4
	assert.Equal(t, []byte{255, 255, 255, 255}, buf.Pix[last:])
}

func TestPixelBufferRGBA(t *testing.T) {
	e := NewPixelBufferExporter(10, 10)
	e.Format = RGBA
	buf, err := e.Export(createTestImage(10, 10))
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 0, 255}, buf.Pix[0:4])
}

func TestPixelBufferImageRoundTrip(t *testing.T) {
	src := createTestImage(16, 12)
	buf, err := NewPixelBufferExporter(16, 12).Export(src)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, buf.Image().Pix)
}

func TestPixelBufferAllocationFailed(t *testing.T) {
	tests := []struct {
		name string
		e    PixelBufferExporter
	}{
		{"zero width", PixelBufferExporter{Width: 0, Height: 10}},
		{"negative height", PixelBufferExporter{Width: 10, Height: -1}},
		{"over limit", PixelBufferExporter{Width: 1000, Height: 1000, MaxBytes: 1024}},
		{"overflow", PixelBufferExporter{Width: 1 << 40, Height: 1 << 40}},
		{"unknown format", PixelBufferExporter{Width: 4, Height: 4, Format: PixelFormat(9)}},
	}
	for _, tt := range tests {
		_, err := tt.e.Export(createTestImage(4, 4))
		assert.ErrorIs(t, err, ErrAllocationFailed, tt.name)
	}
}

func TestFromCanvas(t *testing.T) {
	c := canvas.New(200, 200)
	require.NoError(t, c.Begin(geometry.Pt(100, 100)))
	require.NoError(t, c.End())

	buf, err := FromCanvas[*PixelBuffer](c, ForModel())
	require.NoError(t, err)
	assert.Equal(t, ModelInputSize, buf.Width)

	// 200x200 fits in 224x224 unscaled, so the dot sits at 112,112
	i := 112*buf.Stride + 112*4
	assert.Less(t, buf.Pix[i], byte(64))

	data, err := FromCanvas[[]byte](c, Bitmap{Format: PNG})
	require.NoError(t, err)
	img, err := imageio.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 200), img.Bounds().Size())
}

func BenchmarkPixelBufferExport(b *testing.B) {
	src := createTestImage(300, 300)
	e := ForModel()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Export(src)
	}
}

func BenchmarkBitmapPNG(b *testing.B) {
	src := createTestImage(300, 300)
	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = Bitmap{Format: PNG}.Encode(&buf, src)
	}
}
