package stroke

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/sketchpad/pkg/geometry"
	"github.com/menta2k/sketchpad/pkg/types"
)

// createWhiteImage creates an opaque white image with the given bounds
func createWhiteImage(r image.Rectangle) *image.RGBA {
	img := image.NewRGBA(r)
	draw.Draw(img, r, image.White, image.Point{}, draw.Src)
	return img
}

func isDark(c color.RGBA) bool {
	return c.R < 64 && c.G < 64 && c.B < 64
}

func isWhite(c color.RGBA) bool {
	return c == color.RGBA{255, 255, 255, 255}
}

func TestBeginStartsSinglePointStroke(t *testing.T) {
	var c Capture
	r, err := c.Begin(geometry.Pt(10, 10))
	require.NoError(t, err)

	assert.True(t, c.Active())
	assert.Equal(t, Stroke{geometry.Pt(10, 10)}, c.Current())
	assert.Equal(t, geometry.R(7.5, 7.5, 5, 5), r)
}

func TestBeginWhileActive(t *testing.T) {
	var c Capture
	_, err := c.Begin(geometry.Pt(1, 1))
	require.NoError(t, err)

	_, err = c.Begin(geometry.Pt(2, 2))
	assert.ErrorIs(t, err, types.ErrPreconditionViolation)
	assert.Equal(t, Stroke{geometry.Pt(1, 1)}, c.Current(), "failed begin must not touch the stroke")
}

func TestEndWithoutStroke(t *testing.T) {
	var c Capture
	_, err := c.End()
	assert.ErrorIs(t, err, types.ErrPreconditionViolation)

	_, err = c.Extend(geometry.Pt(1, 1))
	assert.ErrorIs(t, err, types.ErrPreconditionViolation)
}

func TestSmoothing(t *testing.T) {
	p0 := geometry.Pt(10, 10)
	p1 := geometry.Pt(12, 11)

	var c Capture
	_, err := c.Begin(p0)
	require.NoError(t, err)
	_, err = c.Extend(p1)
	require.NoError(t, err)

	s, err := c.End()
	require.NoError(t, err)
	require.Len(t, s, 2)

	assert.Equal(t, p0, s[0], "first point is never smoothed")
	// conversions round each product separately, as Smooth does
	want := geometry.Pt(
		float64(p0.X*0.65)+float64(p1.X*0.35),
		float64(p0.Y*0.65)+float64(p1.Y*0.35),
	)
	assert.Equal(t, want, s[1])
	assert.False(t, c.Active())
}

func TestSmoothingChainsFromLastPoint(t *testing.T) {
	var c Capture
	_, _ = c.Begin(geometry.Pt(0, 0))
	_, err := c.Extend(geometry.Pt(100, 0), geometry.Pt(100, 0))
	require.NoError(t, err)

	s := c.Current()
	require.Len(t, s, 3)
	assert.InDelta(t, 35, s[1].X, 1e-9)
	assert.InDelta(t, 35+0.35*65, s[2].X, 1e-9)
}

func TestExtendRedrawRect(t *testing.T) {
	var c Capture
	_, _ = c.Begin(geometry.Pt(0, 0))
	_, _ = c.Extend(geometry.Pt(0, 0), geometry.Pt(0, 0), geometry.Pt(0, 0))

	// one new sample: covers it plus the two points before it
	r, err := c.Extend(geometry.Pt(100, 100))
	require.NoError(t, err)

	s := c.Current()
	want := geometry.BoundingRect(s[len(s)-3:]).Inset(-BrushWidth/2, -BrushWidth/2)
	assert.Equal(t, want, r)
	assert.InDelta(t, -2.5, r.MinX(), 1e-9)
	assert.InDelta(t, 35+2.5, r.MaxX(), 1e-9)
}

func TestExtendRedrawRectShortStroke(t *testing.T) {
	var c Capture
	_, _ = c.Begin(geometry.Pt(50, 50))

	// fewer points exist than n; the whole stroke is covered
	r, err := c.Extend(geometry.Pt(60, 50))
	require.NoError(t, err)
	assert.Equal(t, c.Current().Bounds(), r)
}

func TestRenderDot(t *testing.T) {
	img := createWhiteImage(image.Rect(0, 0, 20, 20))
	Render(img, Stroke{geometry.Pt(10, 10)})

	assert.True(t, isDark(img.RGBAAt(9, 9)))
	assert.True(t, isDark(img.RGBAAt(10, 10)))
	assert.True(t, isWhite(img.RGBAAt(0, 0)))
	assert.True(t, isWhite(img.RGBAAt(14, 10)))
}

func TestRenderPolylineHasRoundCaps(t *testing.T) {
	img := createWhiteImage(image.Rect(0, 0, 30, 20))
	Render(img, Stroke{geometry.Pt(5, 10), geometry.Pt(25, 10)})

	assert.True(t, isDark(img.RGBAAt(15, 9)))
	assert.True(t, isDark(img.RGBAAt(3, 9)), "cap extends past the first point")
	assert.True(t, isWhite(img.RGBAAt(15, 2)))
	assert.True(t, isWhite(img.RGBAAt(15, 17)))
}

func TestRenderOverlapsDoNotCancel(t *testing.T) {
	img := createWhiteImage(image.Rect(0, 0, 40, 40))
	// doubles back over itself
	Render(img, Stroke{geometry.Pt(5, 20), geometry.Pt(35, 20), geometry.Pt(5, 20)})

	assert.True(t, isDark(img.RGBAAt(20, 19)))
}

func TestRenderOffsetBounds(t *testing.T) {
	full := createWhiteImage(image.Rect(0, 0, 40, 40))
	s := Stroke{geometry.Pt(8, 8), geometry.Pt(30, 25)}
	Render(full, s)

	region := image.Rect(10, 10, 30, 30)
	part := createWhiteImage(region)
	Render(part, s)

	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			want, got := full.RGBAAt(x, y), part.RGBAAt(x, y)
			require.InDelta(t, want.R, got.R, 2, "pixel %d,%d", x, y)
			require.InDelta(t, want.A, got.A, 2, "pixel %d,%d", x, y)
		}
	}
}

func TestStrokeBounds(t *testing.T) {
	assert.Equal(t, geometry.Rect{}, Stroke(nil).Bounds())
	assert.Equal(t, geometry.R(-2.5, -2.5, 15, 5), Stroke{geometry.Pt(0, 0), geometry.Pt(10, 0)}.Bounds())
}

func BenchmarkRender(b *testing.B) {
	s := make(Stroke, 0, 200)
	for i := 0; i < 200; i++ {
		s = append(s, geometry.Pt(float64(i), float64(i%50)))
	}
	img := createWhiteImage(image.Rect(0, 0, 300, 300))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Render(img, s)
	}
}
