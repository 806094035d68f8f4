// Package augment multiplies one sketch into a family of varied images by
// applying a cumulative, ordered list of geometric and blur filters.
//
// Every emitted image has the same fixed size: after each filter the
// transformed content is scaled to fit and centered on a fresh white canvas
// of the working size.
package augment

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/menta2k/sketchpad/internal/logger"
	"github.com/menta2k/sketchpad/pkg/geometry"
	"github.com/menta2k/sketchpad/pkg/imageio"
)

// DefaultImageSize is the side of the square working canvas
const DefaultImageSize = 250

// ErrFilterFailed reports that an image primitive could not produce a result
var ErrFilterFailed = errors.New("filter failed")

// identityEpsilon absorbs floating point noise such as sin(2π) when
// deciding that a transform moves nothing
const identityEpsilon = 1e-9

// Option configures Apply and sessions
type Option func(*options)

type options struct {
	size    image.Point
	blurrer Blurrer
	interp  xdraw.Interpolator
	scaler  xdraw.Scaler
}

func defaultOptions() options {
	return options{
		size:    image.Pt(DefaultImageSize, DefaultImageSize),
		blurrer: ImagingBlur{},
		interp:  xdraw.BiLinear,
		scaler:  xdraw.CatmullRom,
	}
}

// WithImageSize sets the working and output size
func WithImageSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.size = image.Pt(width, height)
		}
	}
}

// WithBlurrer replaces the blur backend
func WithBlurrer(b Blurrer) Option {
	return func(o *options) {
		if b != nil {
			o.blurrer = b
		}
	}
}

// WithInterpolator sets the resampler used by rotate, translate and scale
func WithInterpolator(i xdraw.Interpolator) Option {
	return func(o *options) {
		if i != nil {
			o.interp = i
		}
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Apply runs filters over initial in order, each consuming the previous
// output, and returns every intermediate image. On failure the images
// produced so far are returned with the error.
func Apply(initial image.Image, filters []Filter, opts ...Option) ([]*image.RGBA, error) {
	if initial == nil {
		return nil, fmt.Errorf("%w: no initial image", ErrFilterFailed)
	}
	e := engine{opts: newOptions(opts)}

	out := make([]*image.RGBA, 0, len(filters))
	var current image.Image = initial
	for i, f := range filters {
		next, err := e.step(current, f)
		if err != nil {
			return out, fmt.Errorf("step %d %s: %w", i, f, err)
		}
		out = append(out, next)
		current = next
	}
	return out, nil
}

type engine struct {
	opts options
}

// step applies one filter and recenters the result on the working canvas.
// Panics raised by image primitives are reported as ErrFilterFailed.
func (e engine) step(src image.Image, f Filter) (out *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrFilterFailed, r)
		}
	}()

	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty source image", ErrFilterFailed)
	}
	content, err := e.transform(src, f)
	if err != nil {
		return nil, err
	}
	if content == nil || content.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s produced no image", ErrFilterFailed, f)
	}

	logger.L().Debug("filter applied", "filter", f.String(),
		"width", content.Bounds().Dx(), "height", content.Bounds().Dy())
	return imageio.Fit(content, e.opts.size, e.opts.scaler), nil
}

func (e engine) transform(src image.Image, f Filter) (image.Image, error) {
	w, h := float64(e.opts.size.X), float64(e.opts.size.Y)
	center := geometry.Pt(w/2, h/2)

	switch f := f.(type) {
	case Rotate:
		return e.affine(src, geometry.About(geometry.Rotation(geometry.Radians(f.Degrees)), center), true), nil
	case Translate:
		return e.affine(src, geometry.Translation(f.DX, -f.DY), false), nil
	case Scale:
		k := f.Percent / 100
		if k <= 0 {
			return imageio.NewWhite(image.Rectangle{Max: e.opts.size}), nil
		}
		return e.affine(src, geometry.About(geometry.Scaling(k, k), center), false), nil
	case Blur:
		return e.blur(src)
	case nil:
		return nil, fmt.Errorf("%w: nil filter", ErrFilterFailed)
	default:
		return nil, fmt.Errorf("%w: unknown filter %T", ErrFilterFailed, f)
	}
}

// affine stretches src over the working canvas and maps it through op.
// With grow set, the output is enlarged to the transformed canvas's
// bounding box so corners are not clipped.
func (e engine) affine(src image.Image, op f64.Aff3, grow bool) image.Image {
	sb := src.Bounds()
	frame := geometry.R(0, 0, float64(e.opts.size.X), float64(e.opts.size.Y))

	m := geometry.Chain(
		geometry.Translation(-float64(sb.Min.X), -float64(sb.Min.Y)),
		geometry.Scaling(frame.Size.Width/float64(sb.Dx()), frame.Size.Height/float64(sb.Dy())),
		op,
	)
	out := image.Rectangle{Max: e.opts.size}
	if grow {
		bb := geometry.TransformRect(op, frame)
		m = geometry.Mul(geometry.Translation(-bb.MinX(), -bb.MinY()), m)
		out = image.Rectangle{Max: bb.Size.Pixels()}
	}

	// a transform that only undoes the source's origin offset moves nothing
	rel := geometry.Mul(geometry.Translation(float64(sb.Min.X), float64(sb.Min.Y)), m)
	if out.Size() == sb.Size() && geometry.IsIdentity(rel, identityEpsilon) {
		return src
	}

	dst := imageio.NewWhite(out)
	e.opts.interp.Transform(dst, m, src, sb, xdraw.Over, nil)
	return dst
}

// blur runs the blur backend. The result may differ in size from its
// input, so its own bounds are what gets fitted afterwards.
func (e engine) blur(src image.Image) (image.Image, error) {
	img, err := e.opts.blurrer.Blur(src, BlurRadius)
	if err != nil {
		return nil, fmt.Errorf("%w: blur: %w", ErrFilterFailed, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: blur returned no image", ErrFilterFailed)
	}
	return imageio.ToRGBA(img), nil
}
