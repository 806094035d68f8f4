package augment

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// BlurRadius is the fixed strength of the Blur filter
const BlurRadius = 5.0

// Blurrer performs the Gaussian blur behind the Blur filter. Results use
// the same top-down row order as their input.
type Blurrer interface {
	Blur(img image.Image, radius float64) (image.Image, error)
}

// BlurFunc adapts a function to Blurrer
type BlurFunc func(img image.Image, radius float64) (image.Image, error)

func (f BlurFunc) Blur(img image.Image, radius float64) (image.Image, error) {
	return f(img, radius)
}

// ImagingBlur blurs with disintegration/imaging, treating the radius as
// the Gaussian sigma
type ImagingBlur struct{}

func (ImagingBlur) Blur(img image.Image, radius float64) (image.Image, error) {
	return imaging.Blur(img, radius), nil
}

// BildBlur blurs with anthonynsimon/bild
type BildBlur struct{}

func (BildBlur) Blur(img image.Image, radius float64) (image.Image, error) {
	return blur.Gaussian(img, radius), nil
}
