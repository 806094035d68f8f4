package augment

import (
	"fmt"
	"strconv"
)

// Filter is one step of a cumulative augmentation. The concrete types are
// Rotate, Translate, Scale and Blur.
type Filter interface {
	fmt.Stringer
	filter()
}

// Rotate turns the image about its center. Positive degrees rotate
// clockwise on screen.
type Rotate struct {
	Degrees float64
}

// Translate moves the image by DX to the right and DY upwards
type Translate struct {
	DX float64
	DY float64
}

// Scale zooms about the center to Percent of the current size
type Scale struct {
	Percent float64
}

// Blur applies a light Gaussian blur of radius BlurRadius
type Blur struct{}

func (Rotate) filter()    {}
func (Translate) filter() {}
func (Scale) filter()     {}
func (Blur) filter()      {}

func (f Rotate) String() string {
	return "rotate(" + formatFloat(f.Degrees) + ")"
}

func (f Translate) String() string {
	return "translate(" + formatFloat(f.DX) + ", " + formatFloat(f.DY) + ")"
}

func (f Scale) String() string {
	return "scale(" + formatFloat(f.Percent) + "%)"
}

func (Blur) String() string {
	return "blur"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
