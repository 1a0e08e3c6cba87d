package manipulate

import (
	"image"

	"github.com/disintegration/imaging"
)

// Engine applies manipulation values to an image.
type Engine interface {
	Apply(src image.Image, values Values) (image.Image, error)
}

// ImagingEngine adjusts brightness and contrast with the imaging package.
type ImagingEngine struct{}

// Apply maps each value from [-127, 127] to a percentage in [-100, 100].
func (ImagingEngine) Apply(src image.Image, values Values) (image.Image, error) {
	out := src
	if values.Brightness != 0 {
		out = imaging.AdjustBrightness(out, percent(values.Brightness))
	}
	if values.Contrast != 0 {
		out = imaging.AdjustContrast(out, percent(values.Contrast))
	}
	if out == src {
		out = imaging.Clone(src)
	}
	return out, nil
}

func percent(v int) float64 {
	return float64(v) / MaxValue * 100
}
