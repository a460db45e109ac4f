package background

import (
	"github.com/cenkalti/dominantcolor"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gnusam/sprite-splitter/internal/raster"
)

// Estimate describes the probable background of a sheet. It backs the
// "no sprites found, adjust tolerance" guidance and the sheet stats shown
// before a run.
type Estimate struct {
	// Corner is the reference color actually used by Remove (pixel 0,0).
	Corner string `json:"corner"`
	// Dominant is the most common color over the whole sheet.
	Dominant string `json:"dominant"`
	// CornerIsDominant is false when the (0,0) reference looks unlike the
	// bulk of the sheet, a hint that keying from the corner may misfire.
	CornerIsDominant bool `json:"corner_is_dominant"`
}

// cornerMatchDistance is the raw RGB distance under which the corner and
// dominant colors are considered the same background.
const cornerMatchDistance = 30.0

// EstimateBackground inspects a sheet and reports its probable background.
func EstimateBackground(r *raster.Raster) Estimate {
	if r.W == 0 || r.H == 0 {
		return Estimate{}
	}

	dom := dominantcolor.Find(r.ToNRGBA())
	domC := colorful.Color{R: float64(dom.R) / 255, G: float64(dom.G) / 255, B: float64(dom.B) / 255}
	corner := pixelColor(r, 0)

	return Estimate{
		Corner:           corner.Hex(),
		Dominant:         domC.Hex(),
		CornerIsDominant: corner.DistanceRgb(domC)*255 <= cornerMatchDistance,
	}
}
