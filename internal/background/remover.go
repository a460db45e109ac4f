package background

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gnusam/sprite-splitter/internal/raster"
)

// Remove keys out the sheet background in place by zeroing the alpha of
// every pixel within tolerance of the reference color at (0,0).
//
// Tolerance is compared against the raw Euclidean RGB distance on the
// 0-255 channel scale (max ~441), not a normalized percentage. The UI
// labels it 0-100; keep the raw comparison, since rescaling would change
// user-visible keying.
func Remove(r *raster.Raster, tolerance float64) {
	if r.W == 0 || r.H == 0 {
		return
	}
	if r.Pix[3] == 0 {
		// Corner already transparent: source is pre-keyed, leave it alone.
		return
	}

	ref := pixelColor(r, 0)
	for i := 0; i < len(r.Pix); i += 4 {
		// DistanceRgb works on [0,1] channels; scale back to channel units.
		if pixelColor(r, i).DistanceRgb(ref)*255 <= tolerance {
			r.Pix[i+3] = 0
		}
	}
}

func pixelColor(r *raster.Raster, i int) colorful.Color {
	return colorful.Color{
		R: float64(r.Pix[i]) / 255,
		G: float64(r.Pix[i+1]) / 255,
		B: float64(r.Pix[i+2]) / 255,
	}
}
