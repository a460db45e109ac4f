package compose

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/gnusam/sprite-splitter/internal/config"
	"github.com/gnusam/sprite-splitter/internal/detect"
	"github.com/gnusam/sprite-splitter/internal/raster"
)

// verbatimMargin is the transparent rim around a sprite in verbatim mode.
const verbatimMargin = 2

// Composite renders one detected box into its own output raster. The
// source is only read; every sprite owns an independent output buffer,
// so calls for different boxes may run in parallel.
func Composite(src *raster.Raster, box detect.Box, cfg config.Processing) *raster.Raster {
	if cfg.Homogenize {
		return homogenize(src, box, cfg.TargetSize, cfg.PaddingPercent)
	}
	return verbatim(src, box)
}

// verbatim copies the box pixel-for-pixel onto a canvas with a fixed
// transparent margin. No resampling.
func verbatim(src *raster.Raster, box detect.Box) *raster.Raster {
	out := raster.New(box.Width+2*verbatimMargin, box.Height+2*verbatimMargin)
	for y := 0; y < box.Height; y++ {
		srcOff := src.PixOffset(box.X, box.Y+y)
		dstOff := out.PixOffset(verbatimMargin, verbatimMargin+y)
		copy(out.Pix[dstOff:dstOff+box.Width*4], src.Pix[srcOff:srcOff+box.Width*4])
	}
	return out
}

// homogenize scales the box uniformly to fit a square canvas inside the
// configured padding and centers it. Aspect ratio is preserved; the
// sprite may shrink or grow depending on box size versus target.
func homogenize(src *raster.Raster, box detect.Box, targetSize int, paddingPercent float64) *raster.Raster {
	paddingPx := int(math.Round(float64(targetSize) * paddingPercent / 100))
	avail := targetSize - 2*paddingPx
	if avail < 1 {
		avail = 1
	}

	scale := math.Min(float64(avail)/float64(box.Width), float64(avail)/float64(box.Height))
	drawW := max(1, int(float64(box.Width)*scale+0.5))
	drawH := max(1, int(float64(box.Height)*scale+0.5))

	scaled := resample(crop(src, box), drawW, drawH)

	out := raster.New(targetSize, targetSize)
	startX := paddingPx + (avail-drawW)/2
	startY := paddingPx + (avail-drawH)/2
	for y := 0; y < drawH; y++ {
		srcOff := y * scaled.Stride
		dstOff := out.PixOffset(startX, startY+y)
		copy(out.Pix[dstOff:dstOff+drawW*4], scaled.Pix[srcOff:srcOff+drawW*4])
	}
	return out
}

// crop copies the box region into its own NRGBA image.
func crop(src *raster.Raster, box detect.Box) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, box.Width, box.Height))
	for y := 0; y < box.Height; y++ {
		srcOff := src.PixOffset(box.X, box.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+box.Width*4], src.Pix[srcOff:srcOff+box.Width*4])
	}
	return out
}

// resample rescales with CatmullRom over premultiplied alpha. Filtering
// straight alpha directly bleeds the (meaningless) RGB of transparent
// pixels into edges and leaves dark halos.
func resample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()

	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	result := image.NewNRGBA(dst.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := dst.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(dst.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(dst.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(dst.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = dst.Pix[si+3]
		}
	}
	return result
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
