package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Raster holds pixels as a flat RGBA slice for cache locality.
// Layout is row-major from the top-left corner, 4 bytes per pixel,
// len(Pix) == W*H*4. Alpha is straight (not premultiplied).
type Raster struct {
	W, H int
	Pix  []uint8
}

// New allocates a fully transparent raster.
func New(w, h int) *Raster {
	return &Raster{W: w, H: h, Pix: make([]uint8, w*h*4)}
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (r *Raster) PixOffset(x, y int) int {
	return (y*r.W + x) * 4
}

// At returns the straight-alpha color at (x, y).
func (r *Raster) At(x, y int) color.NRGBA {
	i := r.PixOffset(x, y)
	return color.NRGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// Set writes the straight-alpha color at (x, y).
func (r *Raster) Set(x, y int, c color.NRGBA) {
	i := r.PixOffset(x, y)
	r.Pix[i] = c.R
	r.Pix[i+1] = c.G
	r.Pix[i+2] = c.B
	r.Pix[i+3] = c.A
}

// Alpha returns the alpha byte at (x, y) without building a color value.
func (r *Raster) Alpha(x, y int) uint8 {
	return r.Pix[r.PixOffset(x, y)+3]
}

// Clone returns an independent copy. Used to hand a raster across a
// pipeline stage boundary without aliasing the original buffer.
func (r *Raster) Clone() *Raster {
	out := &Raster{W: r.W, H: r.H, Pix: make([]uint8, len(r.Pix))}
	copy(out.Pix, r.Pix)
	return out
}

// Validate checks the buffer-length invariant.
func (r *Raster) Validate() error {
	if r.W < 0 || r.H < 0 {
		return fmt.Errorf("raster: negative dimensions %dx%d", r.W, r.H)
	}
	if len(r.Pix) != r.W*r.H*4 {
		return fmt.Errorf("raster: pix length %d, want %d for %dx%d", len(r.Pix), r.W*r.H*4, r.W, r.H)
	}
	return nil
}

// FromImage converts any decoded image to a Raster with straight alpha.
func FromImage(src image.Image) *Raster {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := New(w, h)

	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			srcOff := (b.Min.Y+y)*s.Stride + b.Min.X*4
			copy(out.Pix[y*w*4:(y+1)*w*4], s.Pix[srcOff:srcOff+w*4])
		}
	case *image.YCbCr, *image.Gray:
		// No alpha channel in the source; draw then force opaque.
		tmp := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(tmp, tmp.Bounds(), src, b.Min, draw.Src)
		copy(out.Pix, tmp.Pix)
		for i := 3; i < len(out.Pix); i += 4 {
			out.Pix[i] = 255
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				out.Set(x, y, c)
			}
		}
	}
	return out
}

// ToNRGBA copies the raster into an image.NRGBA for resampling or encoding.
func (r *Raster) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	copy(img.Pix, r.Pix)
	return img
}
