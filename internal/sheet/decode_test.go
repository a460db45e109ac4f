package sheet

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_PNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, A: 255})

	r, format, err := DecodeBytes(pngBytes(t, img))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %s, want png", format)
	}
	if r.W != 5 || r.H != 3 {
		t.Errorf("size %dx%d, want 5x3", r.W, r.H)
	}
	if got := r.At(1, 1); got.R != 200 || got.A != 255 {
		t.Errorf("pixel = %+v", got)
	}
}

func TestDecode_JPEGGetsOpaqueAlpha(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	r, format, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %s, want jpeg", format)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if r.Alpha(x, y) != 255 {
				t.Fatalf("alpha (%d,%d) = %d, want 255", x, y, r.Alpha(x, y))
			}
		}
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, _, err := DecodeBytes([]byte("not an image at all"))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
}

func TestDecode_Empty(t *testing.T) {
	_, _, err := DecodeBytes(nil)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
}
