// Package sheet is the upload boundary: it turns an uploaded file into a
// pipeline-owned raster, rejecting anything that is not a decodable image.
package sheet

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "github.com/ftrvxmtrx/tga"

	"github.com/gnusam/sprite-splitter/internal/raster"
)

// DecodeError marks an unparseable upload. The pipeline never starts on
// one of these; the upload is simply rejected.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("sheet: decode: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// Decode reads an uploaded sheet (PNG, JPEG or TGA) into a Raster. The
// returned raster is exclusively owned by the caller.
func Decode(r io.Reader) (*raster.Raster, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", &DecodeError{Err: fmt.Errorf("empty %dx%d image", b.Dx(), b.Dy())}
	}

	return raster.FromImage(img), format, nil
}

// DecodeBytes is Decode over an in-memory upload.
func DecodeBytes(data []byte) (*raster.Raster, string, error) {
	return Decode(bytes.NewReader(data))
}
