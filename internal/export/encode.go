// Package export turns finished sprites into downloadable bytes: lossless
// per-sprite images, a bulk zip archive, and the CLI manifest.
package export

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/HugoSmits86/nativewebp"

	"github.com/gnusam/sprite-splitter/internal/raster"
)

// EncodingError marks a sprite whose output raster could not be encoded.
// Rare (resource exhaustion), fatal for that sprite only.
type EncodingError struct {
	Format string
	Err    error
}

func (e *EncodingError) Error() string { return fmt.Sprintf("export: encode %s: %v", e.Format, e.Err) }
func (e *EncodingError) Unwrap() error { return e.Err }

// EncodePNG encodes a raster as PNG. PNG keeps the alpha channel exactly,
// which the export path depends on.
func EncodePNG(r *raster.Raster) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.ToNRGBA()); err != nil {
		return nil, &EncodingError{Format: "png", Err: err}
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes a raster as lossless WebP, the alternate export
// format. Alpha survives the round-trip like PNG.
func EncodeWebP(r *raster.Raster) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, r.ToNRGBA(), nil); err != nil {
		return nil, &EncodingError{Format: "webp", Err: err}
	}
	return buf.Bytes(), nil
}
