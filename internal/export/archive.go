package export

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/gnusam/sprite-splitter/internal/sprite"
)

// Archive packs every exportable sprite into a zip, one <finalName>.png
// entry per sprite, entirely in memory. Sprites in the error state are
// skipped. Duplicate names get a numeric suffix so no entry is silently
// overwritten.
func Archive(sprites []*sprite.Sprite) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	used := make(map[string]bool)
	for _, s := range sprites {
		if s.State == sprite.StateError || len(s.PNG) == 0 {
			continue
		}

		// The numeric suffix itself can collide with a user-chosen name
		// (a, a, a_1), so candidates loop until one is free.
		name := s.FinalName()
		for i := 1; used[name]; i++ {
			name = fmt.Sprintf("%s_%d", s.FinalName(), i)
		}
		used[name] = true

		w, err := zw.Create(name + ".png")
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("export: archive entry %s: %w", name, err)
		}
		if _, err := w.Write(s.PNG); err != nil {
			zw.Close()
			return nil, fmt.Errorf("export: archive write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export: archive close: %w", err)
	}
	return buf.Bytes(), nil
}
