package export

import (
	"encoding/json"
	"os"

	"github.com/gnusam/sprite-splitter/internal/detect"
	"github.com/gnusam/sprite-splitter/internal/sprite"
)

// ManifestEntry describes one extracted sprite in the CLI manifest.
type ManifestEntry struct {
	Index     int        `json:"index"`
	Name      string     `json:"name"`
	File      string     `json:"file"`
	SourceBox detect.Box `json:"source_box"`
	State     string     `json:"state"`
}

// WriteManifest writes manifest.json next to the extracted sprites.
func WriteManifest(path string, sprites []*sprite.Sprite) error {
	entries := make([]ManifestEntry, len(sprites))
	for i, s := range sprites {
		entries[i] = ManifestEntry{
			Index:     s.Index,
			Name:      s.FinalName(),
			File:      s.FileName(),
			SourceBox: s.SourceBox,
			State:     s.State.String(),
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
