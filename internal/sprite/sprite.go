// Package sprite defines the per-sprite result entity and its state
// machine. Sprites are created by the pipeline, advanced by the naming
// queue, renamed by the user, and destroyed on session reset.
package sprite

import (
	"fmt"
	"strings"

	"github.com/gnusam/sprite-splitter/internal/detect"
	"github.com/gnusam/sprite-splitter/internal/raster"
)

// State tracks a sprite through asynchronous naming.
type State int

const (
	StatePending State = iota // composited, waiting for naming
	StateNaming               // identify call in flight
	StateReady                // named (or fallback applied)
	StateError                // output could not be encoded; excluded from export
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateNaming:
		return "naming"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sprite is one extracted image plus its naming lifecycle.
type Sprite struct {
	Index     int
	SourceBox detect.Box
	Output    *raster.Raster
	// PNG is the encoded output, produced once by the pipeline and used
	// both by the naming call and by export.
	PNG []byte

	// SuggestedName comes from the naming collaborator only.
	SuggestedName string
	// UserName is set by explicit rename only, never by naming.
	UserName string

	State State
	Err   string
}

// FinalName is what the sprite exports as: user rename wins, then the
// suggestion, then the item_<index> default.
func (s *Sprite) FinalName() string {
	if n := sanitize(s.UserName); n != "" {
		return n
	}
	if n := sanitize(s.SuggestedName); n != "" {
		return n
	}
	return fmt.Sprintf("item_%d", s.Index)
}

// FileName is the per-sprite download name.
func (s *Sprite) FileName() string {
	return s.FinalName() + ".png"
}

// sanitize keeps names safe as archive entries and filenames.
func sanitize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return strings.Trim(name, ". ")
}
