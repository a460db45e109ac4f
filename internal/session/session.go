// Package session holds the in-memory result set of the current run:
// the user-editable sprites between processing and export. Nothing is
// persisted; reset discards everything.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gnusam/sprite-splitter/internal/config"
	"github.com/gnusam/sprite-splitter/internal/export"
	"github.com/gnusam/sprite-splitter/internal/naming"
	"github.com/gnusam/sprite-splitter/internal/pipeline"
	"github.com/gnusam/sprite-splitter/internal/raster"
	"github.com/gnusam/sprite-splitter/internal/sprite"
)

// Session owns one result set at a time. A new Process call supersedes
// the previous run; naming updates still in flight for the old run are
// recognized by generation and dropped.
type Session struct {
	mu     sync.RWMutex
	logger *zap.Logger

	generation uint64
	result     *pipeline.Result
}

// New creates an empty session.
func New(logger *zap.Logger) *Session {
	return &Session{logger: logger}
}

// Process runs the pipeline on an uploaded sheet and installs the result
// as the current set. The returned result is a detached snapshot. When a
// queue is given, naming runs asynchronously against the installed set;
// the HTTP surface observes transitions through Sprites snapshots.
func (s *Session) Process(ctx context.Context, src *raster.Raster, cfg config.Processing, queue *naming.Queue) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, src, cfg, s.logger)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation = res.Generation
	s.result = res
	s.mu.Unlock()

	// The naming consumer below mutates the installed sprites under the
	// session lock. Snapshot the result before it starts; the caller
	// reads its copy lock-free and observes later transitions through
	// Sprites/Sprite.
	snap := *res
	snap.Sprites = make([]*sprite.Sprite, len(res.Sprites))
	for i, sp := range res.Sprites {
		c := *sp
		snap.Sprites[i] = &c
	}

	if queue != nil {
		images := make([]naming.Image, 0, len(res.Sprites))
		for _, sp := range res.Sprites {
			if sp.State == sprite.StateError {
				continue
			}
			images = append(images, naming.Image{Index: sp.Index, PNG: sp.PNG})
		}

		// Naming outlives the upload request, so detach its context from
		// the request's cancellation.
		updates := queue.Run(context.WithoutCancel(ctx), res.Generation, images)
		go func() {
			for u := range updates {
				s.apply(u)
			}
		}()
	}

	return &snap, nil
}

// apply installs one naming transition, dropping stale generations.
func (s *Session) apply(u naming.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil || u.Run != s.generation {
		s.logger.Debug("dropping stale naming update",
			zap.Uint64("run", u.Run),
			zap.Uint64("current", s.generation),
			zap.Int("sprite", u.Index))
		return
	}
	if u.Index < 0 || u.Index >= len(s.result.Sprites) {
		return
	}

	sp := s.result.Sprites[u.Index]
	sp.State = u.State
	if u.State == sprite.StateReady && u.Name != "" {
		sp.SuggestedName = u.Name
	}
}

// Sprites returns a snapshot copy of the current set.
func (s *Session) Sprites() []sprite.Sprite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return nil
	}
	out := make([]sprite.Sprite, len(s.result.Sprites))
	for i, sp := range s.result.Sprites {
		out[i] = *sp
	}
	return out
}

// Sprite returns a snapshot of one sprite.
func (s *Session) Sprite(index int) (sprite.Sprite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil || index < 0 || index >= len(s.result.Sprites) {
		return sprite.Sprite{}, false
	}
	return *s.result.Sprites[index], true
}

// Rename sets the user-chosen name. The suggestion is never touched, so
// clearing the user name falls back to it.
func (s *Session) Rename(index int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil || index < 0 || index >= len(s.result.Sprites) {
		return fmt.Errorf("session: no sprite %d", index)
	}
	s.result.Sprites[index].UserName = name
	return nil
}

// Archive packs the current set for bulk download.
func (s *Session) Archive() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return nil, fmt.Errorf("session: nothing to export")
	}
	return export.Archive(s.result.Sprites)
}

// Reset discards the result set. In-flight naming for the old run keeps
// running but its updates no longer match the generation and are dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result = nil
	s.generation = 0
}
