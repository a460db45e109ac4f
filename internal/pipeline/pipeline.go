// Package pipeline runs one extraction pass over an uploaded sheet:
// background keying, region detection, box merging and per-sprite
// compositing. One run is active per session at a time.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnusam/sprite-splitter/internal/background"
	"github.com/gnusam/sprite-splitter/internal/compose"
	"github.com/gnusam/sprite-splitter/internal/config"
	"github.com/gnusam/sprite-splitter/internal/detect"
	"github.com/gnusam/sprite-splitter/internal/export"
	"github.com/gnusam/sprite-splitter/internal/raster"
	"github.com/gnusam/sprite-splitter/internal/sprite"
)

// NoRegionsError reports the distinct "no sprites found" outcome. It is
// user guidance, not a crash: the usual fix is adjusting the background
// tolerance, and the estimate says what the remover keyed against.
type NoRegionsError struct {
	Background background.Estimate
}

func (e *NoRegionsError) Error() string {
	return fmt.Sprintf("pipeline: no sprites found (background %s); adjust background tolerance or disable background removal",
		e.Background.Corner)
}

// Result is the outcome of one run.
type Result struct {
	Generation uint64
	SheetW     int
	SheetH     int
	Background background.Estimate
	Sprites    []*sprite.Sprite
}

// runCounter tags every run so late naming results for a superseded run
// can be recognized and dropped.
var runCounter atomic.Uint64

// Run executes the pipeline. It takes ownership of src: background
// removal mutates the buffer in place, and nothing mutates it again once
// detection starts. Compositing is parallel across sprites; each sprite
// writes only its own output raster.
func Run(ctx context.Context, src *raster.Raster, cfg config.Processing, logger *zap.Logger) (*Result, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Generation: runCounter.Add(1),
		SheetW:     src.W,
		SheetH:     src.H,
		Background: background.EstimateBackground(src),
	}

	if cfg.RemoveBackground {
		background.Remove(src, cfg.BackgroundTolerance)
	}

	boxes := detect.MergeOverlapping(detect.FindRegions(src))
	if len(boxes) == 0 {
		return nil, &NoRegionsError{Background: res.Background}
	}

	logger.Info("regions detected",
		zap.Uint64("run", res.Generation),
		zap.Int("sprites", len(boxes)),
		zap.Int("sheet_w", src.W),
		zap.Int("sheet_h", src.H))

	res.Sprites = make([]*sprite.Sprite, len(boxes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, box := range boxes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			s := &sprite.Sprite{
				Index:     i,
				SourceBox: box,
				Output:    compose.Composite(src, box, cfg),
				State:     sprite.StatePending,
			}

			png, err := export.EncodePNG(s.Output)
			if err != nil {
				// Fatal for this sprite only; the run continues.
				s.State = sprite.StateError
				s.Err = err.Error()
				logger.Warn("sprite encode failed",
					zap.Uint64("run", res.Generation),
					zap.Int("sprite", i),
					zap.Error(err))
			} else {
				s.PNG = png
			}

			res.Sprites[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: run %d: %w", res.Generation, err)
	}

	return res, nil
}
