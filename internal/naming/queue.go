package naming

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gnusam/sprite-splitter/internal/sprite"
)

const (
	// batchSize is the number of identify calls in flight at once.
	batchSize = 3
	// batchPause is the fixed wall-clock pause between batches. A simple
	// client-side throttle for the collaborator's rate limit, not backoff.
	batchPause = 500 * time.Millisecond
)

// Image is one sprite's encoded bytes queued for naming.
type Image struct {
	Index int
	PNG   []byte
}

// Update is a naming state transition. Updates are tagged with the run
// generation so a consumer can drop results that arrive after the run
// was superseded.
type Update struct {
	Run   uint64
	Index int
	State sprite.State
	Name  string // set when State == StateReady
}

// Queue batches sprites through the identify collaborator.
type Queue struct {
	identifier Identifier
	logger     *zap.Logger
	pause      time.Duration
}

// NewQueue builds a throttled naming queue.
func NewQueue(id Identifier, logger *zap.Logger) *Queue {
	return &Queue{identifier: id, logger: logger, pause: batchPause}
}

// Run drives the images through naming and streams updates. The channel
// is closed once every image reached StateReady. Collaborator failures
// are swallowed: the sprite gets FallbackName and still becomes Ready,
// never blocking the rest of the batch.
func (q *Queue) Run(ctx context.Context, run uint64, images []Image) <-chan Update {
	updates := make(chan Update, len(images)*2)

	go func() {
		defer close(updates)

		for start := 0; start < len(images); start += batchSize {
			end := min(start+batchSize, len(images))
			batch := images[start:end]

			for _, img := range batch {
				updates <- Update{Run: run, Index: img.Index, State: sprite.StateNaming}
			}

			var wg sync.WaitGroup
			for _, img := range batch {
				wg.Add(1)
				go func() {
					defer wg.Done()
					updates <- Update{
						Run:   run,
						Index: img.Index,
						State: sprite.StateReady,
						Name:  q.identify(ctx, img),
					}
				}()
			}
			wg.Wait()

			if end < len(images) {
				select {
				case <-time.After(q.pause):
				case <-ctx.Done():
					// Drain the rest as fallbacks so every sprite still
					// reaches a terminal state.
					for _, img := range images[end:] {
						updates <- Update{Run: run, Index: img.Index, State: sprite.StateReady, Name: FallbackName}
					}
					return
				}
			}
		}
	}()

	return updates
}

// identify wraps the collaborator call; errors never escape.
func (q *Queue) identify(ctx context.Context, img Image) string {
	name, err := q.identifier.Identify(ctx, img.PNG)
	if err != nil {
		q.logger.Warn("identify failed, using fallback",
			zap.Int("sprite", img.Index),
			zap.Error(err))
		return FallbackName
	}
	return name
}
