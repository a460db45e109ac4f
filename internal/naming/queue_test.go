package naming

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gnusam/sprite-splitter/internal/sprite"
)

// fakeIdentifier records concurrency and fails for chosen indexes.
type fakeIdentifier struct {
	mu       sync.Mutex
	inFlight int32
	peak     int32
	fail     map[int]bool
	calls    int
}

func (f *fakeIdentifier) Identify(ctx context.Context, imageBytes []byte) (string, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		old := atomic.LoadInt32(&f.peak)
		if cur <= old || atomic.CompareAndSwapInt32(&f.peak, old, cur) {
			break
		}
	}

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.calls++
	fail := f.fail[int(imageBytes[0])]
	f.mu.Unlock()

	if fail {
		return "", errors.New("collaborator down")
	}
	return fmt.Sprintf("sprite_%d", imageBytes[0]), nil
}

func testQueue(id Identifier) *Queue {
	q := NewQueue(id, zap.NewNop())
	q.pause = time.Millisecond // keep tests fast; production pause is fixed
	return q
}

func images(n int) []Image {
	out := make([]Image, n)
	for i := range out {
		out[i] = Image{Index: i, PNG: []byte{byte(i)}}
	}
	return out
}

func collect(t *testing.T, ch <-chan Update) []Update {
	t.Helper()
	var out []Update
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, u)
		case <-timeout:
			t.Fatal("queue did not finish")
		}
	}
}

func TestQueue_AllNamed(t *testing.T) {
	id := &fakeIdentifier{}
	q := testQueue(id)

	updates := collect(t, q.Run(context.Background(), 7, images(7)))

	ready := map[int]string{}
	for _, u := range updates {
		if u.Run != 7 {
			t.Fatalf("update tagged run %d, want 7", u.Run)
		}
		if u.State == sprite.StateReady {
			ready[u.Index] = u.Name
		}
	}
	if len(ready) != 7 {
		t.Fatalf("%d sprites ready, want 7", len(ready))
	}
	for i := 0; i < 7; i++ {
		want := fmt.Sprintf("sprite_%d", i)
		if ready[i] != want {
			t.Errorf("sprite %d named %q, want %q", i, ready[i], want)
		}
	}
}

func TestQueue_BatchConcurrencyCap(t *testing.T) {
	// Never more than 3 identify calls in flight.
	id := &fakeIdentifier{}
	q := testQueue(id)

	collect(t, q.Run(context.Background(), 1, images(10)))

	if id.peak > 3 {
		t.Errorf("peak concurrency %d, want <= 3", id.peak)
	}
}

func TestQueue_FailureFallsBack(t *testing.T) {
	// One failing sprite gets the fallback name and still reaches Ready;
	// nothing else in the batch is affected.
	id := &fakeIdentifier{fail: map[int]bool{1: true}}
	q := testQueue(id)

	updates := collect(t, q.Run(context.Background(), 2, images(3)))

	ready := map[int]string{}
	for _, u := range updates {
		if u.State == sprite.StateReady {
			ready[u.Index] = u.Name
		}
	}
	if ready[1] != FallbackName {
		t.Errorf("failed sprite named %q, want %q", ready[1], FallbackName)
	}
	if ready[0] != "sprite_0" || ready[2] != "sprite_2" {
		t.Errorf("healthy sprites affected: %v", ready)
	}
}

func TestQueue_NamingBeforeReadyPerSprite(t *testing.T) {
	id := &fakeIdentifier{}
	q := testQueue(id)

	updates := collect(t, q.Run(context.Background(), 3, images(5)))

	seenNaming := map[int]bool{}
	for _, u := range updates {
		switch u.State {
		case sprite.StateNaming:
			seenNaming[u.Index] = true
		case sprite.StateReady:
			if !seenNaming[u.Index] {
				t.Errorf("sprite %d ready before naming", u.Index)
			}
		}
	}
}

func TestQueue_CancelDrainsAsFallback(t *testing.T) {
	// Cancelling between batches still drives every sprite to a terminal
	// state so no consumer waits forever.
	id := &fakeIdentifier{}
	q := NewQueue(id, zap.NewNop())
	q.pause = time.Hour // force the ctx branch between batches

	ctx, cancel := context.WithCancel(context.Background())
	ch := q.Run(ctx, 4, images(5))

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	updates := collect(t, ch)
	ready := 0
	for _, u := range updates {
		if u.State == sprite.StateReady {
			ready++
		}
	}
	if ready != 5 {
		t.Errorf("%d ready updates, want 5", ready)
	}
}
