package watch

import (
	"context"
	"errors"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
)

func TestWatch_Tick_DeliversOnlyNewItems(t *testing.T) {
	ctx := context.Background()
	src := newScriptedSource(
		response{items: items(5, 4, 3)},
		response{items: items(8, 7, 6, 5)},
		response{items: items(8, 7, 6, 5)},
	)
	rec := &recorder{}
	w := newTestWatch(src, rec.handle)

	w.tick(ctx)
	assert.Empty(t, rec.IDs(), "first tick must only set the baseline")
	id, set := w.lastSeen()
	assert.True(t, set)
	assert.Equal(t, int64(5), id)

	w.tick(ctx)
	assert.Equal(t, []int64{6, 7, 8}, rec.IDs())
	id, _ = w.lastSeen()
	assert.Equal(t, int64(8), id)

	w.tick(ctx)
	assert.Equal(t, []int64{6, 7, 8}, rec.IDs())
	id, _ = w.lastSeen()
	assert.Equal(t, int64(8), id)
}

func TestWatch_Tick_FetchErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	src := newScriptedSource(
		response{items: items(10, 9)},
		response{err: errors.New("connection refused")},
		response{items: items(12, 11, 10)},
	)
	rec := &recorder{}
	w := newTestWatch(src, rec.handle)

	w.tick(ctx)
	require.NotPanics(t, func() { w.tick(ctx) })
	id, _ := w.lastSeen()
	assert.Equal(t, int64(10), id)
	assert.Empty(t, rec.IDs())
	assert.False(t, w.inFlight.Load())

	w.tick(ctx)
	assert.Equal(t, []int64{11, 12}, rec.IDs())
}

func TestWatch_Tick_EmptyFeed(t *testing.T) {
	ctx := context.Background()
	src := newScriptedSource(
		response{items: nil},
		response{items: items(3, 2)},
		response{items: items()},
		response{items: items(4, 3)},
	)
	rec := &recorder{}
	w := newTestWatch(src, rec.handle)

	w.tick(ctx)
	_, set := w.lastSeen()
	assert.False(t, set, "empty feed must not set a baseline")

	w.tick(ctx)
	w.tick(ctx)
	w.tick(ctx)
	assert.Equal(t, []int64{4}, rec.IDs())
}

func TestWatch_Tick_RollbackKeepsCursor(t *testing.T) {
	ctx := context.Background()
	src := newScriptedSource(
		response{items: items(10)},
		response{items: items(9, 8)},
		response{items: items(11, 10, 9)},
	)
	rec := &recorder{}
	w := newTestWatch(src, rec.handle)

	w.tick(ctx)
	w.tick(ctx)
	id, _ := w.lastSeen()
	assert.Equal(t, int64(10), id)
	assert.Empty(t, rec.IDs())

	w.tick(ctx)
	assert.Equal(t, []int64{11}, rec.IDs())
}

func TestWatch_Tick_AnomalousFeedIsSkipped(t *testing.T) {
	ctx := context.Background()
	src := newScriptedSource(
		response{items: items(5)},
		response{items: items(7, 8, 6)},
		response{items: items(7, 7)},
		response{items: items(7, 6)},
	)
	rec := &recorder{}
	w := newTestWatch(src, rec.handle)

	w.tick(ctx)
	w.tick(ctx)
	w.tick(ctx)
	id, _ := w.lastSeen()
	assert.Equal(t, int64(5), id)
	assert.Empty(t, rec.IDs())

	w.tick(ctx)
	assert.Equal(t, []int64{6, 7}, rec.IDs())
}

func TestWatch_Tick_HandlerFailuresAreIsolated(t *testing.T) {
	ctx := context.Background()
	src := newScriptedSource(
		response{items: items(1)},
		response{items: items(4, 3, 2, 1)},
	)

	var attempted []int64
	w := newTestWatch(src, func(_ context.Context, item feed.Item) error {
		attempted = append(attempted, item.ID)
		switch item.ID {
		case 2:
			panic("boom")
		case 3:
			return errors.New("handler failed")
		}
		return nil
	})

	w.tick(ctx)
	require.NotPanics(t, func() { w.tick(ctx) })

	assert.Equal(t, []int64{2, 3, 4}, attempted)
	id, _ := w.lastSeen()
	assert.Equal(t, int64(4), id)
	assert.False(t, w.inFlight.Load())
}

func TestWatch_Tick_SkipsWhileInFlight(t *testing.T) {
	src := newScriptedSource(response{items: items(1)})
	w := newTestWatch(src, (&recorder{}).handle)

	w.inFlight.Store(true)
	w.tick(context.Background())

	assert.Equal(t, 0, src.Calls())
	assert.True(t, w.inFlight.Load(), "a skipped tick must not clear the running tick's flag")
}

func TestWatch_Tick_StoppedWatchDoesNotFetch(t *testing.T) {
	src := newScriptedSource(response{items: items(1)})
	w := newTestWatch(src, (&recorder{}).handle)

	w.stop()
	w.tick(context.Background())

	assert.Equal(t, 0, src.Calls())
}

func TestWatch_Tick_NoDeliveryAfterStopDuringFetch(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	src := newScriptedSource(
		response{items: items(1)},
		response{items: items(3, 2, 1), block: release},
	)
	rec := &recorder{}
	w := newTestWatch(src, rec.handle)

	w.tick(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.tick(ctx)
	}()
	waitCall(t, src, 2)

	w.stop()
	close(release)
	<-done

	assert.Empty(t, rec.IDs())
	assert.False(t, w.inFlight.Load())
}

func TestWatch_Tick_StopFromHandlerHaltsBatch(t *testing.T) {
	ctx := context.Background()
	src := newScriptedSource(
		response{items: items(1)},
		response{items: items(4, 3, 2, 1)},
	)

	var w *watch
	var got []int64
	w = newTestWatch(src, func(_ context.Context, item feed.Item) error {
		got = append(got, item.ID)
		w.stop()
		return nil
	})

	w.tick(ctx)
	w.tick(ctx)

	assert.Equal(t, []int64{2}, got)
}

func TestWatch_Stop_WaitsForRunningHandler(t *testing.T) {
	ctx := context.Background()
	src := newScriptedSource(
		response{items: items(1)},
		response{items: items(4, 3, 2, 1)},
	)

	entered := make(chan struct{})
	release := make(chan struct{})
	rec := &recorder{}
	w := newTestWatch(src, func(ctx context.Context, item feed.Item) error {
		if item.ID == 2 {
			close(entered)
			<-release
		}
		return rec.handle(ctx, item)
	})

	w.tick(ctx)

	ticked := make(chan struct{})
	go func() {
		defer close(ticked)
		w.tick(ctx)
	}()
	<-entered

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		w.stop()
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a handler call was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-stopped
	<-ticked

	assert.Equal(t, []int64{2}, rec.IDs())
}

func TestWatch_Stop_NoHandlerCallStartsAfterReturn(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 2000; i++ {
		src := newScriptedSource(
			response{items: items(0)},
			response{items: descending(64, 0)},
		)

		var stopReturned, late atomic.Bool
		w := newTestWatch(src, func(context.Context, feed.Item) error {
			if stopReturned.Load() {
				late.Store(true)
			}
			return nil
		})
		w.tick(ctx)

		done := make(chan struct{})
		go func() {
			defer close(done)
			w.tick(ctx)
		}()
		runtime.Gosched()

		w.stop()
		stopReturned.Store(true)
		<-done

		require.False(t, late.Load(), "handler called after stop returned (run %d)", i)
	}
}

func TestWatch_Stop_FromAnotherWatchHandler(t *testing.T) {
	ctx := context.Background()
	shared := newCallers()

	other := newTestWatch(newScriptedSource(response{items: items(1)}), (&recorder{}).handle)
	other.callers = shared

	src := newScriptedSource(
		response{items: items(1)},
		response{items: items(3, 2, 1)},
	)
	rec := &recorder{}
	w := newTestWatch(src, func(ctx context.Context, item feed.Item) error {
		other.stop()
		return rec.handle(ctx, item)
	})
	w.callers = shared

	w.tick(ctx)
	w.tick(ctx)

	assert.Equal(t, []int64{2, 3}, rec.IDs())
	assert.False(t, other.active())
}

// Random newest-first snapshots whose head may move forward, stay or move back.
func TestWatch_Tick_CursorAndDeliveryInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	head := int64(100)

	src := feed.SourceFunc(func(ctx context.Context) ([]feed.Item, error) {
		switch rng.IntN(5) {
		case 0:
			return nil, errors.New("flaky")
		case 1:
			head -= int64(rng.IntN(3))
		default:
			head += int64(rng.IntN(6))
		}
		n := 1 + rng.IntN(8)
		snapshot := make([]feed.Item, 0, n)
		for id := head; id > head-int64(n); id-- {
			snapshot = append(snapshot, feed.Item{ID: id})
		}
		return snapshot, nil
	})

	rec := &recorder{}
	w := newTestWatch(src, rec.handle)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 500; i++ {
		w.tick(ctx)
		id, set := w.lastSeen()
		if !set {
			continue
		}
		require.GreaterOrEqual(t, id, prev, "cursor went backwards at tick %d", i)
		prev = id
	}

	delivered := rec.IDs()
	require.NotEmpty(t, delivered)
	for i := 1; i < len(delivered); i++ {
		require.Greater(t, delivered[i], delivered[i-1], "duplicate or out-of-order delivery at %d", i)
	}
}
