package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
	"github.com/nguyentantai21042004/sitwatch/internal/logger"
)

// watch is one polling subscription. Ticks never overlap: inFlight guards the
// fetch-diff-deliver cycle and a tick that finds it set is dropped.
//
// Every handler call happens under deliverMu after checking stopped, and stop
// takes deliverMu after setting the flag, so no call starts once stop returns.
type watch struct {
	id       string
	legacyID TimerID
	handler  Handler
	interval time.Duration

	source  feed.Source
	logger  logger.Logger
	metrics *Metrics
	limiter *semaphore.Weighted
	callers *callers

	mu     sync.Mutex
	cursor cursor

	deliverMu sync.Mutex

	inFlight atomic.Bool
	stopped  atomic.Bool
	sched    *scheduler
}

// start schedules the first tick immediately and then one per interval.
// ctx bounds fetches and handler calls; stopping the watch does not cancel it.
func (w *watch) start(ctx context.Context, newTicker TickerFunc) {
	w.sched = schedule(ctx, w.interval, newTicker, func() {
		w.tick(ctx)
	})
}

// stop halts the watch. Called from outside any handler it waits for a
// running handler call to return; called from a handler it returns at once.
func (w *watch) stop() {
	w.stopped.Store(true)
	if w.sched != nil {
		w.sched.stop()
	}

	if w.callers.has(goroutineID()) {
		return
	}
	w.deliverMu.Lock()
	w.deliverMu.Unlock()
}

func (w *watch) active() bool {
	return !w.stopped.Load()
}

func (w *watch) tick(ctx context.Context) {
	if !w.inFlight.CompareAndSwap(false, true) {
		w.logger.Debug(ctx, "Watch %s: previous fetch still running, skipping tick", w.id)
		w.metrics.tick(resultSkipped)
		return
	}
	defer w.inFlight.Store(false)

	if w.stopped.Load() {
		return
	}

	if w.limiter != nil {
		if err := w.limiter.Acquire(ctx, 1); err != nil {
			return
		}
		defer w.limiter.Release(1)
	}

	items, err := w.source.Latest(ctx)
	if err != nil {
		w.logger.Warn(ctx, "Watch %s: fetch latest failed: %v", w.id, err)
		w.metrics.tick(resultError)
		return
	}

	// Stopped while the fetch was running: the result is dropped.
	if w.stopped.Load() {
		return
	}

	w.apply(ctx, items)
}

func (w *watch) apply(ctx context.Context, items []feed.Item) {
	w.mu.Lock()
	prev := w.cursor
	w.mu.Unlock()

	fresh, next, result := diff(prev, items)
	w.metrics.tick(result.String())

	switch result {
	case outcomeBaseline:
		w.logger.Debug(ctx, "Watch %s: baseline set at id %d", w.id, next.id)
	case outcomeRollback:
		w.logger.Warn(ctx, "Watch %s: feed went back to id %d, keeping cursor at %d", w.id, items[0].ID, prev.id)
	case outcomeAnomaly:
		w.logger.Warn(ctx, "Watch %s: feed ids are not strictly descending, skipping %d items", w.id, len(items))
	case outcomeDelivered:
		w.logger.Debug(ctx, "Watch %s: %d new items after id %d", w.id, len(fresh), prev.id)
	}

	if len(fresh) > 0 {
		gid := goroutineID()
		for _, item := range fresh {
			if !w.deliverNext(ctx, gid, item) {
				break
			}
		}
	}

	w.mu.Lock()
	w.cursor = next
	w.mu.Unlock()
}

// deliverNext hands item to the handler unless the watch has been stopped.
func (w *watch) deliverNext(ctx context.Context, gid uint64, item feed.Item) bool {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	if w.stopped.Load() {
		return false
	}

	w.callers.enter(gid)
	defer w.callers.leave(gid)

	w.deliver(ctx, item)
	return true
}

func (w *watch) deliver(ctx context.Context, item feed.Item) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, "Watch %s: handler panicked on item %d: %v", w.id, item.ID, r)
			w.metrics.handlerFailed()
		}
	}()

	if err := w.handler(ctx, item); err != nil {
		w.logger.Error(ctx, "Watch %s: handler failed on item %d: %v", w.id, item.ID, err)
		w.metrics.handlerFailed()
		return
	}
	w.metrics.itemDelivered()
}
