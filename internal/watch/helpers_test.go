package watch

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
	"github.com/nguyentantai21042004/sitwatch/internal/logger"
)

// items builds a newest-first snapshot from ids.
func items(ids ...int64) []feed.Item {
	out := make([]feed.Item, len(ids))
	for i, id := range ids {
		out[i] = feed.Item{ID: id}
	}
	return out
}

// descending returns the items from..to, newest first.
func descending(from, to int64) []feed.Item {
	out := make([]feed.Item, 0, from-to+1)
	for id := from; id >= to; id-- {
		out = append(out, feed.Item{ID: id})
	}
	return out
}

type response struct {
	items []feed.Item
	err   error
	block chan struct{} // when set, Latest waits for it to close
}

// scriptedSource replays responses in order and repeats the last one.
type scriptedSource struct {
	mu        sync.Mutex
	responses []response
	calls     int
	running   int
	maxActive int
	entered   chan int
}

func newScriptedSource(responses ...response) *scriptedSource {
	return &scriptedSource{
		responses: responses,
		entered:   make(chan int, 64),
	}
}

func (s *scriptedSource) Latest(ctx context.Context) ([]feed.Item, error) {
	s.mu.Lock()
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	s.running++
	if s.running > s.maxActive {
		s.maxActive = s.running
	}
	resp := s.responses[idx]
	call := s.calls
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running--
		s.mu.Unlock()
	}()

	s.entered <- call
	if resp.block != nil {
		select {
		case <-resp.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return resp.items, resp.err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *scriptedSource) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *scriptedSource) MaxActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxActive
}

// recorder collects delivered ids.
type recorder struct {
	mu  sync.Mutex
	ids []int64
}

func (r *recorder) handle(_ context.Context, item feed.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, item.ID)
	return nil
}

func (r *recorder) IDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ids...)
}

// manualTicker only fires when the test says so.
type manualTicker struct {
	interval time.Duration
	ch       chan time.Time
	stopped  chan struct{}
	once     sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

// Fire hands one tick to the scheduler loop. It reports false if the loop
// did not take it, e.g. because the watch has been stopped.
func (t *manualTicker) Fire() bool {
	select {
	case t.ch <- time.Now():
		return true
	case <-time.After(200 * time.Millisecond):
		return false
	}
}

func (t *manualTicker) Stopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	t := &manualTicker{
		interval: d,
		ch:       make(chan time.Time),
		stopped:  make(chan struct{}),
	}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *manualClock) Ticker(i int) *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[i]
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestWatch(src feed.Source, h Handler) *watch {
	return &watch{
		id:       "test",
		handler:  h,
		interval: DefaultInterval,
		source:   src,
		logger:   logger.Nop(),
		callers:  newCallers(),
	}
}

func (w *watch) lastSeen() (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor.id, w.cursor.set
}

func (r *implRegistry) lookup(id string) (*watch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watches[id]
	return w, ok
}

// waitCall blocks until the source has been entered for the n-th time.
func waitCall(t *testing.T, src *scriptedSource, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case call := <-src.entered:
			if call >= n {
				return
			}
		case <-deadline:
			t.Fatalf("source call %d not observed (calls=%d)", n, src.Calls())
		}
	}
}
