package watch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
	"github.com/nguyentantai21042004/sitwatch/internal/logger"
)

// Option configures a single watch.
type Option func(*watchOptions)

type watchOptions struct {
	interval time.Duration
}

// WithInterval sets the polling interval. Non-positive values keep DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(o *watchOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*implRegistry)

// WithMetrics records tick, delivery and lifecycle metrics into m.
func WithMetrics(m *Metrics) RegistryOption {
	return func(r *implRegistry) {
		r.metrics = m
	}
}

// WithTicker replaces the time.Ticker based scheduling, mainly for tests.
func WithTicker(f TickerFunc) RegistryOption {
	return func(r *implRegistry) {
		if f != nil {
			r.newTicker = f
		}
	}
}

// WithMaxConcurrentFetches caps how many watches of the registry may fetch
// at the same time. Zero means no limit.
func WithMaxConcurrentFetches(n int) RegistryOption {
	return func(r *implRegistry) {
		if n > 0 {
			r.limiter = semaphore.NewWeighted(int64(n))
		}
	}
}

type implRegistry struct {
	source    feed.Source
	logger    logger.Logger
	metrics   *Metrics
	newTicker TickerFunc
	limiter   *semaphore.Weighted
	callers   *callers

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	watches     map[string]*watch
	legacy      map[TimerID]*watch
	nextTimerID TimerID
}

// New creates a Registry polling source.
func New(source feed.Source, log logger.Logger, opts ...RegistryOption) Registry {
	ctx, cancel := context.WithCancel(context.Background())

	r := &implRegistry{
		source:    source,
		logger:    log,
		newTicker: NewTimeTicker,
		callers:   newCallers(),
		ctx:       ctx,
		cancel:    cancel,
		watches:   make(map[string]*watch),
		legacy:    make(map[TimerID]*watch),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}
