package watch

import (
	"time"

	"github.com/google/uuid"
)

type handle struct {
	r *implRegistry
	w *watch
}

func (h *handle) ID() string              { return h.w.id }
func (h *handle) Stop()                   { h.r.stopWatch(h.w.id) }
func (h *handle) IsActive() bool          { return h.w.active() }
func (h *handle) Interval() time.Duration { return h.w.interval }

func (r *implRegistry) On(event string, handler Handler, opts ...Option) (Handle, error) {
	if event != EventNewVideo {
		return nil, &UnknownEventError{Event: event}
	}

	w, err := r.register(handler, false, opts)
	if err != nil {
		return nil, err
	}
	return &handle{r: r, w: w}, nil
}

func (r *implRegistry) Start(handler Handler, opts ...Option) (Handle, error) {
	return r.On(EventNewVideo, handler, opts...)
}

func (r *implRegistry) Observe(handler Handler, opts ...Option) (TimerID, error) {
	r.logger.Warn(r.ctx, "Observe is deprecated, use On(%q, handler, opts...) instead", EventNewVideo)

	w, err := r.register(handler, true, opts)
	if err != nil {
		return 0, err
	}
	return w.legacyID, nil
}

func (r *implRegistry) register(handler Handler, legacy bool, opts []Option) (*watch, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	o := watchOptions{interval: DefaultInterval}
	for _, opt := range opts {
		opt(&o)
	}

	w := &watch{
		id:       uuid.NewString(),
		handler:  handler,
		interval: o.interval,
		source:   r.source,
		logger:   r.logger,
		metrics:  r.metrics,
		limiter:  r.limiter,
		callers:  r.callers,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}

	if legacy {
		r.nextTimerID++
		w.legacyID = r.nextTimerID
		r.legacy[w.legacyID] = w
	}
	r.watches[w.id] = w
	w.start(r.ctx, r.newTicker)

	r.metrics.watchAdded()
	r.logger.Debug(r.ctx, "Watch %s started (interval %s)", w.id, w.interval)
	return w, nil
}

func (r *implRegistry) Stop(h Handle) {
	if h == nil {
		return
	}
	r.stopWatch(h.ID())
}

// stopWatch removes the watch from the registry and halts it. It never holds
// the lock while stopping so handlers may call back into the registry.
func (r *implRegistry) stopWatch(id string) {
	r.mu.Lock()
	w, ok := r.watches[id]
	if ok {
		delete(r.watches, id)
		if w.legacyID != 0 {
			delete(r.legacy, w.legacyID)
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	w.stop()
	r.metrics.watchRemoved()
	r.logger.Debug(r.ctx, "Watch %s stopped", id)
}

func (r *implRegistry) StopAll() {
	for _, id := range r.snapshot(false) {
		r.stopWatch(id)
	}
}

func (r *implRegistry) StopObserving(id TimerID) {
	r.logger.Warn(r.ctx, "StopObserving is deprecated, use Handle.Stop instead")

	r.mu.Lock()
	w, ok := r.legacy[id]
	r.mu.Unlock()

	if ok {
		r.stopWatch(w.id)
	}
}

func (r *implRegistry) StopAllObserving() {
	r.logger.Warn(r.ctx, "StopAllObserving is deprecated, use Handle.Stop or StopAll instead")

	for _, id := range r.snapshot(true) {
		r.stopWatch(id)
	}
}

// snapshot copies the ids of registered watches, optionally only legacy ones.
func (r *implRegistry) snapshot(legacyOnly bool) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	if legacyOnly {
		for _, w := range r.legacy {
			ids = append(ids, w.id)
		}
		return ids
	}
	for id := range r.watches {
		ids = append(ids, id)
	}
	return ids
}

func (r *implRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watches)
}

func (r *implRegistry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.StopAll()
	r.cancel()
}
