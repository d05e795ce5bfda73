package watch

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
)

// EventNewVideo is the only event a Registry can watch.
const EventNewVideo = "newVideo"

// DefaultInterval is the polling interval used when none is given.
const DefaultInterval = 5 * time.Second

// Handler receives each new item, oldest first. A returned error or a panic
// is logged and does not stop delivery of the remaining items.
type Handler func(ctx context.Context, item feed.Item) error

// TimerID identifies a watch created through the legacy Observe API.
type TimerID int64

// Registry creates, tracks and stops watches over a single feed source.
type Registry interface {
	// On starts watching event. Only EventNewVideo is supported.
	On(event string, handler Handler, opts ...Option) (Handle, error)
	// Start is On(EventNewVideo, ...).
	Start(handler Handler, opts ...Option) (Handle, error)
	// Stop halts the watch behind h. Unknown or already stopped handles are ignored.
	Stop(h Handle)
	// StopAll halts every registered watch, legacy ones included.
	StopAll()

	// Observe starts a watch and returns a numeric id instead of a Handle.
	//
	// Deprecated: use On(EventNewVideo, handler, opts...) and Handle.Stop.
	Observe(handler Handler, opts ...Option) (TimerID, error)
	// StopObserving halts a watch created by Observe.
	//
	// Deprecated: use Handle.Stop.
	StopObserving(id TimerID)
	// StopAllObserving halts every watch created by Observe.
	//
	// Deprecated: use Handle.Stop or StopAll.
	StopAllObserving()

	// Len reports how many watches are registered.
	Len() int
	// Close stops every watch and aborts in-flight fetches. Later starts fail with ErrRegistryClosed.
	Close()
}

// Handle references one running watch.
type Handle interface {
	ID() string
	Stop()
	IsActive() bool
	Interval() time.Duration
}
