package watch

import (
	"context"
	"time"
)

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc builds a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

// NewTimeTicker is the TickerFunc backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(d)}
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// scheduler runs a task once immediately and then on every tick until cancelled.
// Each run gets its own goroutine, so a slow task never delays the ticker.
type scheduler struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func schedule(ctx context.Context, interval time.Duration, newTicker TickerFunc, task func()) *scheduler {
	ctx, cancel := context.WithCancel(ctx)
	s := &scheduler{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ticker := newTicker(interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()

		go task()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				go task()
			}
		}
	}()

	return s
}

// stop prevents further runs. Runs already started are not interrupted.
func (s *scheduler) stop() {
	s.cancel()
}
