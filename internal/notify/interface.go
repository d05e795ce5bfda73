package notify

import (
	"context"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
)

// Notifier reacts to one newly published video. Its Notify method has the
// shape of a watch.Handler and can be passed to a Registry directly.
type Notifier interface {
	Notify(ctx context.Context, item feed.Item) error
}

// NotifierFunc adapts a plain function to a Notifier.
type NotifierFunc func(ctx context.Context, item feed.Item) error

func (f NotifierFunc) Notify(ctx context.Context, item feed.Item) error {
	return f(ctx, item)
}
