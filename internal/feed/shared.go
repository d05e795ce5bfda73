package feed

import (
	"context"

	"golang.org/x/sync/singleflight"
)

type sharedSource struct {
	src   Source
	group singleflight.Group
}

// Shared wraps src so that concurrent Latest calls share a single request.
// Callers receive the same slice and must treat it as read-only.
func Shared(src Source) Source {
	return &sharedSource{src: src}
}

func (s *sharedSource) Latest(ctx context.Context) ([]Item, error) {
	v, err, _ := s.group.Do("latest", func() (any, error) {
		return s.src.Latest(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}
