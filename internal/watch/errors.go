package watch

import (
	"errors"
	"fmt"
)

var (
	ErrNilHandler     = errors.New("watch: handler is required")
	ErrUnknownEvent   = errors.New("watch: unknown event")
	ErrRegistryClosed = errors.New("watch: registry is closed")
)

// UnknownEventError reports the event name that was rejected.
type UnknownEventError struct {
	Event string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("watch: unknown event %q, only %q is supported", e.Event, EventNewVideo)
}

func (e *UnknownEventError) Unwrap() error {
	return ErrUnknownEvent
}
