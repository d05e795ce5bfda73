package feed

import "context"

// Source returns the current latest-items snapshot, newest first.
type Source interface {
	Latest(ctx context.Context) ([]Item, error)
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func(ctx context.Context) ([]Item, error)

func (f SourceFunc) Latest(ctx context.Context) ([]Item, error) {
	return f(ctx)
}

// Client is a Source backed by the REST API, with bearer-token session handling.
type Client interface {
	Source

	BaseURL() string
	SetBaseURL(url string)

	Token() string
	HasToken() bool
	SetToken(token string)
	ClearToken()
}

// TokenChangeFunc is called whenever the session token is set or cleared.
// A cleared token is reported as the empty string.
type TokenChangeFunc func(token string)
