package executor

import "context"

// Command describes one external process invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string   // working directory, empty for the current one
	Env   []string // extra KEY=VALUE pairs appended to the parent environment
	Stdin []byte
}

// Executor runs external commands and returns their stdout.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (string, error)
}
