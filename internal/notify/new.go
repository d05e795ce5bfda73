package notify

import (
	"github.com/nguyentantai21042004/sitwatch/internal/logger"
	"github.com/nguyentantai21042004/sitwatch/pkg/executor"
)

type implLog struct {
	logger logger.Logger
}

// NewLog creates a Notifier that logs every new video.
func NewLog(log logger.Logger) Notifier {
	return &implLog{logger: log}
}

type implExec struct {
	executor executor.Executor
	logger   logger.Logger
	name     string
	args     []string
	dir      string
}

// NewExec creates a Notifier that runs name with args for every new video.
// The item JSON is written to the command's stdin.
func NewExec(exec executor.Executor, log logger.Logger, name string, args []string, dir string) Notifier {
	return &implExec{
		executor: exec,
		logger:   log,
		name:     name,
		args:     args,
		dir:      dir,
	}
}

type chain []Notifier

// Chain fans every item out to all notifiers, in order.
func Chain(notifiers ...Notifier) Notifier {
	var c chain
	for _, n := range notifiers {
		if n != nil {
			c = append(c, n)
		}
	}
	return c
}
