package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
	"github.com/nguyentantai21042004/sitwatch/pkg/executor"
)

func (n *implLog) Notify(ctx context.Context, item feed.Item) error {
	v, err := item.Video()
	if err != nil {
		return err
	}

	uploader := v.Uploader.Username
	if uploader == "" {
		uploader = "unknown"
	}
	n.logger.Info(ctx, "New video #%d: %q by %s", item.ID, v.Title, uploader)
	return nil
}

func (n *implExec) Notify(ctx context.Context, item feed.Item) error {
	v, err := item.Video()
	if err != nil {
		return err
	}

	out, err := n.executor.Execute(ctx, executor.Command{
		Name: n.name,
		Args: n.args,
		Dir:  n.dir,
		Env: []string{
			"SITWATCH_VIDEO_ID=" + strconv.FormatInt(item.ID, 10),
			"SITWATCH_VIDEO_TITLE=" + v.Title,
			"SITWATCH_VIDEO_URL=" + v.VideoURL,
		},
		Stdin: item.Raw,
	})
	if err != nil {
		return fmt.Errorf("exec hook for video %d: %w", item.ID, err)
	}

	n.logger.Debug(ctx, "Hook output for video %d: %s", item.ID, out)
	return nil
}

// Notify runs every notifier even if an earlier one fails.
func (c chain) Notify(ctx context.Context, item feed.Item) error {
	var errs []error
	for _, n := range c {
		if err := n.Notify(ctx, item); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
