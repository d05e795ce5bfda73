package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/sitwatch/internal/config"
	"github.com/nguyentantai21042004/sitwatch/internal/feed"
	"github.com/nguyentantai21042004/sitwatch/internal/logger"
	"github.com/nguyentantai21042004/sitwatch/internal/notify"
	"github.com/nguyentantai21042004/sitwatch/internal/watch"
	"github.com/nguyentantai21042004/sitwatch/pkg/executor"
)

type watchOptions struct {
	Interval       time.Duration
	Legacy         bool
	MetricsAddress string
	MaxFetches     int
}

func newWatchCommand(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Poll the feed and report new videos until interrupted",
		Example: "sitwatch watch --interval=10s --metrics-address=:9090",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(cmd.Flags(), root)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("interval") {
				cfg.Watch.Interval = opts.Interval
			}
			if flags.Changed("legacy") {
				cfg.Watch.Legacy = opts.Legacy
			}
			if flags.Changed("metrics-address") {
				cfg.Metrics.Address = opts.MetricsAddress
			}
			if flags.Changed("max-concurrent-fetches") {
				cfg.Watch.MaxConcurrentFetches = opts.MaxFetches
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runWatch(cmd.Context(), cfg, path)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", config.DefaultInterval, "polling interval")
	cmd.Flags().BoolVar(&opts.Legacy, "legacy", false, "use the deprecated observe API")
	cmd.Flags().StringVar(&opts.MetricsAddress, "metrics-address", "", "serve Prometheus metrics on this address")
	cmd.Flags().IntVar(&opts.MaxFetches, "max-concurrent-fetches", 0, "limit concurrent feed requests (0 = unlimited)")

	return cmd
}

func runWatch(ctx context.Context, cfg *config.Config, configPath string) error {
	log := logger.NewWithFormat(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	log.Info(ctx, "========================================")
	log.Info(ctx, "sitwatch %s", version)
	log.Info(ctx, "========================================")
	log.Info(ctx, "API: %s", cfg.API.BaseURL)
	log.Info(ctx, "Event: %s, interval: %s", cfg.Watch.Event, cfg.Watch.Interval)

	client := feed.NewClient(feed.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
		OnTokenChange: func(token string) {
			log.Debug(ctx, "API token changed (set=%t)", token != "")
		},
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry := watch.New(feed.Shared(client), log,
		watch.WithMetrics(watch.NewMetrics(reg)),
		watch.WithMaxConcurrentFetches(cfg.Watch.MaxConcurrentFetches),
	)
	defer registry.Close()

	n := buildNotifier(cfg, log)
	if err := startWatch(registry, cfg, n); err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)

	if cfg.Metrics.Address != "" {
		eg.Go(func() error {
			return serveMetrics(egCtx, cfg.Metrics.Address, reg, log)
		})
	}

	if configPath != "" {
		cw, err := config.NewWatcher(configPath, func(ctx context.Context, c *config.Config) {
			log.SetLevel(c.Logging.Level)
		}, log)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer cw.Stop()

		eg.Go(func() error {
			return cw.Start(egCtx)
		})
	}

	eg.Go(func() error {
		<-egCtx.Done()
		return nil
	})

	log.Info(ctx, "Press Ctrl+C to stop")
	err := eg.Wait()

	log.Info(ctx, "Shutting down, stopping %d watches", registry.Len())
	registry.StopAll()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// startWatch registers the single watch through the API selected in cfg.
func startWatch(registry watch.Registry, cfg *config.Config, n notify.Notifier) error {
	interval := watch.WithInterval(cfg.Watch.Interval)

	if cfg.Watch.Legacy {
		if _, err := registry.Observe(n.Notify, interval); err != nil {
			return fmt.Errorf("observe: %w", err)
		}
		return nil
	}

	if _, err := registry.On(cfg.Watch.Event, n.Notify, interval); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.Watch.Event, err)
	}
	return nil
}

func buildNotifier(cfg *config.Config, log logger.Logger) notify.Notifier {
	notifiers := []notify.Notifier{notify.NewLog(log)}

	if cfg.Hooks.Exec != "" {
		notifiers = append(notifiers, notify.NewExec(executor.New(), log, cfg.Hooks.Exec, cfg.Hooks.Args, cfg.Hooks.WorkDir))
	}
	if len(cfg.Gemini.APIKeys) > 0 {
		notifiers = append(notifiers, notify.NewSummarizer(cfg.Gemini.APIKeys, cfg.Gemini.Model, log))
	}

	return notify.Chain(notifiers...)
}
