package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nguyentantai21042004/sitwatch/internal/config"
)

const defaultConfigPath = "config.yaml"

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	ConfigPath string
	BaseURL    string
	Token      string
	LogLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "sitwatch",
		Short:         "Watch the latest videos feed for new uploads",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./config.yaml when present)")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "API base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "API bearer token")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newLatestCommand(opts))

	return cmd
}

// loadConfig reads the config file and applies the flags that were set.
// It returns the path actually loaded, empty when running on defaults.
func loadConfig(flags *pflag.FlagSet, opts *rootOptions) (*config.Config, string, error) {
	path := opts.ConfigPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("stat %s: %w", defaultConfigPath, err)
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	}

	if flags.Changed("base-url") {
		cfg.API.BaseURL = opts.BaseURL
	}
	if flags.Changed("token") {
		cfg.API.Token = opts.Token
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.LogLevel
	}

	return cfg, path, nil
}
