package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
)

func newLatestCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the current latest videos once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}

			client := feed.NewClient(feed.ClientConfig{
				BaseURL: cfg.API.BaseURL,
				Token:   cfg.API.Token,
				Timeout: cfg.API.Timeout,
			})

			items, err := client.Latest(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, item := range items {
				v, err := item.Video()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", item.ID, v.Uploader.Username, v.Title)
			}
			return nil
		},
	}
}
