package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/intelsleuth/internal/bootstrap"
	"github.com/jonesrussell/intelsleuth/internal/pipeline"
)

func newQueryCommand() *cobra.Command {
	var webhookURL string

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run one search and print the JSON result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			// Logs go to stderr so stdout stays valid JSON.
			cfg.Logging.OutputPaths = []string{"stderr"}

			log, err := bootstrap.CreateLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			search, err := bootstrap.NewSearch(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer search.Close()

			res, err := search.Service.Search(cmd.Context(), pipeline.Request{
				Query:      strings.Join(args, " "),
				WebhookURL: webhookURL,
			})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Response)
		},
	}
	cmd.Flags().StringVar(&webhookURL, "webhook", "", "webhook URL to deliver the result to")
	return cmd
}
