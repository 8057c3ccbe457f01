package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/infrastructure/profiling"
	"github.com/jonesrussell/intelsleuth/internal/bootstrap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			if Version != "dev" {
				cfg.Service.Version = Version
			}

			log, err := bootstrap.CreateLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			profiling.Start(ctx, cfg.Profiling, log)

			app, err := bootstrap.NewHTTP(ctx, cfg, log)
			if err != nil {
				log.Error("Failed to start", logger.Error(err))
				return err
			}
			defer app.Close()

			if err := app.Server.Run(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
}
