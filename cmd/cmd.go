package cmd

import (
	"context"
	"log/slog"

	"github.com/channelmesh/pathfinder/internal/config"
	"github.com/channelmesh/pathfinder/pkg/logger"
	"github.com/channelmesh/pathfinder/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:  "pathfinder",
	Long: `Route-finding service for payment-channel networks`,
}

func init() {
	var configFile string

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		config := config.Parse(configFile)

		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	cmd.AddCommand(
		NewRunCommand(),
		NewVersionCommand(),
	)

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Panic("Failed to execute root command", slogx.Error(err))
	}
}
