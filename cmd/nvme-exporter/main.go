package main

import (
	"context"
	"os"

	"codeberg.org/mutker/nvme-exporter/internal/config"
	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.ErrorWithCode(appErr).Msg("nvme-exporter failed")
		} else {
			logger.Error().Err(err).Msg("nvme-exporter failed")
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "nvme-exporter",
		Short: "Export NVMe SMART and OCP telemetry as Prometheus metrics",
		Long: `nvme-exporter polls NVMe devices through nvme-cli and exposes every
numeric field it reports as a Prometheus gauge labeled by serial number,
model and firmware.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCommand(),
		newCollectCommand(),
		newSeriesCommand(),
	)

	return root
}

// loadConfig resolves the configuration for cmd, whose flag set includes the
// persistent flags inherited from the root command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Flags())
}
