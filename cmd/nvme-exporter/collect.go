package main

import (
	"io"

	"codeberg.org/mutker/nvme-exporter/internal/collector"
	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"codeberg.org/mutker/nvme-exporter/internal/metrics"
	"codeberg.org/mutker/nvme-exporter/internal/nvme"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func newCollectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Run a single collection cycle and print the metrics",
		Args:  cobra.NoArgs,
		RunE:  runCollect,
	}
}

// runCollect writes the exposition to stdout and logs to stderr.
func runCollect(cmd *cobra.Command, _ []string) error {
	errFactory := errors.New()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Level())

	promReg := prometheus.NewRegistry()
	registry := metrics.NewRegistry(promReg, metrics.WithLogger(log))

	client, err := nvme.NewClient(cfg.NVMe(), nil, nvme.WithLogger(log))
	if err != nil {
		return err
	}

	coll, err := collector.New(cfg.Collector(), client, registry, log)
	if err != nil {
		return err
	}

	report := coll.Cycle(cmd.Context())
	log.Info().
		Int("devices", report.Devices).
		Int("failed_fetches", report.FailedFetches).
		Int("applied_fields", report.AppliedFields).
		Int("skipped_fields", report.SkippedFields).
		Msg("Collection cycle finished")

	families, err := promReg.Gather()
	if err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	return writeFamilies(cmd.OutOrStdout(), families)
}

// writeFamilies prints families in the text exposition format.
func writeFamilies(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.New().Wrap(errors.ErrOperationFailed, err)
		}
	}

	return nil
}
