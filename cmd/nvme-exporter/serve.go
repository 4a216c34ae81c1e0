package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/nvme-exporter/internal/catalog"
	"codeberg.org/mutker/nvme-exporter/internal/collector"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"codeberg.org/mutker/nvme-exporter/internal/metrics"
	"codeberg.org/mutker/nvme-exporter/internal/nvme"
	"codeberg.org/mutker/nvme-exporter/internal/pid"
	"codeberg.org/mutker/nvme-exporter/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Collect telemetry periodically and serve it over HTTP (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.Init(cfg.Level(), logger.IsService())
	log := logger.Default()
	log.Debug().Msg("Config loaded")

	if cfg.PIDFile != "" {
		if err := pid.Write(cfg.PIDFile); err != nil {
			return err
		}
		defer func() {
			if err := pid.Remove(cfg.PIDFile); err != nil {
				log.Error().Err(err).Msg("Failed to remove PID file")
			}
		}()
	}

	cat, err := catalog.Open(cfg.CatalogStore(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := cat.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close series catalog")
		}
	}()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry := metrics.NewRegistry(promReg,
		metrics.WithLogger(log),
		metrics.WithObserver(cat),
	)

	client, err := nvme.NewClient(cfg.NVMe(), nil, nvme.WithLogger(log))
	if err != nil {
		return err
	}

	coll, err := collector.New(cfg.Collector(), client, registry, log)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg.Server(), promReg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go handleSignals(ctx, cancel)

	log.Info().
		Dur("interval", cfg.Interval).
		Strs("sources", cfg.Sources).
		Bool("catalog", cfg.Catalog.Enabled).
		Msg("Starting NVMe exporter")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx)
	})
	g.Go(func() error {
		return coll.Run(ctx, cfg.Interval)
	})

	err = g.Wait()
	log.Info().Int("series", registry.Len()).Msg("Exiting...")

	return err
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}
}
