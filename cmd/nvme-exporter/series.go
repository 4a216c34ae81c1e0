package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/catalog"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"github.com/spf13/cobra"
)

func newSeriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "series",
		Short: "List the series definitions recorded in the catalog",
		Args:  cobra.NoArgs,
		RunE:  runSeries,
	}
}

func runSeries(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(cfg.CatalogStore(), logger.New(cmd.ErrOrStderr(), cfg.Level()))
	if err != nil {
		return err
	}
	defer cat.Close()

	defs, err := cat.List(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSOURCE\tFIRST SEEN\tRAW")
	for _, def := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			def.Name, def.Kind, def.Source, def.FirstSeen.UTC().Format(time.RFC3339), def.Raw)
	}

	return w.Flush()
}
