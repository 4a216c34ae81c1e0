package catalog

import (
	"context"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"codeberg.org/mutker/nvme-exporter/internal/metrics"
)

// Catalog journals the definition of every series the registry creates.
// Samples are never stored.
type Catalog interface {
	metrics.Observer

	// Flush writes buffered definitions.
	Flush(ctx context.Context) error

	// List returns every stored definition, oldest first.
	List(ctx context.Context) ([]metrics.Definition, error)

	Close() error
}

// Open returns a sqlite-backed catalog, or one that discards everything when
// the catalog is disabled.
func Open(cfg Config, log logger.Logger) (Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nop{}, nil
	}

	return NewRepository(cfg, log)
}

type nop struct{}

func (nop) SeriesCreated(metrics.Definition) {}

func (nop) Flush(context.Context) error { return nil }

func (nop) List(context.Context) ([]metrics.Definition, error) {
	return nil, errors.New().New(ErrCatalogDisabled)
}

func (nop) Close() error { return nil }
