package collector

import (
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/nvme"
)

const (
	defaultFetchTimeout = 5 * time.Second
	defaultConcurrency  = 1
)

type Config struct {
	// Sources are the telemetry queries issued for every device, in order.
	Sources      []string
	FetchTimeout time.Duration
	// Concurrency bounds how many devices are fetched at once.
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		Sources:      append([]string{}, nvme.DefaultSources...),
		FetchTimeout: defaultFetchTimeout,
		Concurrency:  defaultConcurrency,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if len(c.Sources) == 0 {
		return errFactory.WithMessage(ErrInvalidConfig, "no telemetry sources configured")
	}
	if c.FetchTimeout <= 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value time.Duration
		}{
			Field: "fetch_timeout",
			Value: c.FetchTimeout,
		})
	}
	if c.Concurrency <= 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value int
		}{
			Field: "concurrency",
			Value: c.Concurrency,
		})
	}

	return nil
}
