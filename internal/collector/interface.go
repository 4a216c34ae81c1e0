package collector

import (
	"context"

	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
)

// Enumerator lists the devices to poll.
type Enumerator interface {
	Devices(ctx context.Context) ([]string, error)
}

// Fetcher queries a single device.
type Fetcher interface {
	Identity(ctx context.Context, device string) (telemetry.Identity, error)
	Telemetry(ctx context.Context, device, source string) (telemetry.Document, error)
}

// Source combines enumeration and fetching, as nvme.Client does.
type Source interface {
	Enumerator
	Fetcher
}

// Report summarizes one collection cycle.
type Report struct {
	Devices        int
	SkippedDevices int
	FailedFetches  int
	Documents      int
	AppliedFields  int
	SkippedFields  int
	FailedUpdates  int
}
