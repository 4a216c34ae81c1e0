package collector

import "codeberg.org/mutker/nvme-exporter/internal/errors"

const (
	ErrInvalidConfig     = errors.ErrInvalidConfig
	ErrInvalidInterval   = errors.ErrInvalidInterval
	ErrDeviceEnumeration = errors.ErrDeviceEnumeration
	ErrIdentityFetch     = errors.ErrIdentityFetch
	ErrTelemetryFetch    = errors.ErrTelemetryFetch
)
