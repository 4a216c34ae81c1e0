package telemetry

import "codeberg.org/mutker/nvme-exporter/internal/errors"

const (
	ErrFieldTypeMismatch = errors.ErrFieldTypeMismatch
	ErrNestingTooDeep    = errors.ErrorCode("telemetry_nesting_too_deep")
	ErrUnknownScalar     = errors.ErrorCode("telemetry_unknown_scalar")
)
