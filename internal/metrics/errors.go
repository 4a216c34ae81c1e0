package metrics

import "codeberg.org/mutker/nvme-exporter/internal/errors"

const (
	// Registry Errors
	ErrInvalidSeriesName  = errors.ErrorCode("metrics_invalid_series_name")
	ErrSeriesKindConflict = errors.ErrSeriesKindConflict
	ErrSeriesRegistration = errors.ErrorCode("metrics_series_registration_failed")

	// Update Errors
	ErrInvalidInfoFacts = errors.ErrorCode("metrics_invalid_info_facts")
	ErrUnknownKind      = errors.ErrorCode("metrics_unknown_kind")
)
