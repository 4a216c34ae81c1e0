package nvme

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
)

const (
	// Configuration Errors
	ErrInvalidPattern = errors.ErrorCode("nvme_invalid_device_pattern")
	ErrUnknownSource  = errors.ErrorCode("nvme_unknown_source")

	// Discovery Errors
	ErrDeviceEnumeration = errors.ErrDeviceEnumeration

	// Command Errors
	ErrCommandFailed  = errors.ErrorCode("nvme_command_failed")
	ErrCommandTimeout = errors.ErrTimeout
	ErrIdentityFetch  = errors.ErrIdentityFetch
	ErrTelemetryFetch = errors.ErrTelemetryFetch
	ErrPayloadParse   = errors.ErrPayloadParse
)

// commandError describes a command that ran and exited unsuccessfully.
type commandError struct {
	args   []string
	err    error
	stderr string
}

func (e *commandError) Error() string {
	msg := fmt.Sprintf("%s: %v", strings.Join(e.args, " "), e.err)
	if e.stderr != "" {
		msg += ": " + e.stderr
	}

	return msg
}

func (e *commandError) Unwrap() error {
	return e.err
}
