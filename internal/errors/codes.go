package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Application errors
	ErrInitApp  ErrorCode = "init_app_failed"
	ErrMainLoop ErrorCode = "main_loop_failed"
	ErrBindAddr ErrorCode = "bind_address_failed"

	// Collection errors
	ErrDeviceEnumeration ErrorCode = "device_enumeration_failed"
	ErrIdentityFetch     ErrorCode = "identity_fetch_failed"
	ErrTelemetryFetch    ErrorCode = "telemetry_fetch_failed"
	ErrPayloadParse      ErrorCode = "payload_parse_failed"

	// Materialization errors
	ErrFieldTypeMismatch  ErrorCode = "field_type_mismatch"
	ErrSeriesKindConflict ErrorCode = "series_kind_conflict"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:           "Internal error occurred",
	ErrInvalidArgument:    "Invalid argument provided",
	ErrUnavailable:        "Service unavailable",
	ErrInvalidConfig:      "Invalid configuration",
	ErrBindFlags:          "Failed to bind flags",
	ErrReadConfig:         "Failed to read config file",
	ErrInvalidInterval:    "Invalid interval value",
	ErrInvalidLogLevel:    "Invalid log level",
	ErrInitFailed:         "Initialization failed",
	ErrShutdownFailed:     "Shutdown failed",
	ErrAlreadyRunning:     "Another instance is already running",
	ErrInitApp:            "Failed to initialize application",
	ErrMainLoop:           "Error in main loop",
	ErrBindAddr:           "Failed to bind listen address",
	ErrDeviceEnumeration:  "Failed to enumerate devices",
	ErrIdentityFetch:      "Failed to fetch device identity",
	ErrTelemetryFetch:     "Failed to fetch telemetry",
	ErrPayloadParse:       "Failed to parse telemetry payload",
	ErrFieldTypeMismatch:  "Field value is not numeric",
	ErrSeriesKindConflict: "Series already registered with a different kind",
	ErrOperationFailed:    "Operation failed",
	ErrTimeout:            "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
