package logger

import "codeberg.org/mutker/nvme-exporter/internal/errors"

// Logger is the diagnostic channel handed to every component.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
	With(key, value string) Logger
}
