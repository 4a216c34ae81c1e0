package server

import "codeberg.org/mutker/nvme-exporter/internal/errors"

const (
	ErrInvalidConfig  = errors.ErrInvalidConfig
	ErrBindAddr       = errors.ErrBindAddr
	ErrShutdownFailed = errors.ErrShutdownFailed
	ErrServe          = errors.ErrorCode("http_serve_failed")
)
