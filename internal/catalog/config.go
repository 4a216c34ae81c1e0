package catalog

import (
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/nvme-exporter/catalog.db"
	backupDirName  = "backups"

	defaultBatchSize    = 32
	defaultBatchTimeout = 30 * time.Second
)

type Config struct {
	Enabled bool
	DBPath  string
	// BatchSize is the number of buffered definitions that triggers a flush.
	BatchSize int
	// BatchTimeout is the longest a definition stays buffered.
	BatchTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		DBPath:       defaultDBPath,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate when the catalog is enabled
	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize <= 0 || c.BatchTimeout <= 0 {
		return errFactory.WithData(ErrInvalidBatch, struct {
			BatchSize    int
			BatchTimeout time.Duration
		}{
			BatchSize:    c.BatchSize,
			BatchTimeout: c.BatchTimeout,
		})
	}

	return nil
}
