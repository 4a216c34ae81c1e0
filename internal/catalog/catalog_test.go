package catalog_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/catalog"
	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"codeberg.org/mutker/nvme-exporter/internal/metrics"
	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) catalog.Config {
	t.Helper()

	cfg := catalog.DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = filepath.Join(t.TempDir(), "catalog.db")
	cfg.BatchSize = 2
	cfg.BatchTimeout = time.Hour

	return cfg
}

func definition(name string, kind telemetry.Kind, seen int64) metrics.Definition {
	return metrics.Definition{
		Name:      name,
		Kind:      kind,
		Raw:       "raw " + name,
		Source:    "smart-log",
		FirstSeen: time.Unix(seen, 0),
	}
}

func countRows(t *testing.T, path string) int {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM series").Scan(&n))

	return n
}

func TestBatchFlush(t *testing.T) {
	cfg := testConfig(t)
	cat, err := catalog.Open(cfg, logger.Nop())
	require.NoError(t, err)
	defer cat.Close()

	cat.SeriesCreated(definition("nvme_temperature", telemetry.KindNumeric, 100))
	assert.Equal(t, 0, countRows(t, cfg.DBPath), "below batch size nothing is written")

	cat.SeriesCreated(definition("nvme_power_on_hours", telemetry.KindNumeric, 101))
	assert.Equal(t, 2, countRows(t, cfg.DBPath))

	cat.SeriesCreated(definition("nvme_log_page_guid", telemetry.KindInfo, 102))
	require.NoError(t, cat.Flush(context.Background()))
	assert.Equal(t, 3, countRows(t, cfg.DBPath))
}

func TestListReturnsDefinitionsInOrder(t *testing.T) {
	cat, err := catalog.Open(testConfig(t), nil)
	require.NoError(t, err)
	defer cat.Close()

	cat.SeriesCreated(definition("nvme_log_page_guid", telemetry.KindInfo, 200))
	cat.SeriesCreated(definition("nvme_temperature", telemetry.KindNumeric, 100))
	cat.SeriesCreated(definition("nvme_temperature", telemetry.KindNumeric, 300))

	defs, err := cat.List(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2, "a repeated name keeps its first definition")

	assert.Equal(t, definition("nvme_temperature", telemetry.KindNumeric, 100), defs[0])
	assert.Equal(t, definition("nvme_log_page_guid", telemetry.KindInfo, 200), defs[1])
}

func TestCloseFlushesAndPersists(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 100

	cat, err := catalog.Open(cfg, nil)
	require.NoError(t, err)
	cat.SeriesCreated(definition("nvme_temperature", telemetry.KindNumeric, 100))
	require.NoError(t, cat.Close())
	require.NoError(t, cat.Close(), "close is idempotent")

	reopened, err := catalog.Open(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	defs, err := reopened.List(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "nvme_temperature", defs[0].Name)

	_, err = os.Stat(filepath.Join(filepath.Dir(cfg.DBPath), "backups"))
	assert.True(t, os.IsNotExist(err), "a current schema is not backed up")
}

func TestSchemaVersionMismatchBacksUp(t *testing.T) {
	cfg := testConfig(t)

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE schema_versions (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);
		INSERT INTO schema_versions (version, applied_at) VALUES (99, datetime('now'));
		CREATE TABLE series (name TEXT PRIMARY KEY);
		INSERT INTO series (name) VALUES ('old');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cat, err := catalog.Open(cfg, nil)
	require.NoError(t, err)
	defer cat.Close()

	backups, err := filepath.Glob(filepath.Join(filepath.Dir(cfg.DBPath), "backups", "catalog_v99_*.db"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	defs, err := cat.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, defs)

	db, err = sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()
	version, err := catalog.GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, catalog.SchemaVersion, version)
}

func TestDisabledCatalog(t *testing.T) {
	cat, err := catalog.Open(catalog.DefaultConfig(), nil)
	require.NoError(t, err)

	cat.SeriesCreated(definition("nvme_temperature", telemetry.KindNumeric, 100))
	assert.NoError(t, cat.Flush(context.Background()))
	assert.NoError(t, cat.Close())

	_, err = cat.List(context.Background())
	assert.True(t, errors.HasCode(err, catalog.ErrCatalogDisabled))
}

func TestRegistryFeedsCatalog(t *testing.T) {
	cat, err := catalog.Open(testConfig(t), nil)
	require.NoError(t, err)
	defer cat.Close()

	registry := metrics.NewRegistry(prometheus.NewRegistry(), metrics.WithObserver(cat))
	labels := metrics.Labels{SerialNumber: "S1", Model: "M1", Firmware: "F1"}

	require.NoError(t, registry.Apply(labels, telemetry.Resolved{
		Name: "nvme_temperature", Raw: "Temperature", Kind: telemetry.KindNumeric, Number: 35,
	}, "smart-log"))
	require.NoError(t, registry.Apply(labels, telemetry.Resolved{
		Name: "nvme_temperature", Raw: "Temperature", Kind: telemetry.KindNumeric, Number: 36,
	}, "smart-log"))

	defs, err := cat.List(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 1, "samples are not journaled")
	assert.Equal(t, "nvme_temperature", defs[0].Name)
	assert.Equal(t, "Temperature", defs[0].Raw)
	assert.Equal(t, "smart-log", defs[0].Source)
	assert.Equal(t, telemetry.KindNumeric, defs[0].Kind)
}

func TestConfigValidate(t *testing.T) {
	cfg := catalog.DefaultConfig()
	assert.NoError(t, cfg.Validate(), "disabled catalog needs no path")

	cfg.Enabled = true
	cfg.DBPath = ""
	assert.True(t, errors.HasCode(cfg.Validate(), catalog.ErrInvalidDBPath))

	cfg.DBPath = "/tmp/catalog.db"
	cfg.BatchSize = 0
	assert.True(t, errors.HasCode(cfg.Validate(), catalog.ErrInvalidBatch))
}
