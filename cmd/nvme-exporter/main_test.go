package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/nvme-exporter/internal/catalog"
	"codeberg.org/mutker/nvme-exporter/internal/config"
	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeNVMe = `#!/bin/sh
case "$1" in
id-ctrl)
	echo '{"sn": "S1  ", "mn": "M1", "fr": "F1"}'
	;;
smart-log)
	echo '{"Temperature": 35, "Power On Hours": 1200, "State": "unsupported", "Data units written": {"hi": 0, "lo": 42}}'
	;;
*)
	echo "unknown subcommand" >&2
	exit 1
	;;
esac
`

func setupDevices(t *testing.T) (binary, deviceDir string) {
	t.Helper()

	dir := t.TempDir()
	binary = filepath.Join(dir, "nvme")
	require.NoError(t, os.WriteFile(binary, []byte(fakeNVMe), 0o755)) //nolint:gosec

	deviceDir = filepath.Join(dir, "dev")
	require.NoError(t, os.MkdirAll(deviceDir, 0o755))
	for _, name := range []string{"nvme0n1", "nvme0", "sda"} {
		require.NoError(t, os.WriteFile(filepath.Join(deviceDir, name), nil, 0o600))
	}

	return binary, deviceDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestCollectCommand(t *testing.T) {
	binary, deviceDir := setupDevices(t)

	out, err := execute(t, "collect",
		"--nvme-binary", binary,
		"--sudo=false",
		"--device-dir", deviceDir,
		"--sources", "smart-log",
	)
	require.NoError(t, err)

	labels := `{firmware="F1",model="M1",serial_number="S1"}`
	assert.Contains(t, out, "# TYPE nvme_temperature gauge")
	assert.Contains(t, out, "nvme_temperature"+labels+" 35")
	assert.Contains(t, out, "nvme_power_on_hours"+labels+" 1200")
	assert.Contains(t, out, "nvme_data_units_written_hi"+labels+" 0")
	assert.Contains(t, out, "nvme_data_units_written_lo"+labels+" 42")
	assert.NotContains(t, out, "nvme_state")
}

func TestCollectCommandFailingSource(t *testing.T) {
	binary, deviceDir := setupDevices(t)

	out, err := execute(t, "collect",
		"--nvme-binary", binary,
		"--sudo=false",
		"--device-dir", deviceDir,
	)
	require.NoError(t, err, "a failing source does not fail the cycle")
	assert.Contains(t, out, "nvme_temperature")
}

func TestSeriesCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	_, err := execute(t, "series")
	assert.True(t, errors.HasCode(err, catalog.ErrCatalogDisabled))

	out, err := execute(t, "series", "--catalog", "--catalog-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "FIRST SEEN")
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, "serve", "--interval", "0s")
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}
