package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, gatherer prometheus.Gatherer) (*server.Server, string) {
	t.Helper()

	cfg := server.DefaultConfig()
	cfg.ListenAddress = "127.0.0.1:0"

	srv, err := server.New(cfg, gatherer, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return srv, "http://" + srv.Addr().String()
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url) //nolint:gosec,noctx
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nvme_temperature",
		Help: "NVMe metric for nvme_temperature",
	}, []string{"serial_number", "model", "firmware"})
	reg.MustRegister(gauge)
	gauge.WithLabelValues("S1", "M1", "F1").Set(35)

	_, base := newTestServer(t, reg)

	status, body := get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `nvme_temperature{firmware="F1",model="M1",serial_number="S1"} 35`)
}

func TestLandingPage(t *testing.T) {
	_, base := newTestServer(t, prometheus.NewRegistry())

	status, body := get(t, base+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `href="/metrics"`)

	status, _ = get(t, base+"/other")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBindFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	cfg := server.DefaultConfig()
	cfg.ListenAddress = listener.Addr().String()

	_, err = server.New(cfg, prometheus.NewRegistry(), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, server.ErrBindAddr))
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to bind listen address"))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  server.Config
	}{
		{"empty address", server.Config{MetricsPath: "/metrics"}},
		{"relative path", server.Config{ListenAddress: ":1", MetricsPath: "metrics"}},
		{"root path", server.Config{ListenAddress: ":1", MetricsPath: "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.HasCode(tt.cfg.Validate(), server.ErrInvalidConfig))
		})
	}

	assert.NoError(t, server.DefaultConfig().Validate())
}
