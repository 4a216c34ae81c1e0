package server

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"strings"
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultListenAddress = ":18074"
	defaultMetricsPath   = "/metrics"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type Config struct {
	ListenAddress string
	MetricsPath   string
}

func DefaultConfig() Config {
	return Config{
		ListenAddress: defaultListenAddress,
		MetricsPath:   defaultMetricsPath,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.ListenAddress == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "listen address is empty")
	}
	if !strings.HasPrefix(c.MetricsPath, "/") || c.MetricsPath == "/" {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value string
		}{
			Field: "metrics_path",
			Value: c.MetricsPath,
		})
	}

	return nil
}

// Server exposes a gatherer over HTTP. The listener is bound in New so that
// an unusable address is reported before collection starts.
type Server struct {
	cfg      Config
	listener net.Listener
	http     *http.Server
	log      logger.Logger
}

func New(cfg Config, gatherer prometheus.Gatherer, log logger.Logger) (*Server, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return nil, errFactory.Wrap(ErrBindAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog:      errorLog{log: log},
		ErrorHandling: promhttp.ContinueOnError,
	}))
	mux.HandleFunc("/", landingPage(cfg.MetricsPath))

	return &Server{
		cfg:      cfg,
		listener: listener,
		http: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		log: log,
	}, nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve handles requests until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errFactory := errors.New()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(s.listener)
	}()

	s.log.Info().
		Str("address", s.Addr().String()).
		Str("metrics_path", s.cfg.MetricsPath).
		Msg("Serving metrics")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errFactory.Wrap(ErrServe, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(ErrShutdownFailed, err)
	}

	return nil
}

func landingPage(metricsPath string) http.HandlerFunc {
	path := html.EscapeString(metricsPath)
	body := fmt.Sprintf(`<html>
<head><title>NVMe Exporter</title></head>
<body>
<h1>NVMe Exporter</h1>
<p><a href="%s">Metrics</a></p>
</body>
</html>
`, path)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}

// errorLog routes promhttp gathering errors to the logger.
type errorLog struct {
	log logger.Logger
}

func (e errorLog) Println(v ...interface{}) {
	e.log.Error().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}
