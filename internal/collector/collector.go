package collector

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"codeberg.org/mutker/nvme-exporter/internal/metrics"
	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// Collector drives collection cycles: enumerate devices, fetch identity and
// telemetry for each, and materialize the result in the registry.
type Collector struct {
	cfg      Config
	source   Source
	registry *metrics.Registry
	log      logger.Logger

	mu      sync.Mutex
	skipped map[string]struct{}
}

// deviceContext carries one device's identity through a cycle.
type deviceContext struct {
	name string
	id   telemetry.Identity
}

func (d deviceContext) labels() metrics.Labels {
	return metrics.LabelsFor(d.id)
}

type sourceResult struct {
	source string
	doc    telemetry.Document
	err    error
}

type deviceResult struct {
	device  deviceContext
	err     error
	sources []sourceResult
}

func New(cfg Config, source Source, registry *metrics.Registry, log logger.Logger) (*Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil || registry == nil {
		return nil, errFactory.WithMessage(ErrInvalidConfig, "collector requires a source and a registry")
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Collector{
		cfg:      cfg,
		source:   source,
		registry: registry,
		log:      log,
		skipped:  make(map[string]struct{}),
	}, nil
}

// Run performs a cycle immediately and then once per interval until ctx is
// done. Failures never stop the loop; the next tick is the retry.
func (c *Collector) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New().WithData(ErrInvalidInterval, interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.logCycle(ctx)
		}
	}
}

func (c *Collector) logCycle(ctx context.Context) {
	start := time.Now()
	report := c.Cycle(ctx)

	c.log.Debug().
		Int("devices", report.Devices).
		Int("skipped_devices", report.SkippedDevices).
		Int("failed_fetches", report.FailedFetches).
		Int("documents", report.Documents).
		Int("applied_fields", report.AppliedFields).
		Int("skipped_fields", report.SkippedFields).
		Int("failed_updates", report.FailedUpdates).
		Int("series", c.registry.Len()).
		Dur("duration", time.Since(start)).
		Msg("Collection cycle finished")
}

// Cycle runs one collection pass. Devices may be fetched concurrently, but
// registry updates are applied one device at a time in enumeration order.
func (c *Collector) Cycle(ctx context.Context) Report {
	var report Report

	devices, err := fetch(ctx, c.cfg.FetchTimeout, c.source.Devices)
	if err != nil {
		c.log.Error().Err(classify(err, ErrDeviceEnumeration)).Msg("Failed to enumerate devices")
		return report
	}
	report.Devices = len(devices)

	results := make([]deviceResult, len(devices))

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)
	for i, device := range devices {
		i, device := i, device
		g.Go(func() error {
			results[i] = c.fetchDevice(ctx, device)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		c.applyDevice(res, &report)
	}

	return report
}

func (c *Collector) fetchDevice(ctx context.Context, device string) deviceResult {
	res := deviceResult{device: deviceContext{name: device}}

	id, err := fetch(ctx, c.cfg.FetchTimeout, func(ctx context.Context) (telemetry.Identity, error) {
		return c.source.Identity(ctx, device)
	})
	if err != nil {
		res.err = classify(err, ErrIdentityFetch)
		return res
	}
	res.device.id = id
	if id.Empty() {
		return res
	}

	for _, source := range c.cfg.Sources {
		source := source
		doc, err := fetch(ctx, c.cfg.FetchTimeout, func(ctx context.Context) (telemetry.Document, error) {
			return c.source.Telemetry(ctx, device, source)
		})
		if err != nil {
			err = classify(err, ErrTelemetryFetch)
		}
		res.sources = append(res.sources, sourceResult{source: source, doc: doc, err: err})
	}

	return res
}

func (c *Collector) applyDevice(res deviceResult, report *Report) {
	log := c.log.With("device", res.device.name)

	if res.err != nil {
		report.FailedFetches++
		log.Warn().Err(res.err).Str("error_code", string(errors.CodeOf(res.err))).
			Msg("Failed to fetch device identity, skipping device")
		return
	}

	if res.device.id.Empty() {
		report.SkippedDevices++
		log.Debug().Msg("Device reported no serial number, skipping device")
		return
	}

	labels := res.device.labels()

	for _, src := range res.sources {
		if src.err != nil {
			report.FailedFetches++
			log.Warn().Err(src.err).
				Str("error_code", string(errors.CodeOf(src.err))).
				Str("source", src.source).
				Msg("Failed to fetch telemetry")
			continue
		}
		report.Documents++

		for _, field := range telemetry.Flatten(src.doc) {
			resolved, err := telemetry.Resolve(field)
			if err != nil {
				report.SkippedFields++
				event := log.Debug()
				if c.firstSkip(field.Name) {
					event = log.Info()
				}
				event.
					Str("source", src.source).
					Str("series", field.Name).
					Str("error_code", string(errors.CodeOf(err))).
					Str("value", field.Value.String()).
					Msg("Skipping field")
				continue
			}

			if err := c.registry.Apply(labels, resolved, src.source); err != nil {
				report.FailedUpdates++
				log.Debug().Err(err).Str("source", src.source).Str("series", field.Name).
					Msg("Skipping update")
				continue
			}
			report.AppliedFields++
		}
	}
}

// firstSkip reports whether name is being skipped for the first time. Later
// skips of the same series are logged at debug only.
func (c *Collector) firstSkip(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.skipped[name]; ok {
		return false
	}
	c.skipped[name] = struct{}{}

	return true
}

// fetch calls fn with a deadline and gives up when the deadline passes, even
// if fn ignores its context.
func fetch[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	// The goroutine lives until fn returns, even after the deadline.
	go func() {
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, errors.New().Wrap(errors.ErrTimeout, ctx.Err())
	}
}

// classify tags err with a failure category unless it already carries it.
func classify(err error, code errors.ErrorCode) error {
	if errors.HasCode(err, code) {
		return err
	}

	return errors.New().Wrap(code, err)
}
