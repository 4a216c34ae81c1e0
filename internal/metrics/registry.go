package metrics

import (
	"sort"
	"sync"
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry maps series names to live handles for the life of the process.
// Entries are created on first use and never removed or replaced.
type Registry struct {
	reg      prometheus.Registerer
	log      logger.Logger
	observer Observer
	now      func() time.Time

	mu      sync.RWMutex
	series  map[string]Handle
	origins map[string]map[string]struct{}
}

type Option func(*Registry)

func WithLogger(log logger.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// WithObserver registers o to be told about every newly created series.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// NewRegistry returns an empty registry whose series are registered with reg.
func NewRegistry(reg prometheus.Registerer, opts ...Option) *Registry {
	r := &Registry{
		reg:     reg,
		log:     logger.Nop(),
		now:     time.Now,
		series:  make(map[string]Handle),
		origins: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

type origin struct {
	raw    string
	source string
}

// GetOrCreate returns the handle for name, creating it with kind on first
// use. A name already held by the other kind is left untouched and
// ErrSeriesKindConflict is returned.
func (r *Registry) GetOrCreate(name string, kind telemetry.Kind) (Handle, error) {
	return r.getOrCreate(name, kind, origin{})
}

func (r *Registry) getOrCreate(name string, kind telemetry.Kind, from origin) (Handle, error) {
	errFactory := errors.New()

	if !telemetry.ValidSeriesName(name) {
		return nil, errFactory.WithData(ErrInvalidSeriesName, name)
	}

	r.mu.RLock()
	h, ok := r.series[name]
	r.mu.RUnlock()
	if ok {
		return r.checkKind(h, kind)
	}

	r.mu.Lock()
	if h, ok := r.series[name]; ok {
		r.mu.Unlock()
		return r.checkKind(h, kind)
	}

	switch kind {
	case telemetry.KindNumeric:
		h = newGauge(name)
	case telemetry.KindInfo:
		h = newInfo(name)
	default:
		r.mu.Unlock()
		return nil, errFactory.WithData(ErrUnknownKind, kind.String())
	}

	if err := r.reg.Register(h); err != nil {
		r.mu.Unlock()
		r.log.Warn().Err(err).Str("series", name).Str("kind", kind.String()).
			Msg("Failed to register series")
		return nil, errFactory.Wrap(ErrSeriesRegistration, err)
	}
	r.series[name] = h
	if from.raw != "" {
		r.origins[name] = map[string]struct{}{from.raw: {}}
	}
	r.mu.Unlock()

	r.log.Debug().Str("series", name).Str("kind", kind.String()).Str("source", from.source).
		Msg("Created series")

	if r.observer != nil {
		r.observer.SeriesCreated(Definition{
			Name:      name,
			Kind:      kind,
			Raw:       from.raw,
			Source:    from.source,
			FirstSeen: r.now(),
		})
	}

	return h, nil
}

func (r *Registry) checkKind(h Handle, kind telemetry.Kind) (Handle, error) {
	if h.Kind() == kind {
		return h, nil
	}

	r.log.Warn().
		Str("series", h.Name()).
		Str("registered_kind", h.Kind().String()).
		Str("observed_kind", kind.String()).
		Msg("Series kind conflict, skipping update")

	return nil, errors.New().WithData(ErrSeriesKindConflict, struct {
		Series     string
		Registered string
		Observed   string
	}{
		Series:     h.Name(),
		Registered: h.Kind().String(),
		Observed:   kind.String(),
	})
}

// UpdateNumeric sets the value of h for one device.
func (r *Registry) UpdateNumeric(h Handle, labels Labels, value float64) error {
	g, ok := h.(*Gauge)
	if !ok {
		return r.kindMismatch(h, telemetry.KindNumeric)
	}
	g.With(labels).Set(value)

	return nil
}

// UpdateInfo replaces the record held by h.
func (r *Registry) UpdateInfo(h Handle, facts Facts) error {
	info, ok := h.(*Info)
	if !ok {
		return r.kindMismatch(h, telemetry.KindInfo)
	}

	return info.set(facts)
}

func (r *Registry) kindMismatch(h Handle, kind telemetry.Kind) error {
	_, err := r.checkKind(h, kind)
	return err
}

// Apply materializes one resolved field for a device.
func (r *Registry) Apply(labels Labels, res telemetry.Resolved, source string) error {
	h, err := r.getOrCreate(res.Name, res.Kind, origin{raw: res.Raw, source: source})
	if err != nil {
		return err
	}
	r.noteOrigin(res.Name, res.Raw, source)

	switch res.Kind {
	case telemetry.KindNumeric:
		return r.UpdateNumeric(h, labels, res.Number)
	case telemetry.KindInfo:
		facts := labels.Facts()
		facts[h.(*Info).FactLabel()] = res.Text
		return r.UpdateInfo(h, facts)
	default:
		return errors.New().WithData(ErrUnknownKind, res.Kind.String())
	}
}

// noteOrigin reports the first time a raw label different from the ones
// already seen lands on a series.
func (r *Registry) noteOrigin(name, raw, source string) {
	if raw == "" {
		return
	}

	r.mu.Lock()
	seen, ok := r.origins[name]
	if !ok {
		seen = make(map[string]struct{})
		r.origins[name] = seen
	}
	_, known := seen[raw]
	seen[raw] = struct{}{}
	others := len(seen) - 1
	r.mu.Unlock()

	if !known && others > 0 {
		r.log.Info().Str("series", name).Str("field", raw).Str("source", source).
			Msg("Distinct fields share one series")
	}
}

// Lookup returns the handle registered under name.
func (r *Registry) Lookup(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.series[name]
	return h, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.series)
}

// Names returns the registered series names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}
