package metrics

import (
	"sort"
	"strings"
	"sync"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

const infoSuffix = "_info"

func helpText(name string) string {
	return "NVMe metric for " + name
}

// Gauge is a numeric series labeled by device identity.
type Gauge struct {
	name string
	vec  *prometheus.GaugeVec
}

func newGauge(name string) *Gauge {
	return &Gauge{
		name: name,
		vec: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: helpText(name),
		}, deviceLabelNames),
	}
}

func (g *Gauge) Name() string { return g.name }

func (*Gauge) Kind() telemetry.Kind { return telemetry.KindNumeric }

func (g *Gauge) Describe(ch chan<- *prometheus.Desc) { g.vec.Describe(ch) }

func (g *Gauge) Collect(ch chan<- prometheus.Metric) { g.vec.Collect(ch) }

// With returns the child gauge for one device.
func (g *Gauge) With(l Labels) prometheus.Gauge {
	return g.vec.WithLabelValues(l.values()...)
}

// Info is a single record of descriptive facts, exposed as <name>_info with
// value 1. Every update replaces the whole record.
type Info struct {
	name       string
	labelNames []string
	desc       *prometheus.Desc

	mu     sync.RWMutex
	values []string
}

func newInfo(name string) *Info {
	labelNames := append(append([]string{}, deviceLabelNames...), strings.TrimPrefix(name, telemetry.Prefix))

	return &Info{
		name:       name,
		labelNames: labelNames,
		desc:       prometheus.NewDesc(name+infoSuffix, helpText(name), labelNames, nil),
	}
}

func (i *Info) Name() string { return i.name }

func (*Info) Kind() telemetry.Kind { return telemetry.KindInfo }

// FactLabel is the label holding the field's own value.
func (i *Info) FactLabel() string { return i.labelNames[len(i.labelNames)-1] }

func (i *Info) Describe(ch chan<- *prometheus.Desc) { ch <- i.desc }

func (i *Info) Collect(ch chan<- prometheus.Metric) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.values == nil {
		return
	}
	m, err := prometheus.NewConstMetric(i.desc, prometheus.GaugeValue, 1, i.values...)
	if err != nil {
		m = prometheus.NewInvalidMetric(i.desc, err)
	}
	ch <- m
}

// Facts returns a copy of the current record, nil before the first update.
func (i *Info) Facts() Facts {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.values == nil {
		return nil
	}
	facts := make(Facts, len(i.labelNames))
	for n, label := range i.labelNames {
		facts[label] = i.values[n]
	}

	return facts
}

func (i *Info) set(facts Facts) error {
	values := make([]string, len(i.labelNames))
	used := 0
	for n, label := range i.labelNames {
		if v, ok := facts[label]; ok {
			values[n] = telemetry.ValidText(v)
			used++
		}
	}

	if used != len(facts) {
		unknown := make([]string, 0, len(facts)-used)
		for k := range facts {
			if !i.hasLabel(k) {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)

		return errors.New().WithData(ErrInvalidInfoFacts, struct {
			Series  string
			Unknown []string
		}{
			Series:  i.name,
			Unknown: unknown,
		})
	}

	i.mu.Lock()
	i.values = values
	i.mu.Unlock()

	return nil
}

func (i *Info) hasLabel(name string) bool {
	for _, label := range i.labelNames {
		if label == name {
			return true
		}
	}

	return false
}
