// Package prometheus is a pull-based stats adapter. Metrics are created on
// first use and exposed through Handler.
package prometheus

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/stats"
)

// Name is the adapter name used in the config
const Name = "prometheus"

// Config is the prometheus section of the stats config
//
//	[stats.prometheus]
//	namespace = "myapp"
//	runtime = true
type Config struct {
	Namespace string `toml:"namespace"`
	// Runtime adds the Go runtime and process collectors
	Runtime bool `toml:"runtime"`
}

// New creates a prometheus adapter backed by its own registry
func New(tree config.Tree) (stats.Stats, error) {
	c := Config{}
	if err := tree.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "prometheus config")
	}

	reg := prometheus.NewRegistry()
	if c.Runtime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Adapter{
		namespace:  sanitize(c.Namespace),
		reg:        reg,
		logger:     log.Nop(),
		counters:   map[string]*vec{},
		gauges:     map[string]*vec{},
		histograms: map[string]*vec{},
	}, nil
}

// Adapter records metrics into a prometheus registry
type Adapter struct {
	namespace string
	reg       *prometheus.Registry
	logger    log.Logger

	mu         sync.Mutex
	counters   map[string]*vec
	gauges     map[string]*vec
	histograms map[string]*vec
}

// vec is a metric vector and the label names it has been registered with.
// Subsequent calls with different tags are mapped onto those label names.
type vec struct {
	labels    []string
	counter   *prometheus.CounterVec
	gauge     *prometheus.GaugeVec
	histogram *prometheus.HistogramVec
}

func (a *Adapter) Start() {
	a.logger.Trace("stats.prometheus.start", "Collecting metrics", log.String("namespace", a.namespace))
}

func (a *Adapter) Stop() {}

func (a *Adapter) SetLogger(l log.Logger) {
	a.logger = l
}

// Handler returns an HTTP handler exposing the registry
func (a *Adapter) Handler() http.Handler {
	return promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{})
}

func (a *Adapter) Count(key string, n interface{}, meta ...map[string]string) {
	v, ok := toFloat(n)
	if !ok || v < 0 {
		// Counters only go up
		return
	}
	m, tags := a.counter(key, meta)
	if m != nil {
		m.counter.With(m.values(tags)).Add(v)
	}
}

func (a *Adapter) Inc(key string, meta ...map[string]string) {
	a.updateGauge(key, 1, true, meta)
}

func (a *Adapter) Dec(key string, meta ...map[string]string) {
	a.updateGauge(key, -1, true, meta)
}

func (a *Adapter) Gauge(key string, n interface{}, meta ...map[string]string) {
	if v, ok := toFloat(n); ok {
		a.updateGauge(key, v, false, meta)
	}
}

func (a *Adapter) updateGauge(key string, v float64, add bool, meta []map[string]string) {
	m, tags := a.gauge(key, meta)
	if m == nil {
		return
	}
	g := m.gauge.With(m.values(tags))
	if add {
		g.Add(v)
	} else {
		g.Set(v)
	}
}

func (a *Adapter) Timing(key string, t time.Duration, meta ...map[string]string) {
	m, tags := a.histogram(key+"_seconds", meta)
	if m != nil {
		m.histogram.With(m.values(tags)).Observe(t.Seconds())
	}
}

func (a *Adapter) Histogram(key string, n interface{}, meta ...map[string]string) {
	v, ok := toFloat(n)
	if !ok {
		return
	}
	m, tags := a.histogram(key, meta)
	if m != nil {
		m.histogram.With(m.values(tags)).Observe(v)
	}
}

func (a *Adapter) counter(key string, meta []map[string]string) (*vec, map[string]string) {
	return a.lookup(a.counters, key, meta, func(name string, labels []string) (*vec, prometheus.Collector) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: a.namespace,
			Name:      name,
			Help:      "Counter " + name,
		}, labels)
		return &vec{labels: labels, counter: c}, c
	})
}

func (a *Adapter) gauge(key string, meta []map[string]string) (*vec, map[string]string) {
	return a.lookup(a.gauges, key, meta, func(name string, labels []string) (*vec, prometheus.Collector) {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: a.namespace,
			Name:      name,
			Help:      "Gauge " + name,
		}, labels)
		return &vec{labels: labels, gauge: g}, g
	})
}

func (a *Adapter) histogram(key string, meta []map[string]string) (*vec, map[string]string) {
	return a.lookup(a.histograms, key, meta, func(name string, labels []string) (*vec, prometheus.Collector) {
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: a.namespace,
			Name:      name,
			Help:      "Histogram " + name,
			Buckets:   prometheus.DefBuckets,
		}, labels)
		return &vec{labels: labels, histogram: h}, h
	})
}

func (a *Adapter) lookup(
	m map[string]*vec,
	key string,
	meta []map[string]string,
	build func(name string, labels []string) (*vec, prometheus.Collector),
) (*vec, map[string]string) {
	tags := map[string]string{}
	for _, t := range meta {
		for k, v := range t {
			tags[sanitize(k)] = v
		}
	}

	name := sanitize(key)

	a.mu.Lock()
	defer a.mu.Unlock()

	if v, ok := m[name]; ok {
		return v, tags
	}

	labels := make([]string, 0, len(tags))
	for k := range tags {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	v, c := build(name, labels)
	if err := a.reg.Register(c); err != nil {
		a.logger.Warning("stats.prometheus.register", "Cannot register metric",
			log.String("name", name),
			log.Error(err),
		)
		return nil, nil
	}
	m[name] = v
	return v, tags
}

// values maps tags onto the registered label names. Missing labels are
// left empty and unknown ones are dropped.
func (v *vec) values(tags map[string]string) prometheus.Labels {
	l := make(prometheus.Labels, len(v.labels))
	for _, k := range v.labels {
		l[k] = tags[k]
	}
	return l
}

// sanitize converts a dotted metric key (e.g. http.request) into a valid
// prometheus name (e.g. http_request)
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}

func toFloat(n interface{}) (float64, bool) {
	switch v := n.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case time.Duration:
		return v.Seconds(), true
	}
	return 0, false
}
