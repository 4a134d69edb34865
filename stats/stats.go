// Package stats defines the metrics interface used across the app.
// Adapters live under stats/adapter.
package stats

import (
	"net/http"
	"time"

	"github.com/stairlin/rest/log"
)

// Stats is an interface for app statistics
type Stats interface {
	Start()
	Stop()
	SetLogger(l log.Logger)

	Count(key string, n interface{}, meta ...map[string]string)
	Inc(key string, meta ...map[string]string)
	Dec(key string, meta ...map[string]string)
	Gauge(key string, n interface{}, meta ...map[string]string)
	Timing(key string, t time.Duration, meta ...map[string]string)
	Histogram(key string, n interface{}, meta ...map[string]string)
}

// Exporter is implemented by pull-based adapters which expose their metrics
// over HTTP (e.g. Prometheus)
type Exporter interface {
	Handler() http.Handler
}
