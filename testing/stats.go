package testing

import (
	"sync"
	"testing"
	"time"

	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/stats"
)

// Stats is a simple Stats interface useful for tests. It only counts calls
// per key.
type Stats struct {
	t *testing.T

	mu    sync.Mutex
	calls map[string]int
}

// NewStats creates a new stats
func NewStats(t *testing.T) stats.Stats {
	return &Stats{t: t, calls: map[string]int{}}
}

// Calls returns the number of metrics recorded for key
func (s *Stats) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *Stats) inc(key string) {
	s.mu.Lock()
	s.calls[key]++
	s.mu.Unlock()
}

func (s *Stats) Start()                 {}
func (s *Stats) Stop()                  {}
func (s *Stats) SetLogger(l log.Logger) {}

func (s *Stats) Count(key string, n interface{}, meta ...map[string]string)     { s.inc(key) }
func (s *Stats) Inc(key string, meta ...map[string]string)                      { s.inc(key) }
func (s *Stats) Dec(key string, meta ...map[string]string)                      { s.inc(key) }
func (s *Stats) Gauge(key string, n interface{}, meta ...map[string]string)     { s.inc(key) }
func (s *Stats) Timing(key string, t time.Duration, meta ...map[string]string)  { s.inc(key) }
func (s *Stats) Histogram(key string, n interface{}, meta ...map[string]string) { s.inc(key) }
