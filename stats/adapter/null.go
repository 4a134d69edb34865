package adapter

import (
	"time"

	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/stats"
)

// Null returns a stats adapter that does not do anything
func Null() stats.Stats {
	return &null{}
}

type null struct{}

func (s *null) Start()                                                         {}
func (s *null) Stop()                                                          {}
func (s *null) SetLogger(l log.Logger)                                         {}
func (s *null) Count(key string, n interface{}, meta ...map[string]string)     {}
func (s *null) Inc(key string, meta ...map[string]string)                      {}
func (s *null) Dec(key string, meta ...map[string]string)                      {}
func (s *null) Gauge(key string, n interface{}, meta ...map[string]string)     {}
func (s *null) Timing(key string, t time.Duration, meta ...map[string]string)  {}
func (s *null) Histogram(key string, n interface{}, meta ...map[string]string) {}
