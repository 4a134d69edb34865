package config

import (
	"time"
)

const (
	defaultShutdownTimeout = 30 * time.Second
	defaultShutdownPoll    = 5 * time.Second
)

// Config defines the app config
type Config struct {
	Node     string   `toml:"node"`
	Version  string   `toml:"version"`
	Request  Request  `toml:"request"`
	Shutdown Shutdown `toml:"shutdown"`
	Log      Log      `toml:"log"`
	Stats    Stats    `toml:"stats"`
	Sentry   Sentry   `toml:"sentry"`

	// App holds the [app] table, which belongs to the service itself
	App Tree `toml:"-"`
}

// Log contains all log-related configuration
type Log struct {
	Level     string `toml:"level"`
	Formatter string `toml:"formatter"`
	Printer   string `toml:"printer"`

	// Tree is the [log] table. Adapters read their own sub-table,
	// e.g. [log.file]
	Tree Tree `toml:"-"`
}

// Stats contains all stats-related configuration
type Stats struct {
	On      bool   `toml:"on"`
	Adapter string `toml:"adapter"`

	// Tree is the [stats] table. Adapters read their own sub-table,
	// e.g. [stats.statsd]
	Tree Tree `toml:"-"`
}

// Sentry configures error reporting. Reporting is off when DSN is empty.
type Sentry struct {
	DSN         string  `toml:"dsn"`
	Environment string  `toml:"environment"`
	SampleRate  float64 `toml:"sample_rate"`
}

// Request defines the request default configuration
type Request struct {
	TimeoutMS int  `toml:"timeout_ms"`
	Panic     bool `toml:"panic"`
	// AllowContext continues the journey ID sent by the caller (Request-Id)
	AllowContext bool `toml:"allow_context"`
}

// Timeout returns the TimeoutMS field in time.Duration
func (r *Request) Timeout() time.Duration {
	return time.Millisecond * time.Duration(r.TimeoutMS)
}

// Shutdown defines how servers drain pending requests
type Shutdown struct {
	TimeoutMS int `toml:"timeout_ms"`
	PollMS    int `toml:"poll_ms"`
}

// Timeout returns how long pending requests may run once draining has
// started, before they get cancelled
func (s *Shutdown) Timeout() time.Duration {
	if s.TimeoutMS <= 0 {
		return defaultShutdownTimeout
	}
	return time.Millisecond * time.Duration(s.TimeoutMS)
}

// Poll returns the interval between two checks of pending requests
func (s *Shutdown) Poll() time.Duration {
	if s.PollMS <= 0 {
		return defaultShutdownPoll
	}
	return time.Millisecond * time.Duration(s.PollMS)
}
