package testing

import (
	"testing"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/ctx/app"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/report"
	"github.com/stairlin/rest/stats"
)

// T is a wrapper of go standard testing.T
// It adds a few additional functions useful to rest
type T struct {
	*testing.T

	logger   log.Logger
	stats    stats.Stats
	config   *config.Config
	reporter *report.Registry
}

// New returns a new instance of T
func New(t *testing.T) *T {
	l := NewLogger(t, true)
	return &T{
		T:        t,
		logger:   l,
		stats:    NewStats(t),
		config:   config.Default(),
		reporter: report.NewRegistry(l),
	}
}

// Logger returns a rest logger interface
func (t *T) Logger() log.Logger {
	return t.logger
}

// Stats returns a rest stats interface
func (t *T) Stats() stats.Stats {
	return t.stats
}

// Config returns a default config
func (t *T) Config() *config.Config {
	return t.config
}

// Reporter returns the error reporter registry shared by the app contexts
func (t *T) Reporter() *report.Registry {
	return t.reporter
}

// NewAppCtx returns an app context wired to the test logger, stats and reporter
func (t *T) NewAppCtx(name string) app.Ctx {
	return app.NewCtx(name, t.Config(), t.Logger(), t.Stats(), t.Reporter())
}

// DisableStrictMode will stop making error logs failing a test
func (t *T) DisableStrictMode() {
	t.logger = NewLogger(t.T, false)
}
