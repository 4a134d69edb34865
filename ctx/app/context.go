// Package app defines an application context, which carries information about
// the application environment.
//
// It can be information such as the configuration, the logger, the stats
// client or the error reporter.
package app

import (
	"github.com/stairlin/rest/bg"
	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/ctx"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/report"
	"github.com/stairlin/rest/stats"
)

// Ctx is the app context interface
type Ctx interface {
	ctx.Ctx

	Name() string
	L() log.Logger
	Config() *config.Config
	BG() *bg.Reg
	Reporter() report.Reporter
}

// context holds the application context
type context struct {
	Service   string
	AppConfig *config.Config
	BGReg     *bg.Reg

	l        log.Logger
	lFields  []log.Field
	stats    stats.Stats
	reporter report.Reporter
}

// NewCtx creates a new app context
func NewCtx(
	service string,
	c *config.Config,
	l log.Logger,
	s stats.Stats,
	r report.Reporter,
) Ctx {
	if r == nil {
		r = report.NewRegistry(l)
	}

	lf := []log.Field{
		log.String("node", c.Node),
		log.String("version", c.Version),
		log.String("log_type", "A"),
	}

	return &context{
		Service:   service,
		AppConfig: c,
		BGReg:     bg.NewReg(service, l, s),
		l:         l.AddCalldepth(1),
		lFields:   lf,
		stats:     s,
		reporter:  r,
	}
}

func (c *context) Name() string {
	return c.Service
}

func (c *context) L() log.Logger {
	return c.l
}

func (c *context) Stats() stats.Stats {
	return c.stats
}

func (c *context) Config() *config.Config {
	return c.AppConfig
}

func (c *context) BG() *bg.Reg {
	return c.BGReg
}

func (c *context) Reporter() report.Reporter {
	return c.reporter
}

func (c *context) Trace(tag, msg string, fields ...log.Field) {
	c.l.Trace(tag, msg, c.fields(fields)...)
	c.incLogLevelCount(log.LevelTrace)
}

func (c *context) Warning(tag, msg string, fields ...log.Field) {
	c.l.Warning(tag, msg, c.fields(fields)...)
	c.incLogLevelCount(log.LevelWarning)
}

func (c *context) Error(tag, msg string, fields ...log.Field) {
	c.l.Error(tag, msg, c.fields(fields)...)
	c.incLogLevelCount(log.LevelError)
}

func (c *context) fields(l []log.Field) []log.Field {
	return append(c.lFields[:len(c.lFields):len(c.lFields)], l...)
}

func (c *context) incLogLevelCount(lvl log.Level) {
	tags := map[string]string{
		"level":   lvl.String(),
		"service": c.Service,
		"node":    c.AppConfig.Node,
		"version": c.AppConfig.Version,
	}

	c.stats.Histogram("log.level", 1, tags)
}
