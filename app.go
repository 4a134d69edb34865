// Package rest builds JSON HTTP services. An App wires the config, the
// logger, stats, error reporting and background jobs, then serves requests
// on the registered servers until it gets drained.
package rest

import (
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"

	"github.com/pkg/errors"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/ctx/app"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/log/logger"
	"github.com/stairlin/rest/net"
	"github.com/stairlin/rest/report"
	"github.com/stairlin/rest/report/sentry"
	"github.com/stairlin/rest/stats"
	sa "github.com/stairlin/rest/stats/adapter"
)

// App is the core structure for a new service
type App struct {
	mu    sync.Mutex
	ready chan struct{}

	service  string
	logger   log.Logger
	ctx      app.Ctx
	config   *config.Config
	stats    stats.Stats
	reporter *report.Registry
	servers  *net.Reg
	drain    bool
	done     chan struct{}
}

// New creates a new App from the TOML config located at CONFIG_URI.
// When CONFIG_URI is not set, the default config is used.
func New(service string) (*App, error) {
	c, err := config.Load(os.Getenv("CONFIG_URI"))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load config")
	}
	return NewWithConfig(service, c)
}

// NewWithConfig creates a new App with the given config
func NewWithConfig(service string, c *config.Config) (*App, error) {
	// Create logger
	l, err := logger.New(service, &c.Log)
	if err != nil {
		return nil, errors.Wrap(err, "logger error")
	}

	// Build stats
	s, err := sa.New(&c.Stats)
	if err != nil {
		return nil, errors.Wrap(err, "stats error")
	}
	s.SetLogger(l)

	// Error reporting
	r := report.NewRegistry(l)
	if c.Sentry.DSN != "" {
		o, err := sentry.New(&c.Sentry)
		if err != nil {
			return nil, errors.Wrap(err, "sentry error")
		}
		r.Register(o)
	}

	// Build app context
	ctx := app.NewCtx(service, c, l, s, r)

	a := &App{
		ready:    make(chan struct{}),
		service:  service,
		logger:   l,
		ctx:      ctx,
		config:   c,
		stats:    s,
		reporter: r,
		servers:  net.NewReg(ctx),
		done:     make(chan struct{}),
	}

	// Start background services
	s.Start()
	ctx.BG().Dispatch(newHeartbeat(ctx, heartbeatInterval))

	// Trap OS signals
	go trapSignals(a)

	return a, nil
}

// Config returns the app config
func (a *App) Config() *config.Config {
	return a.config
}

// Ctx returns the application context
func (a *App) Ctx() app.Ctx {
	return a.ctx
}

// Stats returns the stats client. It can be exposed with a server when it
// implements stats.Exporter
func (a *App) Stats() stats.Stats {
	return a.stats
}

// Reporter returns the error reporter registry, where observers can be
// registered
func (a *App) Reporter() *report.Registry {
	return a.reporter
}

// RegisterServer adds the given server to the list of managed servers
func (a *App) RegisterServer(addr string, s net.Server) {
	a.servers.Add(addr, s)
}

// Serve allows servers to serve requests and blocks the call until the app
// is drained
func (a *App) Serve() error {
	defer func() {
		if rec := recover(); rec != nil {
			a.ctx.Error("app.serve.panic", "App panic",
				log.Object("err", rec),
				log.String("stack", string(debug.Stack())),
			)

			// Attempt to clean resources before propagating the panic further up
			a.Drain()
			panic(rec)
		}
	}()

	a.ctx.Trace("app.serve", "Start serving...")

	if err := a.servers.Serve(); err != nil {
		a.ctx.Error("app.serve.err", "Cannot start servers", log.Error(err))
		return err
	}

	// Notify all callees that the app is up and running
	close(a.ready)

	<-a.done // Hang on
	return nil
}

// Ready returns a channel which is closed once all servers are running
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Drain notifies all servers to enter in draining mode. It means they are no
// longer accepting new requests, but they can finish all in-flight requests.
// Then background jobs are stopped and error reporters are flushed.
func (a *App) Drain() {
	a.mu.Lock()
	if a.drain {
		a.mu.Unlock()
		return
	}
	a.drain = true
	a.mu.Unlock()

	a.ctx.Trace("app.drain", "Start draining...")

	a.servers.Drain() // Block all new requests and drain in-flight requests
	a.servers.Wait()
	a.ctx.BG().Drain()
	a.stats.Stop()
	if err := a.reporter.Close(); err != nil {
		a.ctx.Warning("app.drain.report", "Cannot close error reporters", log.Error(err))
	}

	a.ctx.Trace("app.drain.done", "App has been drained")
	if c, ok := a.logger.(interface{ Close() error }); ok {
		c.Close()
	}
	close(a.done) // Release Serve()
}

func trapSignals(a *App) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(ch)

	for {
		select {
		case sig := <-ch:
			a.ctx.Trace("app.signal", "Signal trapped", log.String("sig", sig.String()))
			if sig == syscall.SIGHUP {
				a.reopenLogs()
				continue
			}
			a.Drain()
			return
		case <-a.done:
			return
		}
	}
}

// reopenLogs reopens the log output, e.g. after a log rotation
func (a *App) reopenLogs() {
	r, ok := a.logger.(interface{ Reopen() error })
	if !ok {
		return
	}
	if err := r.Reopen(); err != nil {
		a.ctx.Error("app.log.reopen", "Cannot reopen log output", log.Error(err))
	}
}
