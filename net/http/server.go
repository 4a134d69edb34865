package http

import (
	"context"
	stdnet "net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/stairlin/rest/ctx/app"
	"github.com/stairlin/rest/ctx/journey"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/net"
)

// A Server defines parameters for running a JSON HTTP server
type Server struct {
	mu       sync.Mutex
	state    uint32
	inFlight int64

	http   http.Server
	app    app.Ctx
	cancel context.CancelFunc

	rs          *resourceServer
	endpoints   []Endpoint
	middlewares []Middleware
	fallback    *fallbackEndpoint

	shutdownTimeout time.Duration
	pollInterval    time.Duration

	certFile string
	keyFile  string
}

// NewServer creates a new server and attaches the default middlewares
func NewServer() *Server {
	rs := &resourceServer{envelope: Identity}
	s := &Server{
		rs:       rs,
		fallback: &fallbackEndpoint{rs: rs},
	}
	s.Append(mwDebug)
	s.Append(mwStats)
	s.Append(mwLogging)
	s.Append(mwPanic)
	return s
}

// Route registers a resource on the given regular expression.
// Routes are matched in registration order against the start of the
// request path.
func (s *Server) Route(pattern string, res *Resource) {
	if res == nil {
		panic("http: nil resource on route " + pattern)
	}
	s.RoutePath(pattern, func(map[string]string, []string) *Resource {
		return res
	})
}

// RoutePath registers a factory on the given regular expression. The
// factory builds a new resource for every request from the captured groups.
// When it returns nil, the client gets a 404.
func (s *Server) RoutePath(pattern string, f PathFactory) {
	s.HandleEndpoint(newRouteEndpoint(pattern, f, s.rs))
}

// SetFallback sets the handler of requests which do not match any route.
// By default, they get a JSON 404.
func (s *Server) SetFallback(h http.Handler) {
	s.fallback.handler = h
}

// HandleStatic registers a new route on the given path with path prefix
// to serve static files from the provided root directory
func (s *Server) HandleStatic(prefix, root string) {
	s.HandleEndpoint(&fileEndpoint{
		prefix: prefix,
		root:   http.Dir(root),
		rs:     s.rs,
	})
}

// Handle registers a standard net/http handler on the given path prefix,
// e.g. a metrics exporter
func (s *Server) Handle(prefix string, h http.Handler) {
	s.HandleEndpoint(&handlerEndpoint{prefix: prefix, handler: h})
}

// HandleEndpoint registers an endpoint.
// This is particularily useful for custom endpoint types
func (s *Server) HandleEndpoint(e Endpoint) {
	s.endpoints = append(s.endpoints, e)
}

// Append appends the given middleware to the call chain
func (s *Server) Append(m Middleware) {
	s.middlewares = append(s.middlewares, m)
}

// ActivateTLS activates TLS on this server. That means only incoming HTTPS
// connections are allowed.
//
// If the certificate is signed by a certificate authority, the certFile should
// be the concatenation of the server's certificate, any intermediates,
// and the CA's certificate.
func (s *Server) ActivateTLS(certFile, keyFile string) {
	s.certFile = certFile
	s.keyFile = keyFile
}

// SetOptions changes the server options
func (s *Server) SetOptions(opts ...Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// Handler builds the router serving all registered endpoints
func (s *Server) Handler(ctx app.Ctx) http.Handler {
	r := mux.NewRouter()
	r.SkipClean(true)
	for _, e := range s.endpoints {
		ctx.Trace("s.http.route", "Register route",
			log.String("path", e.Path()),
			log.Type("endpoint", e),
		)
		e.Attach(r, s.buildHandler(ctx, e))
	}
	s.fallback.Attach(r, s.buildHandler(ctx, s.fallback))
	return r
}

// Serve starts serving HTTP requests (blocking call)
func (s *Server) Serve(addr string, ctx app.Ctx) error {
	// base outlives Serve, so that a drain lets in-flight requests complete.
	// It is cancelled by Drain, or below when serving fails.
	base, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.app = ctx
	s.cancel = cancel
	s.http.Addr = addr
	s.http.Handler = s.Handler(ctx)
	s.http.BaseContext = func(stdnet.Listener) context.Context { return base }
	s.http.ErrorLog = log.NewStdLogger(ctx.L(), "s.http.error", log.LevelWarning)
	s.mu.Unlock()

	tlsEnabled := s.certFile != "" && s.keyFile != ""
	ctx.Trace("s.http.listen", "Listening...", log.String("addr", addr),
		log.Bool("tls", tlsEnabled),
	)

	atomic.CompareAndSwapUint32(&s.state, net.StateDown, net.StateUp)
	var err error
	if tlsEnabled {
		err = s.http.ListenAndServeTLS(s.certFile, s.keyFile)
	} else {
		err = s.http.ListenAndServe()
	}
	atomic.CompareAndSwapUint32(&s.state, net.StateUp, net.StateDown)

	if err == http.ErrServerClosed {
		// Suppress error caused by a server Shutdown or Close
		return nil
	}
	cancel()
	return err
}

// Drain puts the server into drain mode. It stops listening, all new requests
// on open connections are rejected with a 503, and it blocks until all
// in-flight requests have been completed.
//
// Pending requests are cancelled once the shutdown timeout is reached.
func (s *Server) Drain() {
	atomic.StoreUint32(&s.state, net.StateDrain)

	s.mu.Lock()
	app, cancel := s.app, s.cancel
	s.mu.Unlock()
	if app == nil {
		// Not serving yet
		s.http.Shutdown(context.Background())
		return
	}

	timeout := s.shutdownTimeout
	if timeout == 0 {
		timeout = app.Config().Shutdown.Timeout()
	}
	poll := s.pollInterval
	if poll == 0 {
		poll = app.Config().Shutdown.Poll()
	}

	app.Trace("s.http.drain", "Shutdown requested",
		log.Int64("pending", s.Pending()),
		log.Duration("timeout", timeout),
	)

	ctx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()
	done := make(chan error, 1)
	go func() {
		done <- s.http.Shutdown(ctx)
	}()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			if err == nil {
				app.Trace("s.http.drain.done", "No pending requests, shutting down!")
				cancel()
				return
			}
			app.Warning("s.http.drain.timeout", "Timeout reached, cancelling pending requests",
				log.Int64("pending", s.Pending()),
				log.Error(err),
			)
			cancel()
			s.http.Close()
			return
		case <-ticker.C:
			app.Trace("s.http.drain.wait", "Requests still running, waiting...",
				log.Int64("pending", s.Pending()),
			)
		}
	}
}

// Pending returns the number of in-flight requests
func (s *Server) Pending() int64 {
	return atomic.LoadInt64(&s.inFlight)
}

// isState checks the current server state
func (s *Server) isState(state uint32) bool {
	return atomic.LoadUint32(&s.state) == state
}

func (s *Server) buildHandler(app app.Ctx, e Endpoint) http.Handler {
	serve := buildMiddlewareChain(s.middlewares, e.Serve)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&s.inFlight, 1)
		defer atomic.AddInt64(&s.inFlight, -1)

		// Wrap net/http parameters
		res := &responseWriter{http: w}
		req := &Request{
			startTime: time.Now(),
			path:      e.Path(),
			HTTP:      r,
		}

		// Start or resume journey
		var id string
		if app.Config().Request.AllowContext {
			id = r.Header.Get(HeaderRequestID)
		}
		ctx := journey.NewFrom(r.Context(), app, id)
		defer ctx.End()

		if s.isState(net.StateDrain) {
			ctx.Trace("http.draining", "Server is draining")
			s.rs.renderCtx(ctx, res, req, nil).send(
				nil, http.StatusServiceUnavailable, "503 Service Unavailable",
			)
			return
		}

		// Handle request
		serve(ctx, res, req)
	})
}
