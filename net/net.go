// Package net manages the servers of an app. It starts them together and
// drains them together.
package net

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/stairlin/rest/ctx/app"
	"github.com/stairlin/rest/log"
)

const (
	// StateDown mode is the default state. The server is not ready to accept
	// new connections
	StateDown uint32 = iota
	// StateUp mode is when a server accepts connections
	StateUp
	// StateDrain mode is when a server stops accepting new connections, but
	// waits for all existing in-flight requests to complete
	StateDrain
)

// ErrEmptyReg is the error returned when there are no servers registered
var ErrEmptyReg = errors.New("there must be at least one registered server")

// Server is the interface to implement to be a valid server
type Server interface {
	// Serve serves requests on addr until the server is drained (blocking call)
	Serve(addr string, ctx app.Ctx) error
	// Drain stops accepting requests and waits for in-flight requests
	Drain()
}

// Reg (registry) holds the servers of an app, keyed by address
type Reg struct {
	mu sync.Mutex
	wg sync.WaitGroup

	ctx   app.Ctx
	l     map[string]Server
	drain bool
}

// NewReg builds a new registry
func NewReg(ctx app.Ctx) *Reg {
	return &Reg{
		ctx: ctx,
		l:   map[string]Server{},
	}
}

// Add adds the given server to the list of servers
func (r *Reg) Add(addr string, s Server) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.register(addr, s); err != nil {
		// Registering twice the same address is a config error, so it fails
		// loudly and as fast as possible
		panic(err)
	}
}

// Len returns the number of running or registered servers
func (r *Reg) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.l)
}

// Serve starts all registered servers. It returns once they have all been
// started.
func (r *Reg) Serve() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.l) == 0 {
		return ErrEmptyReg
	}

	r.ctx.Trace("server.serve.init", "Starting servers...")

	boot := sync.WaitGroup{}
	boot.Add(len(r.l))
	r.wg.Add(len(r.l))
	for addr, s := range r.l {
		go func(addr string, s Server) {
			defer r.wg.Done()
			// Deregister itself upon completion
			defer func() {
				r.ctx.Trace("server.serve.stop", "Server has stopped running",
					log.String("addr", addr),
					log.Type("server", s),
				)
				r.mu.Lock()
				r.deregister(addr)
				r.mu.Unlock()
			}()

			r.ctx.Trace("server.serve.start", "Server starts serving",
				log.String("addr", addr),
				log.Type("server", s),
			)
			boot.Done()
			if err := s.Serve(addr, r.ctx); err != nil {
				r.ctx.Error("server.serve.err", "Server error",
					log.String("addr", addr),
					log.Error(err),
				)
			}
		}(addr, s)
	}

	boot.Wait()
	r.ctx.Trace("server.serve.ready", "All servers are running")
	return nil
}

// Wait blocks until all servers have stopped running
func (r *Reg) Wait() {
	r.wg.Wait()
}

// Drain notifies all servers to enter in draining mode. It means they are no
// longer accepting new requests, but they can finish all in-flight requests
func (r *Reg) Drain() {
	r.mu.Lock()
	if r.drain {
		r.mu.Unlock()
		return
	}
	r.drain = true
	servers := make([]Server, 0, len(r.l))
	for _, s := range r.l {
		servers = append(servers, s)
	}
	r.mu.Unlock()

	r.ctx.Trace("server.drain.init", "Start draining",
		log.Int("servers", len(servers)),
	)
	wg := sync.WaitGroup{}
	wg.Add(len(servers))
	for _, s := range servers {
		r.ctx.Trace("server.drain.s", "Drain server",
			log.Type("server", s),
		)
		go func(s Server) {
			defer wg.Done()
			s.Drain()
		}(s)
	}
	wg.Wait()

	r.mu.Lock()
	r.drain = false
	r.mu.Unlock()
	r.ctx.Trace("server.drain.done", "All servers have been drained")
}

func (r *Reg) register(addr string, s Server) error {
	if _, ok := r.l[addr]; ok {
		return fmt.Errorf(
			"server listening on <%s> has already been registered (%T)",
			addr,
			r.l[addr],
		)
	}

	r.l[addr] = s
	return nil
}

func (r *Reg) deregister(addr string) {
	delete(r.l, addr)
}
