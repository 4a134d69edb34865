// Package report forwards unexpected errors to external observers, such as
// an error tracking service. Observers are registered on a Registry which is
// shared by the whole app.
package report

import (
	"context"
	"sync"

	"github.com/stairlin/rest/log"
)

// Fields carries context about the failure (e.g. the request URL, headers,
// or the user ID)
type Fields map[string]interface{}

// Observer receives reported errors
type Observer interface {
	Report(ctx context.Context, err error, fields Fields)
	Close() error
}

// Reporter is the interface exposed to contexts
type Reporter interface {
	Report(ctx context.Context, err error, fields Fields)
}

// Registry dispatches reports to all registered observers
type Registry struct {
	mu   sync.RWMutex
	next int
	obs  map[int]Observer
	log  log.Logger
}

// NewRegistry returns an empty registry
func NewRegistry(l log.Logger) *Registry {
	if l == nil {
		l = log.Nop()
	}
	return &Registry{
		obs: map[int]Observer{},
		log: l,
	}
}

// Register adds o to the registry. The returned function removes it.
func (r *Registry) Register(o Observer) (deregister func()) {
	r.mu.Lock()
	id := r.next
	r.next++
	r.obs[id] = o
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.obs, id)
			r.mu.Unlock()
		})
	}
}

// Len returns the number of registered observers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.obs)
}

// Report sends err to every observer. Each observer receives its own copy of
// fields.
func (r *Registry) Report(ctx context.Context, err error, fields Fields) {
	if err == nil {
		return
	}

	r.mu.RLock()
	l := make([]Observer, 0, len(r.obs))
	for _, o := range r.obs {
		l = append(l, o)
	}
	r.mu.RUnlock()

	for _, o := range l {
		o.Report(ctx, err, fields.clone())
	}
}

// Close flushes and removes all observers
func (r *Registry) Close() error {
	r.mu.Lock()
	l := r.obs
	r.obs = map[int]Observer{}
	r.mu.Unlock()

	var first error
	for _, o := range l {
		if err := o.Close(); err != nil {
			r.log.Warning("report.close", "Cannot close observer", log.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (f Fields) clone() Fields {
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}
