// Package bg runs background jobs attached to the app lifetime, such as the
// heartbeat or the stats flusher. Jobs are stopped when the app drains.
package bg

import (
	"errors"
	"fmt"
	"sync"

	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/stats"
)

// ErrDrain is the error returned when a new job attempts to be started during
// and the registry is draining
var ErrDrain = errors.New("registry is draining")

// ErrDup is the error returned when a new job has already been registered
var ErrDup = errors.New("job has already been registered")

// Job is a an interface to implement to be a background job
type Job interface {
	Start()
	Stop()
}

// Reg (registry) holds a list of running jobs
type Reg struct {
	mu sync.Mutex

	name  string
	drain bool
	log   log.Logger
	stats stats.Stats
	jobs  map[Job]*status
}

// NewReg builds a new registry
func NewReg(name string, l log.Logger, s stats.Stats) *Reg {
	return &Reg{
		name:  name,
		log:   l,
		stats: s,
		jobs:  map[Job]*status{},
	}
}

// Dispatch registers the given job and runs it in background
func (r *Reg) Dispatch(j Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Do not accept new jobs when the registry is draining
	if r.drain {
		return ErrDrain
	}

	// Ensure that it has not been already accepted
	if _, ok := r.jobs[j]; ok {
		return ErrDup
	}

	s := r.register(j)

	go func() {
		// Deregister itself upon completion
		defer func() {
			r.mu.Lock()
			r.deregister(j)
			r.mu.Unlock()
		}()

		r.log.Trace("bg.dispatch", "Start job", jobField(j))
		close(s.started)
		j.Start()
	}()

	return nil
}

// Len returns the number of running jobs
func (r *Reg) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Drain sends a Stop() signal to all registered jobs and rejects new jobs
func (r *Reg) Drain() {
	r.mu.Lock()
	if r.drain {
		r.mu.Unlock()
		return
	}
	r.drain = true

	jobs := make(map[Job]*status, len(r.jobs))
	for j, s := range r.jobs {
		jobs[j] = s
	}
	r.mu.Unlock()

	r.log.Trace("bg.drain.start", "Draining registry", log.Int("jobs", len(jobs)))

	wg := sync.WaitGroup{}
	wg.Add(len(jobs))
	for j, s := range jobs {
		go func(j Job, s *status) {
			defer wg.Done()

			// Wait for job to be started
			<-s.started

			r.log.Trace("bg.drain.stop", "Stop job", jobField(j))
			j.Stop()
		}(j, s)
	}

	wg.Wait()
	r.log.Trace("bg.drain.end", "Registry drained")
}

func (r *Reg) register(j Job) *status {
	s := &status{
		started: make(chan struct{}),
	}
	r.jobs[j] = s
	r.stats.Gauge("bg.jobs", len(r.jobs), map[string]string{"registry": r.name})
	return s
}

func (r *Reg) deregister(j Job) {
	delete(r.jobs, j)
	r.stats.Gauge("bg.jobs", len(r.jobs), map[string]string{"registry": r.name})
}

func jobField(j Job) log.Field {
	return log.String("job", fmt.Sprintf("%T@%p", j, j))
}

type status struct {
	started chan struct{}
}
