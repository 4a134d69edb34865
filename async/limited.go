package async

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ErrInvalidLimit is returned by Limited when the concurrency limit is lower
// than one
var ErrInvalidLimit = errors.New("async: limit must be at least 1")

// Factory creates and starts a task. It is only called once the runner
// schedules the task.
type Factory[T any] func() *Future[T]

// FirstError is the failure of a batch. It carries the index of the first
// task which failed.
type FirstError struct {
	Index int
	Cause error
}

func (e *FirstError) Error() string {
	return fmt.Sprintf("task %d failed: %s", e.Index, e.Cause)
}

// Unwrap returns the task error
func (e *FirstError) Unwrap() error {
	return e.Cause
}

// Limited runs the tasks created by factories with at most limit tasks in
// flight. Tasks are started in order, and each successful task is replaced by
// the next pending one.
//
// The returned future resolves with the results in the order of factories.
// It is rejected with a *FirstError as soon as a task fails. Tasks which are
// already running at that point are not cancelled, and their outcome is
// discarded.
func Limited[T any](factories []Factory[T], limit int) (*Future[[]T], error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	r := &runner[T]{
		res:     NewFuture[[]T](),
		results: make([]T, len(factories)),
		queue:   make([]entry[T], len(factories)),
	}
	for i, f := range factories {
		r.queue[i] = entry[T]{index: i, factory: f}
	}

	if len(factories) == 0 {
		r.res.Resolve(r.results)
		return r.res, nil
	}

	if limit > len(factories) {
		limit = len(factories)
	}
	r.refill(limit)
	return r.res, nil
}

type entry[T any] struct {
	index   int
	factory Factory[T]
}

// runner holds the state of a batch. The lock guards the state only; it is
// released before a factory runs or a callback fires, since tasks may settle
// synchronously and call back into the runner.
type runner[T any] struct {
	res *Future[[]T]

	mu       sync.Mutex
	queue    []entry[T]
	results  []T
	inFlight int
	settled  bool

	// slots is the number of freed slots waiting for a task. Only one
	// refill loop runs at a time, others just add their slots to it, so
	// that tasks settling synchronously do not grow the stack.
	slots   int
	running bool
}

// refill starts up to n pending tasks, and resolves the batch once every
// task has succeeded.
func (r *runner[T]) refill(n int) {
	r.mu.Lock()
	r.slots += n
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	for r.slots > 0 {
		if r.settled || len(r.queue) == 0 {
			r.slots = 0
			break
		}
		r.slots--
		e := r.queue[0]
		r.queue = r.queue[1:]
		r.inFlight++
		r.mu.Unlock()

		r.start(e)

		r.mu.Lock()
	}
	r.running = false
	done := !r.settled && r.inFlight == 0 && len(r.queue) == 0
	if done {
		r.settled = true
	}
	results := r.results
	r.mu.Unlock()

	if done {
		r.res.Resolve(results)
	}
}

func (r *runner[T]) start(e entry[T]) {
	t := e.factory()
	if t == nil {
		t = Rejected[T](errors.New("async: factory returned no task"))
	}
	t.Then(func(v T, err error) {
		r.complete(e.index, v, err)
	})
}

func (r *runner[T]) complete(index int, v T, err error) {
	r.mu.Lock()
	r.inFlight--
	if r.settled {
		r.mu.Unlock()
		return
	}
	if err != nil {
		r.settled = true
		r.mu.Unlock()

		r.res.Reject(&FirstError{Index: index, Cause: err})
		return
	}
	r.results[index] = v
	r.mu.Unlock()

	r.refill(1)
}
