package bg

// Task is a job which runs a function once. Stop waits for the function to
// return.
type Task struct {
	f    func()
	done chan struct{}
}

// NewTask wraps f in a job
func NewTask(f func()) *Task {
	return &Task{
		f:    f,
		done: make(chan struct{}),
	}
}

// Start runs the function
func (t *Task) Start() {
	defer close(t.done)
	t.f()
}

// Stop blocks until the function returns
func (t *Task) Stop() {
	<-t.done
}
