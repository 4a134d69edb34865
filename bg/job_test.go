package bg_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stairlin/rest/bg"
	lt "github.com/stairlin/rest/testing"
)

// TestJobRegistration tests whether a running job can be registered once and
// only once
func TestJobRegistration(t *testing.T) {
	tt := lt.New(t)
	reg := bg.NewReg("TestJobRegistration", tt.Logger(), tt.Stats())
	job := NewDummyJob(time.Microsecond)

	if err := reg.Dispatch(job); err != nil {
		t.Error("expect to be able to start job after its first registration", err)
	}

	if err := reg.Dispatch(job); err != bg.ErrDup {
		t.Error("expect registration to fail when the same job is registered twice")
	}
}

// TestJobDeregistration tests whether a job can be registered once again
// after its completion
func TestJobDeregistration(t *testing.T) {
	tt := lt.New(t)
	reg := bg.NewReg("TestJobDeregistration", tt.Logger(), tt.Stats())
	job := NewDummyJob(time.Microsecond)
	job.exec = time.Microsecond * 5

	if err := reg.Dispatch(job); err != nil {
		t.Error("expect to be able to start job after its first registration", err)
	}

	<-job.done // wait for job to stop
	for i := 0; reg.Len() > 0 && i < 100; i++ {
		time.Sleep(time.Millisecond)
	}
	job.reset()

	if err := reg.Dispatch(job); err != nil {
		t.Errorf("expect to be able to start job again once deregistered (%s)", err)
	}
}

// TestJobRegistrationDrainMode tests whether jobs are properly rejected
// when the registry is in drain mode
func TestJobRegistrationDrainMode(t *testing.T) {
	tt := lt.New(t)
	reg := bg.NewReg("TestJobRegistrationDrainMode", tt.Logger(), tt.Stats())

	// Set registry to drain mode
	reg.Drain()

	// Attempt to register job
	if err := reg.Dispatch(NewDummyJob(0)); err != bg.ErrDrain {
		t.Errorf("expect to reject job when registry is in drain mode (%s)", err)
	}
}

// TestJobDraining tests whether the registry drains properly the in-flight jobs
func TestJobDraining(t *testing.T) {
	tt := lt.New(t)
	reg := bg.NewReg("TestJobDraining", tt.Logger(), tt.Stats())

	jobs := []*DummyJob{
		NewDummyJob(0),
		NewDummyJob(0),
		NewDummyJob(time.Microsecond),
		NewDummyJob(time.Microsecond * 2),
		NewDummyJob(time.Microsecond * 4),
		NewDummyJob(time.Microsecond * 16),
		NewDummyJob(time.Microsecond * 256),
	}

	// Register all jobs
	for _, j := range jobs {
		if err := reg.Dispatch(j); err != nil {
			t.Error("expect to be able to start job", err)
		}
	}

	// Start draining
	reg.Drain()

	// Ensure that all jobs have been stopped
	for i, j := range jobs {
		select {
		case <-j.done:
		case <-time.After(time.Second):
			t.Errorf("job <%d : %p> - is still running (%d)", i, j, j.drain)
		}
		if !j.isStopped() {
			t.Errorf("job <%d : %p> - has not been stopped", i, j)
		}
	}
	if n := reg.Len(); n != 0 {
		t.Logf("%d jobs still deregistering", n)
	}
}

type DummyJob struct {
	mu      sync.Mutex
	started bool          // has been started
	stopped bool          // has been stopped
	running bool          // is currently running
	exec    time.Duration // simulate time to execute the job (0 = infinite)
	drain   time.Duration // simulate time to drain the job
	stop    chan struct{} // ask job to stop
	done    chan struct{} // signal that a job has stopped
}

func NewDummyJob(d time.Duration) *DummyJob {
	return &DummyJob{
		drain: d,
		stop:  make(chan struct{}),
		done:  make(chan struct{}, 1),
	}
}

func (j *DummyJob) Start() {
	j.mu.Lock()
	j.started = true
	j.running = true

	if j.exec == 0 {
		j.mu.Unlock()
		<-j.stop
		time.Sleep(j.drain)
	} else {
		j.mu.Unlock()
		time.Sleep(j.exec)
	}

	j.mu.Lock()
	j.running = false
	j.done <- struct{}{}
	j.mu.Unlock()
}

func (j *DummyJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.stopped = true
	if j.exec == 0 {
		close(j.stop)
	}
}

func (j *DummyJob) isStopped() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stopped
}

func (j *DummyJob) reset() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.started = false
	j.stopped = false
	j.running = false
	j.stop = make(chan struct{})
	j.done = make(chan struct{}, 1)
}
