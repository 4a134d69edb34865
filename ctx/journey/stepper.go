package journey

import (
	"fmt"
	"strings"
	"sync"
)

const stepperSeparator = "_"

// Stepper numbers the log lines of a journey. Each branch (child or
// background journey) appends its own counter, e.g. 0004_0002.
type Stepper struct {
	mu sync.Mutex

	Steps []uint32
	I     int
}

// NewStepper builds a new main stepper
func NewStepper() *Stepper {
	return &Stepper{
		Steps: []uint32{0},
		I:     0,
	}
}

// BranchOff returns a new "child" stepper
func (s *Stepper) BranchOff() *Stepper {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Steps[s.I]++

	steps := make([]uint32, len(s.Steps)+1)
	copy(steps, s.Steps)
	return &Stepper{
		Steps: steps,
		I:     s.I + 1,
	}
}

// Inc increments the current counter
func (s *Stepper) Inc() uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Steps[s.I]++
	return uint(s.Steps[s.I])
}

// String returns a string representation of the current state
func (s *Stepper) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := make([]string, len(s.Steps))
	for i, step := range s.Steps {
		l[i] = fmt.Sprintf("%04d", step)
	}
	return strings.Join(l, stepperSeparator)
}
