// Package porttest provides port writers for tests.
package porttest

import (
	"errors"
	"sync"
)

// ErrInjected is the failure returned by a Recorder once FailAfter writes succeeded.
var ErrInjected = errors.New("injected write failure")

// Recorder is a contracts.PortWriter that keeps a copy of every write.
type Recorder struct {
	mu     sync.Mutex
	events [][]byte
	times  []uint32

	// FailAfter makes every write after the first FailAfter ones fail. Negative disables it.
	FailAfter int
}

// NewRecorder returns a Recorder that never fails.
func NewRecorder() *Recorder {
	return &Recorder{FailAfter: -1}
}

// NewFailingRecorder returns a Recorder whose writes fail after n successes.
func NewFailingRecorder(n int) *Recorder {
	return &Recorder{FailAfter: n}
}

func (r *Recorder) Write(time uint32, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAfter >= 0 && len(r.events) >= r.FailAfter {
		return ErrInjected
	}
	r.events = append(r.events, append([]byte(nil), data...))
	r.times = append(r.times, time)
	return nil
}

// Events returns the recorded writes in order.
func (r *Recorder) Events() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.events...)
}

// Times returns the time offset of each recorded write.
func (r *Recorder) Times() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.times...)
}

// Len returns the number of recorded writes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset forgets recorded writes and disables failures.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events, r.times = nil, nil
	r.FailAfter = -1
}
