package host

import (
	"errors"
	"fmt"
)

// Errors returned by CycleBuffer.Write.
var (
	ErrBufferFull = errors.New("midi buffer full")
	ErrLateEvent  = errors.New("event time beyond cycle")
)

type span struct {
	time uint32
	off  int
	n    int
}

// CycleBuffer is the per-cycle output event buffer handed to the process callback.
// All storage is allocated up front; Write copies into it.
type CycleBuffer struct {
	frames uint32
	arena  []byte
	used   int
	events []span
}

// NewCycleBuffer allocates room for maxEvents events totalling maxBytes bytes.
func NewCycleBuffer(frames, maxEvents, maxBytes int) *CycleBuffer {
	return &CycleBuffer{
		frames: uint32(frames),
		arena:  make([]byte, maxBytes),
		events: make([]span, 0, maxEvents),
	}
}

// Reset empties the buffer at the start of a cycle.
func (b *CycleBuffer) Reset() {
	b.used = 0
	b.events = b.events[:0]
}

// Write queues data at frame offset time within the current cycle.
func (b *CycleBuffer) Write(time uint32, data []byte) error {
	if time >= b.frames {
		return fmt.Errorf("%w: %d >= %d", ErrLateEvent, time, b.frames)
	}
	if len(b.events) == cap(b.events) || b.used+len(data) > len(b.arena) {
		return ErrBufferFull
	}
	n := copy(b.arena[b.used:], data)
	b.events = append(b.events, span{time: time, off: b.used, n: n})
	b.used += n
	return nil
}

// Len returns the number of queued events.
func (b *CycleBuffer) Len() int {
	return len(b.events)
}

// Each calls fn for every queued event in write order. data aliases the buffer
// and is only valid until the next Reset.
func (b *CycleBuffer) Each(fn func(time uint32, data []byte)) {
	for _, ev := range b.events {
		fn(ev.time, b.arena[ev.off:ev.off+ev.n])
	}
}
