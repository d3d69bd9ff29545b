// Package initializer drives the controller into extended mode and colours its pads.
package initializer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/leandrodaf/padbridge/internal/message"
	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// ErrAborted wraps the port-write error that stopped an initialization attempt.
var ErrAborted = errors.New("initialization aborted")

// Controller addressing used by the sequence.
const (
	ControlChannel = 15  // channel the controller listens on for extended mode
	EnableNote     = 12  // note that toggles extended addressing
	EnableValue    = 127 // velocity that switches it on
	FirstLED       = 96
	LastLED        = 120
	LEDColor       = 47
	CommitCC       = 59
	CommitValue    = 127

	// SequenceLen is the number of writes of a complete initialization.
	SequenceLen = 1 + (LastLED - FirstLED + 1) + 1
)

// State is how far the controller has been taken.
type State int

const (
	Uninitialized State = iota
	Enabling
	Coloring
	Ready
)

func (s State) String() string {
	switch s {
	case Enabling:
		return "enabling"
	case Coloring:
		return "coloring"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

type event struct {
	data [4]byte
	n    int
}

// Initializer is a resumable step machine over a fixed 27-event sequence.
// Start, Step, Active and Progress belong to the real-time side; State may be
// read from any goroutine.
type Initializer struct {
	seq    [SequenceLen]event
	batch  int
	state  atomic.Int32
	next   int
	active bool
}

// New builds the sequence. batch is the maximum number of writes per Step;
// batch <= 0 writes everything left in a single Step.
func New(batch int) *Initializer {
	in := &Initializer{batch: batch}

	enable := message.MustFromDescription("note_on", ControlChannel, EnableNote, EnableValue).Padded()
	in.seq[0] = event{data: enable, n: 4}

	for i := 0; i <= LastLED-FirstLED; i++ {
		led := message.MustFromDescription("note_on", ControlChannel, byte(FirstLED+i), LEDColor).Padded()
		in.seq[1+i] = event{data: led, n: 4}
	}

	commit := message.MustFromDescription("controller_change", ControlChannel, CommitCC, CommitValue).Bytes()
	in.seq[SequenceLen-1] = event{data: [4]byte{commit[0], commit[1], commit[2]}, n: 3}
	return in
}

// Sequence returns a copy of every event in write order.
func (in *Initializer) Sequence() [][]byte {
	out := make([][]byte, SequenceLen)
	for i := range in.seq {
		out[i] = append([]byte(nil), in.seq[i].data[:in.seq[i].n]...)
	}
	return out
}

// Start arms a new attempt from the first event, dropping any attempt in flight.
// State goes back to Uninitialized until the attempt writes its first event.
func (in *Initializer) Start() {
	in.next = 0
	in.active = true
	in.setState(Uninitialized)
}

// Active reports whether an attempt still has events to write.
func (in *Initializer) Active() bool {
	return in.active
}

// State returns the furthest state reached by the current or last attempt.
func (in *Initializer) State() State {
	return State(in.state.Load())
}

func (in *Initializer) setState(s State) {
	in.state.Store(int32(s))
}

// Progress returns the number of events written by the current or last attempt.
func (in *Initializer) Progress() (done, total int) {
	return in.next, SequenceLen
}

// Step writes the next batch of events at time 0. On a write failure the
// attempt is abandoned and State keeps the value it had reached.
func (in *Initializer) Step(w contracts.PortWriter) error {
	if !in.active {
		return nil
	}

	limit := SequenceLen
	if in.batch > 0 && in.next+in.batch < limit {
		limit = in.next + in.batch
	}

	for ; in.next < limit; in.next++ {
		ev := &in.seq[in.next]
		if err := w.Write(0, ev.data[:ev.n]); err != nil {
			in.active = false
			return fmt.Errorf("%w at event %d of %d: %w", ErrAborted, in.next+1, SequenceLen, err)
		}
		in.advance(in.next)
	}

	if in.next == SequenceLen {
		in.active = false
	}
	return nil
}

func (in *Initializer) advance(i int) {
	switch {
	case i == 0:
		in.setState(Enabling)
	case i == SequenceLen-1:
		in.setState(Ready)
	default:
		in.setState(Coloring)
	}
}
