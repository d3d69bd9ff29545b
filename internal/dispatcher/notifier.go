package dispatcher

import (
	"sync/atomic"
)

// StatusKind classifies a status report sent from the real-time side.
type StatusKind int

const (
	WriteOK StatusKind = iota
	WriteFailed
	InitStarted
	InitProgress
	InitDone
	InitFailed
	ChannelPoisoned
)

func (k StatusKind) String() string {
	switch k {
	case WriteOK:
		return "write ok"
	case WriteFailed:
		return "write failed"
	case InitStarted:
		return "init started"
	case InitProgress:
		return "init progress"
	case InitDone:
		return "init done"
	case InitFailed:
		return "init failed"
	case ChannelPoisoned:
		return "channel poisoned"
	default:
		return "unknown"
	}
}

// Status is a fixed-size report; building one does not allocate.
type Status struct {
	Kind  StatusKind
	Bytes [4]byte // event written, for WriteOK and WriteFailed
	N     int     // valid bytes in Bytes
	Done  int     // init events written so far
	Total int     // init events in a full sequence
	Err   error   // underlying port-write error
}

// Event returns the written bytes.
func (s Status) Event() []byte {
	return s.Bytes[:s.N]
}

// Notifier is the one-way status path from the consumer to the console.
type Notifier struct {
	ch      chan Status
	dropped atomic.Uint64
}

// NewNotifier creates a notifier that buffers up to size reports.
func NewNotifier(size int) *Notifier {
	if size < 1 {
		size = 1
	}
	return &Notifier{ch: make(chan Status, size)}
}

// Notify hands s to the display side. When the buffer is full the report is
// dropped and counted; the caller is never blocked.
func (n *Notifier) Notify(s Status) {
	select {
	case n.ch <- s:
	default:
		n.dropped.Add(1)
	}
}

// C returns the receiving side.
func (n *Notifier) C() <-chan Status {
	return n.ch
}

// Dropped returns how many reports were discarded because the buffer was full.
func (n *Notifier) Dropped() uint64 {
	return n.dropped.Load()
}
