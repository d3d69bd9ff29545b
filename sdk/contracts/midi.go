package contracts

// PortWriter is the port-write primitive available inside a processing cycle.
// time is the frame offset inside the current cycle; every event written by the
// bridge uses 0.
type PortWriter interface {
	Write(time uint32, data []byte) error
}

// Sink delivers flushed events to a physical or virtual MIDI destination.
// Send is called from the host goroutine after each processing cycle, never from
// inside the process callback.
type Sink interface {
	Name() string
	Send(data []byte) error
	Close() error
}

// DestinationInfo describes a MIDI destination a sink can be connected to.
type DestinationInfo struct {
	Name         string // Destination name as reported by the backend.
	Manufacturer string // Manufacturer, when the backend exposes it.
	EntityName   string // Name of the entity to which the destination belongs.
}

// Control is what the process callback tells the host after a cycle.
type Control int

const (
	// Continue keeps the processing loop running.
	Continue Control = iota
	// Quit asks the host to stop invoking the callback.
	Quit
)

// ProcessFunc is the periodic real-time callback. It must not block.
type ProcessFunc func(w PortWriter) Control

// NotificationHandler receives asynchronous host notifications. Calls happen on
// goroutines other than the processing one, possibly concurrently with it.
type NotificationHandler interface {
	// OnThreadInit is called once when the host starts delivering notifications.
	OnThreadInit(client string)
	// OnTopologyChanged is called when ports a and b are connected or disconnected.
	// It reports whether either port belongs to the client.
	OnTopologyChanged(a, b PortID, connected bool) bool
}
