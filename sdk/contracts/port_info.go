package contracts

// PortID identifies a port registered with the host runtime.
type PortID uint32

// Direction tells whether a port carries MIDI into or out of the client.
type Direction int

const (
	// Output ports carry events from the client to a sink.
	Output Direction = iota
	// Input ports carry events into the client.
	Input
)

func (d Direction) String() string {
	if d == Input {
		return "in"
	}
	return "out"
}

// PortInfo contains information about a port known to the host runtime.
type PortInfo struct {
	ID        PortID    // Host-assigned identifier.
	Name      string    // Short port name, e.g. "padbridge_out".
	Client    string    // Name of the client that registered the port.
	Direction Direction // Data direction.
}

// FullName returns "client:port", the form used in topology logs.
func (p PortInfo) FullName() string {
	return p.Client + ":" + p.Name
}

// PortOwner resolves port identifiers and tells whether a port belongs to this client.
type PortOwner interface {
	PortByID(id PortID) (PortInfo, bool)
	IsMine(port PortInfo) bool
}
