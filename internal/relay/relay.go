// Package relay logs port topology changes reported by the host runtime.
package relay

import (
	"strconv"

	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// Relay receives topology notifications. It touches no bridge state, so the
// host may call it concurrently with the process callback.
type Relay struct {
	logger contracts.Logger
	owner  contracts.PortOwner
}

// New creates a relay that resolves ports through owner.
func New(logger contracts.Logger, owner contracts.PortOwner) *Relay {
	return &Relay{logger: logger, owner: owner}
}

// OnThreadInit logs the start of the host's notification thread.
func (r *Relay) OnThreadInit(client string) {
	r.logger.Debug("Notification thread started", r.logger.Field().String("client", client))
}

// OnTopologyChanged logs a connect or disconnect between ports a and b when
// either of them belongs to this client. It returns false for foreign events.
func (r *Relay) OnTopologyChanged(a, b contracts.PortID, connected bool) bool {
	mine, other, ok := r.resolve(a, b)
	if !ok {
		r.logger.Debug("Topology change on foreign ports",
			r.logger.Field().Uint64("portA", uint64(a)),
			r.logger.Field().Uint64("portB", uint64(b)))
		return false
	}

	state := "disconnected"
	if connected {
		state = "connected"
	}
	r.logger.Info("Port "+state,
		r.logger.Field().String("port", mine.FullName()),
		r.logger.Field().String("peer", other),
		r.logger.Field().Bool("connected", connected))
	return true
}

// resolve returns the first port of ours, in argument order, and a description of the peer.
func (r *Relay) resolve(a, b contracts.PortID) (contracts.PortInfo, string, bool) {
	pa, okA := r.owner.PortByID(a)
	pb, okB := r.owner.PortByID(b)

	switch {
	case okA && r.owner.IsMine(pa):
		return pa, describe(pb, okB, b), true
	case okB && r.owner.IsMine(pb):
		return pb, describe(pa, okA, a), true
	default:
		return contracts.PortInfo{}, "", false
	}
}

func describe(p contracts.PortInfo, ok bool, id contracts.PortID) string {
	if !ok {
		return "unknown#" + strconv.FormatUint(uint64(id), 10)
	}
	return p.FullName()
}
