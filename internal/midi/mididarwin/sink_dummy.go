//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// ListDestinations reports that CoreMIDI is unavailable on this platform.
func ListDestinations() ([]contracts.DestinationInfo, error) {
	return nil, fmt.Errorf("CoreMIDI is not available on this platform")
}

// NewSink reports that CoreMIDI is unavailable on this platform.
func NewSink(clientName string, config contracts.SinkConfig, logger contracts.Logger) (contracts.Sink, error) {
	logger.Warn("CoreMIDI sink requested on non-macOS system")
	return nil, fmt.Errorf("CoreMIDI is not available on this platform")
}
