//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// ListDestinations reports that winmm is unavailable on this platform.
func ListDestinations() ([]contracts.DestinationInfo, error) {
	return nil, fmt.Errorf("winmm is not available on this platform")
}

// NewSink logs a warning and reports that winmm is unavailable on this platform.
func NewSink(clientName string, config contracts.SinkConfig, logger contracts.Logger) (contracts.Sink, error) {
	logger.Warn("winmm sink requested on non-Windows system")
	return nil, fmt.Errorf("winmm is not available on this platform")
}
