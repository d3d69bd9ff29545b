// Package mididiscard is an output sink that drops every event.
package mididiscard

import (
	"sync/atomic"

	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// Sink counts events and throws them away.
type Sink struct {
	logger contracts.Logger
	sent   atomic.Uint64
}

// NewSink returns a discard sink.
func NewSink(clientName string, config contracts.SinkConfig, logger contracts.Logger) (contracts.Sink, error) {
	logger.Info("Using discard sink; no MIDI will leave the process", logger.Field().String("client", clientName))
	return &Sink{logger: logger}, nil
}

// ListDestinations returns the single pseudo destination.
func ListDestinations() ([]contracts.DestinationInfo, error) {
	return []contracts.DestinationInfo{{Name: "discard"}}, nil
}

func (s *Sink) Name() string { return "discard" }

func (s *Sink) Send(data []byte) error {
	s.sent.Add(1)
	return nil
}

// Sent returns the number of events dropped so far.
func (s *Sink) Sent() uint64 {
	return s.sent.Load()
}

func (s *Sink) Close() error {
	s.logger.Debug("Discard sink closed", s.logger.Field().Uint64("events", s.sent.Load()))
	return nil
}
