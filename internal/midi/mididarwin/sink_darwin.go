//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/leandrodaf/padbridge/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI output.
var (
	ErrNoMIDIDestinations  = errors.New("no MIDI destinations found")
	ErrDestinationNotFound = errors.New("MIDI destination not found")
	ErrCreateOutputPort    = errors.New("error creating output port")
	ErrSinkClosed          = errors.New("sink closed")
)

// Sink sends events to a CoreMIDI destination on macOS.
type Sink struct {
	logger      contracts.Logger
	client      coremidi.Client
	outputPort  coremidi.OutputPort
	destination coremidi.Destination
	name        string
	mu          sync.Mutex
	closed      bool
}

// ListDestinations returns the CoreMIDI destinations currently available.
func ListDestinations() ([]contracts.DestinationInfo, error) {
	dests, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	infos := make([]contracts.DestinationInfo, len(dests))
	for i, d := range dests {
		entity := d.Entity()
		infos[i] = contracts.DestinationInfo{
			Name:         d.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return infos, nil
}

// NewSink creates a CoreMIDI client and output port connected to the
// destination whose name contains config.Destination (the first one when empty).
func NewSink(clientName string, config contracts.SinkConfig, logger contracts.Logger) (contracts.Sink, error) {
	dests, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error retrieving MIDI destinations: %w", err)
	}
	if len(dests) == 0 {
		return nil, ErrNoMIDIDestinations
	}

	idx := -1
	for i, d := range dests {
		if config.Destination == "" || strings.Contains(d.Name(), config.Destination) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrDestinationNotFound, config.Destination)
	}

	client, err := coremidi.NewClient(clientName)
	if err != nil {
		return nil, err
	}
	port, err := coremidi.NewOutputPort(client, clientName+" out")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
	}

	dest := dests[idx]
	logger.Info("CoreMIDI destination selected", logger.Field().String("destination", dest.Name()))
	return &Sink{
		logger:      logger,
		client:      client,
		outputPort:  port,
		destination: dest,
		name:        "coremidi:" + dest.Name(),
	}, nil
}

// Name returns the backend-qualified destination name.
func (s *Sink) Name() string {
	return s.name
}

// Send writes data as one CoreMIDI packet with an immediate timestamp.
func (s *Sink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	packet := coremidi.NewPacket(data, 0)
	return packet.Send(&s.outputPort, &s.destination)
}

// Close stops accepting events. CoreMIDI releases the client at process exit.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.logger.Info("CoreMIDI sink closed", s.logger.Field().String("sink", s.name))
	}
	return nil
}
