// Package midigomidi sends events through a gomidi driver output port.
//
// The driver itself is registered by a blank import in the binary, e.g.
// gitlab.com/gomidi/midi/v2/drivers/rtmididrv.
package midigomidi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/padbridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrNoOutPorts is returned when the registered driver exposes no output port.
var ErrNoOutPorts = errors.New("no MIDI out ports found")

// Sink wraps a gomidi drivers.Out.
type Sink struct {
	logger contracts.Logger
	out    drivers.Out
	once   sync.Once
	mu     sync.Mutex
}

// ListDestinations returns the output ports of the registered driver.
func ListDestinations() ([]contracts.DestinationInfo, error) {
	outs := midi.GetOutPorts()
	infos := make([]contracts.DestinationInfo, len(outs))
	for i, o := range outs {
		infos[i] = contracts.DestinationInfo{Name: o.String(), EntityName: fmt.Sprintf("port %d", o.Number())}
	}
	return infos, nil
}

// NewSink opens the out port whose name contains config.Destination, or the
// first out port when no destination is configured.
func NewSink(clientName string, config contracts.SinkConfig, logger contracts.Logger) (contracts.Sink, error) {
	var (
		out drivers.Out
		err error
	)
	if config.Destination != "" {
		out, err = midi.FindOutPort(config.Destination)
		if err != nil {
			return nil, fmt.Errorf("can't find output %q: %w", config.Destination, err)
		}
	} else {
		outs := midi.GetOutPorts()
		if len(outs) == 0 {
			return nil, ErrNoOutPorts
		}
		out = outs[0]
	}
	logger.Debug("gomidi out port chosen",
		logger.Field().String("client", clientName),
		logger.Field().String("port", out.String()))
	sink, err := NewSinkFromPort(out, logger)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// NewSinkFromPort opens out and wraps it.
func NewSinkFromPort(out drivers.Out, logger contracts.Logger) (*Sink, error) {
	if !out.IsOpen() {
		if err := out.Open(); err != nil {
			return nil, fmt.Errorf("open %q: %w", out.String(), err)
		}
	}
	logger.Info("gomidi out port opened", logger.Field().String("port", out.String()))
	return &Sink{logger: logger, out: out}, nil
}

// Name returns the backend-qualified port name.
func (s *Sink) Name() string {
	return "gomidi:" + s.out.String()
}

// Send passes data to the driver unchanged.
func (s *Sink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.out.Send(data); err != nil {
		return fmt.Errorf("send %s: %w", midi.Message(data), err)
	}
	return nil
}

// Close closes the out port once.
func (s *Sink) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		err = s.out.Close()
		s.logger.Info("gomidi out port closed", s.logger.Field().String("port", s.out.String()))
	})
	return err
}
