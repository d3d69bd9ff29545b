package padbridge

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/padbridge/internal/midi/mididarwin"
	"github.com/leandrodaf/padbridge/internal/midi/mididiscard"
	"github.com/leandrodaf/padbridge/internal/midi/midigomidi"
	"github.com/leandrodaf/padbridge/internal/midi/midiwindows"
	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// ErrUnsupportedBackend is returned for an unknown backend name.
var ErrUnsupportedBackend = errors.New("unsupported MIDI backend")

type sinkBackend struct {
	open func(clientName string, config contracts.SinkConfig, logger contracts.Logger) (contracts.Sink, error)
	list func() ([]contracts.DestinationInfo, error)
}

// sinkBackends maps backend names to output sink initializers.
var sinkBackends = map[string]sinkBackend{
	contracts.BackendGoMIDI:   {midigomidi.NewSink, midigomidi.ListDestinations},
	contracts.BackendCoreMIDI: {mididarwin.NewSink, mididarwin.ListDestinations},  // macOS only
	contracts.BackendWinMM:    {midiwindows.NewSink, midiwindows.ListDestinations}, // Windows only
	contracts.BackendDiscard:  {mididiscard.NewSink, mididiscard.ListDestinations},
}

// NewSink opens the output sink selected by opts.Sink.
//
// When the backend cannot be opened and opts.Host.NoStartServer is false, the
// bridge falls back to the discard sink so the console keeps working.
func NewSink(opts *contracts.ClientOptions) (contracts.Sink, error) {
	backend, ok := sinkBackends[opts.Sink.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, opts.Sink.Backend)
	}

	sink, err := backend.open(opts.Host.ClientName, *opts.Sink, opts.Logger)
	if err == nil {
		return sink, nil
	}
	if opts.Host.NoStartServer || opts.Sink.Backend == contracts.BackendDiscard {
		return nil, fmt.Errorf("backend %s: %w", opts.Sink.Backend, err)
	}

	opts.Logger.Warn("MIDI backend unavailable, falling back to discard sink",
		opts.Logger.Field().String("backend", opts.Sink.Backend),
		opts.Logger.Field().Error("error", err))
	return mididiscard.NewSink(opts.Host.ClientName, *opts.Sink, opts.Logger)
}

// ListDestinations lists the destinations a backend can send to.
func ListDestinations(backendName string) ([]contracts.DestinationInfo, error) {
	backend, ok := sinkBackends[backendName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, backendName)
	}
	return backend.list()
}
