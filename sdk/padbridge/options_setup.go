package padbridge

import (
	"github.com/leandrodaf/padbridge/internal/logger"
	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// Defaults applied by applyDefaultOptions.
const (
	DefaultClientName   = "padbridge"
	DefaultSampleRate   = 48000
	DefaultCycleFrames  = 64
	DefaultMaxEvents    = 64
	DefaultMaxBytes     = 1024
	DefaultInitBatch    = 4
	DefaultStatusBuffer = 64
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if the log destination could not be opened.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewStandardLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}

	host := contracts.HostConfig{}
	if options.Host != nil {
		host = *options.Host
	}
	if host.ClientName == "" {
		host.ClientName = DefaultClientName
	}
	if host.OutPortName == "" {
		host.OutPortName = host.ClientName + "_out"
	}
	if host.InPortName == "" {
		host.InPortName = host.ClientName + "_in"
	}
	if host.SampleRate == 0 {
		host.SampleRate = DefaultSampleRate
	}
	if host.CycleFrames == 0 {
		host.CycleFrames = DefaultCycleFrames
	}
	if host.MaxEvents == 0 {
		host.MaxEvents = DefaultMaxEvents
	}
	if host.MaxBytes == 0 {
		host.MaxBytes = DefaultMaxBytes
	}
	options.Host = &host

	if options.Sink == nil {
		options.Sink = &contracts.SinkConfig{}
	}
	if options.Sink.Backend == "" {
		options.Sink.Backend = contracts.BackendGoMIDI
	}
	if options.InitBatch == 0 {
		options.InitBatch = DefaultInitBatch
	}
	if options.StatusBuffer == 0 {
		options.StatusBuffer = DefaultStatusBuffer
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
			return *options, err
		}
	}
	return *options, nil
}
