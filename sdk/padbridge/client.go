// Package padbridge wires the operator command bridge to a MIDI host client.
package padbridge

import (
	"fmt"

	"github.com/leandrodaf/padbridge/internal/bridge"
	"github.com/leandrodaf/padbridge/internal/command"
	"github.com/leandrodaf/padbridge/internal/dispatcher"
	"github.com/leandrodaf/padbridge/internal/host"
	"github.com/leandrodaf/padbridge/internal/initializer"
	"github.com/leandrodaf/padbridge/internal/relay"
	"github.com/leandrodaf/padbridge/sdk/contracts"
	"go.uber.org/multierr"
)

// pendingCapacity is the initial room of the command channel; it grows on demand.
const pendingCapacity = 32

// Bridge owns the host client, the command channel and the real-time dispatcher.
//
// The producer side calls Submit; the host goroutine drives the dispatcher.
// Only the command channel and the status notifier cross between them.
type Bridge struct {
	options  contracts.ClientOptions
	logger   contracts.Logger
	client   *host.Client
	commands *bridge.Channel[command.Command]
	notifier *dispatcher.Notifier
	dispatch *dispatcher.Dispatcher
	relay    *relay.Relay
	outPort  contracts.PortID
	inPort   contracts.PortID
}

// NewBridge creates a new bridge with the specified options.
// It applies default options, opens the output sink and registers the host
// client with one output and one input port. Any failure here is a startup
// failure and should abort the process.
//
// opts ...contracts.Option: A variadic list of option functions to customize the bridge configuration.
func NewBridge(opts ...contracts.Option) (*Bridge, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	log := options.Logger

	sink, err := NewSink(&options)
	if err != nil {
		return nil, err
	}

	client, err := host.Open(options.Host.ClientName, *options.Host, sink, log)
	if err != nil {
		return nil, multierr.Append(err, sink.Close())
	}

	outPort, err := client.RegisterPort(options.Host.OutPortName, contracts.Output)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to open out port: %w", err), client.Close())
	}
	inPort, err := client.RegisterPort(options.Host.InPortName, contracts.Input)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to open in port: %w", err), client.Close())
	}

	commands := bridge.New[command.Command](options.Order, pendingCapacity)
	notifier := dispatcher.NewNotifier(options.StatusBuffer)

	b := &Bridge{
		options:  options,
		logger:   log,
		client:   client,
		commands: commands,
		notifier: notifier,
		dispatch: dispatcher.New(commands, initializer.New(options.InitBatch), notifier),
		relay:    relay.New(log, client),
		outPort:  outPort,
		inPort:   inPort,
	}
	log.Info("Bridge ready",
		log.Field().String("order", options.Order.String()),
		log.Field().Int("initBatch", options.InitBatch))
	return b, nil
}

// Start activates the host client: the dispatcher runs once per cycle from now on.
func (b *Bridge) Start() error {
	return b.client.Activate(b.dispatch.Process, b.relay)
}

// RunCycle runs a single processing cycle on the calling goroutine, for
// bridges that were not started (scripted runs and tests). After Start it
// returns host.ErrAlreadyActive and does nothing.
func (b *Bridge) RunCycle() (contracts.Control, error) {
	return b.client.RunCycle(b.dispatch.Process)
}

// Submit parses one line of operator input and queues the resulting command.
// Decoding errors (command.ErrTokenCount, command.ErrByteParse) are returned
// without queueing anything.
func (b *Bridge) Submit(text string) (command.Command, error) {
	cmd, err := command.Parse(text)
	if err != nil {
		return command.Command{}, err
	}
	return cmd, b.commands.Enqueue(cmd)
}

// Recover clears a poisoned command channel so the producer can retry.
func (b *Bridge) Recover() {
	b.commands.Recover()
}

// Pending returns the number of queued commands.
func (b *Bridge) Pending() int {
	return b.commands.Len()
}

// Statuses returns the status reports coming from the real-time side.
func (b *Bridge) Statuses() <-chan dispatcher.Status {
	return b.notifier.C()
}

// DroppedStatuses returns the number of status reports lost to a full buffer.
func (b *Bridge) DroppedStatuses() uint64 {
	return b.notifier.Dropped()
}

// InitState returns how far the controller initialization has progressed.
// It is safe to call while the bridge is running.
func (b *Bridge) InitState() initializer.State {
	return b.dispatch.InitState()
}

// Logger returns the bridge logger.
func (b *Bridge) Logger() contracts.Logger {
	return b.logger
}

// Options returns the options in effect after defaults were applied.
func (b *Bridge) Options() contracts.ClientOptions {
	return b.options
}

// Ports returns the registered output and input ports.
func (b *Bridge) Ports() (out, in contracts.PortInfo) {
	out, _ = b.client.PortByID(b.outPort)
	in, _ = b.client.PortByID(b.inPort)
	return out, in
}

// Close stops the host client and releases the sink.
func (b *Bridge) Close() error {
	return b.client.Close()
}
