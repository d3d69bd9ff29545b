// Package host is a minimal periodic audio/MIDI host runtime.
//
// A Client registers named ports, then invokes a process callback once per
// cycle from a dedicated goroutine. Events written during the callback are
// flushed to a contracts.Sink after the callback returns.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/padbridge/sdk/contracts"
	"go.uber.org/multierr"
)

// Lifecycle and registration errors.
var (
	ErrClientOpen       = errors.New("failed to open client")
	ErrPortRegistration = errors.New("failed to register port")
	ErrNotActive        = errors.New("client is not active")
	ErrAlreadyActive    = errors.New("client is already active")
)

type note struct {
	a, b      contracts.PortID
	connected bool
}

// systemClient owns the pseudo-port that stands for the sink destination.
const systemClient = "system"

// Client is one registered host client.
type Client struct {
	name   string
	cfg    contracts.HostConfig
	logger contracts.Logger
	sink   contracts.Sink
	buf    *CycleBuffer

	mu          sync.Mutex
	ports       map[contracts.PortID]contracts.PortInfo
	nextID      contracts.PortID
	sinkPort    contracts.PortID
	outPort     contracts.PortID
	connections map[[2]contracts.PortID]struct{}
	process     contracts.ProcessFunc
	active      bool
	cancel      context.CancelFunc
	done        chan struct{}

	notesMu    sync.Mutex
	notes      chan note
	notifyDone chan struct{}

	driving     atomic.Bool // a goroutine owns the cycle: the run loop or a RunCycle caller
	cycles      atomic.Uint64
	flushErrors atomic.Uint64
	closeOnce   sync.Once
}

// Open registers a client named name that delivers its output to sink.
func Open(name string, cfg contracts.HostConfig, sink contracts.Sink, logger contracts.Logger) (*Client, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty client name", ErrClientOpen)
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: no sink for %q", ErrClientOpen, name)
	}
	if cfg.CyclePeriod() <= 0 {
		return nil, fmt.Errorf("%w: invalid cycle %d frames @ %d Hz", ErrClientOpen, cfg.CycleFrames, cfg.SampleRate)
	}
	if cfg.MaxEvents <= 0 || cfg.MaxBytes <= 0 {
		return nil, fmt.Errorf("%w: cycle buffer needs room for events", ErrClientOpen)
	}

	c := &Client{
		name:        name,
		cfg:         cfg,
		logger:      logger,
		sink:        sink,
		buf:         NewCycleBuffer(cfg.CycleFrames, cfg.MaxEvents, cfg.MaxBytes),
		ports:       make(map[contracts.PortID]contracts.PortInfo),
		connections: make(map[[2]contracts.PortID]struct{}),
		nextID:      1,
	}
	c.sinkPort = c.addPort(contracts.PortInfo{Name: sink.Name(), Client: systemClient, Direction: contracts.Input})

	logger.Info("Client opened",
		logger.Field().String("client", name),
		logger.Field().Duration("cycle", cfg.CyclePeriod()),
		logger.Field().String("sink", sink.Name()))
	return c, nil
}

// Name returns the registered client name.
func (c *Client) Name() string {
	return c.name
}

// RegisterPort registers a port owned by this client. Port names are unique per client.
func (c *Client) RegisterPort(name string, dir contracts.Direction) (contracts.PortID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return 0, fmt.Errorf("%w: empty port name", ErrPortRegistration)
	}
	if c.active {
		return 0, fmt.Errorf("%w: %q: %w", ErrPortRegistration, name, ErrAlreadyActive)
	}
	for _, p := range c.ports {
		if p.Client == c.name && p.Name == name {
			return 0, fmt.Errorf("%w: %q already registered", ErrPortRegistration, name)
		}
	}

	id := c.addPort(contracts.PortInfo{Name: name, Client: c.name, Direction: dir})
	if dir == contracts.Output && c.outPort == 0 {
		c.outPort = id
	}
	c.logger.Info("Port registered",
		c.logger.Field().String("port", c.name+":"+name),
		c.logger.Field().String("direction", dir.String()))
	return id, nil
}

func (c *Client) addPort(p contracts.PortInfo) contracts.PortID {
	p.ID = c.nextID
	c.nextID++
	c.ports[p.ID] = p
	return p.ID
}

// PortByID implements contracts.PortOwner.
func (c *Client) PortByID(id contracts.PortID) (contracts.PortInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.ports[id]
	return p, ok
}

// IsMine implements contracts.PortOwner.
func (c *Client) IsMine(p contracts.PortInfo) bool {
	return p.Client == c.name
}

// Activate starts invoking process once per cycle and connects the output port
// to the sink. handler may be nil.
func (c *Client) Activate(process contracts.ProcessFunc, handler contracts.NotificationHandler) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	if c.outPort == 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: no output port", ErrPortRegistration)
	}
	if !c.driving.CompareAndSwap(false, true) {
		c.mu.Unlock()
		return fmt.Errorf("%w: a cycle is running", ErrAlreadyActive)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.process = process
	c.active = true
	c.cancel = cancel
	c.done = make(chan struct{})
	out, sinkPort := c.outPort, c.sinkPort
	c.mu.Unlock()

	if handler != nil {
		c.notesMu.Lock()
		c.notes = make(chan note, 16)
		c.notifyDone = make(chan struct{})
		go c.notifyLoop(handler, c.notes, c.notifyDone)
		c.notesMu.Unlock()
	}

	go c.run(ctx)
	return c.Connect(out, sinkPort)
}

// OutPort returns the first registered output port.
func (c *Client) OutPort() contracts.PortID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outPort
}

// SinkPort returns the pseudo-port standing for the sink destination.
func (c *Client) SinkPort() contracts.PortID {
	return c.sinkPort
}

// Connect records a connection between a and b and notifies the handler.
func (c *Client) Connect(a, b contracts.PortID) error {
	return c.setConnection(a, b, true)
}

// Disconnect removes a connection between a and b and notifies the handler.
func (c *Client) Disconnect(a, b contracts.PortID) error {
	return c.setConnection(a, b, false)
}

func (c *Client) setConnection(a, b contracts.PortID, connected bool) error {
	c.mu.Lock()
	if _, ok := c.ports[a]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("unknown port %d", a)
	}
	if _, ok := c.ports[b]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("unknown port %d", b)
	}
	key := [2]contracts.PortID{a, b}
	_, exists := c.connections[key]
	if exists == connected {
		c.mu.Unlock()
		return nil
	}
	if connected {
		c.connections[key] = struct{}{}
	} else {
		delete(c.connections, key)
	}
	c.mu.Unlock()

	c.notesMu.Lock()
	if c.notes != nil {
		c.notes <- note{a: a, b: b, connected: connected}
	}
	c.notesMu.Unlock()
	return nil
}

// notifyLoop delivers notifications in order on a goroutine of its own, the
// way a host's notification thread does.
func (c *Client) notifyLoop(handler contracts.NotificationHandler, notes <-chan note, done chan<- struct{}) {
	defer close(done)
	handler.OnThreadInit(c.name)
	for n := range notes {
		handler.OnTopologyChanged(n.a, n.b, n.connected)
	}
}

// Connected reports whether a is connected to b.
func (c *Client) Connected(a, b contracts.PortID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.connections[[2]contracts.PortID{a, b}]
	return ok
}

// RunCycle performs one processing cycle on the calling goroutine of a client
// that was never activated. Once Activate has run, the run loop owns the cycle
// and RunCycle returns ErrAlreadyActive without calling process.
func (c *Client) RunCycle(process contracts.ProcessFunc) (contracts.Control, error) {
	if !c.driving.CompareAndSwap(false, true) {
		return contracts.Continue, ErrAlreadyActive
	}
	defer c.driving.Store(false)
	return c.cycle(process), nil
}

// cycle resets the buffer, runs the callback and flushes queued events to the sink.
func (c *Client) cycle(process contracts.ProcessFunc) contracts.Control {
	c.buf.Reset()
	ctl := process(c.buf)
	c.cycles.Add(1)
	c.flush()
	return ctl
}

func (c *Client) flush() {
	c.buf.Each(func(_ uint32, data []byte) {
		if err := c.sink.Send(data); err != nil {
			c.flushErrors.Add(1)
			c.logger.Error("Sink send failed",
				c.logger.Field().String("sink", c.sink.Name()),
				c.logger.Field().Bytes("bytes", data),
				c.logger.Field().Error("error", err))
		}
	})
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.CyclePeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.cycle(c.process) == contracts.Quit {
				c.logger.Warn("Process callback asked to quit", c.logger.Field().String("client", c.name))
				return
			}
		}
	}
}

// Cycles returns the number of completed processing cycles.
func (c *Client) Cycles() uint64 {
	return c.cycles.Load()
}

// FlushErrors returns the number of events the sink rejected.
func (c *Client) FlushErrors() uint64 {
	return c.flushErrors.Load()
}

// Close stops the processing goroutine, disconnects the output and closes the sink.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		active, cancel, done := c.active, c.cancel, c.done
		out, sinkPort := c.outPort, c.sinkPort
		c.mu.Unlock()

		if active {
			cancel()
			<-done
			err = multierr.Append(err, c.Disconnect(out, sinkPort))
			c.mu.Lock()
			c.active = false
			c.mu.Unlock()
		}
		c.notesMu.Lock()
		notes, notifyDone := c.notes, c.notifyDone
		c.notes = nil
		c.notesMu.Unlock()
		if notes != nil {
			close(notes)
			<-notifyDone
		}
		err = multierr.Append(err, c.sink.Close())
		c.logger.Info("Client closed",
			c.logger.Field().String("client", c.name),
			c.logger.Field().Uint64("cycles", c.Cycles()))
	})
	return err
}
