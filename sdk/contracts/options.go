package contracts

import "time"

// QueueOrder selects which pending command the real-time consumer takes first.
type QueueOrder int

const (
	// LIFO hands out the most recently enqueued command first.
	LIFO QueueOrder = iota
	// FIFO hands out commands in arrival order.
	FIFO
)

func (o QueueOrder) String() string {
	if o == FIFO {
		return "fifo"
	}
	return "lifo"
}

// ParseQueueOrder maps "lifo" or "fifo" to a QueueOrder. Unknown names return LIFO and false.
func ParseQueueOrder(name string) (QueueOrder, bool) {
	switch name {
	case "lifo":
		return LIFO, true
	case "fifo":
		return FIFO, true
	default:
		return LIFO, false
	}
}

// Backend names accepted in SinkConfig.Backend.
const (
	BackendGoMIDI   = "gomidi"
	BackendCoreMIDI = "coremidi"
	BackendWinMM    = "winmm"
	BackendDiscard  = "discard"
)

// HostConfig holds the host runtime settings for the bridge client.
type HostConfig struct {
	ClientName    string // Name the client registers under.
	OutPortName   string // Name of the MIDI output port.
	InPortName    string // Name of the MIDI input port (registered, not consumed).
	NoStartServer bool   // Fail instead of falling back when the backend is unavailable.
	SampleRate    int    // Frames per second of the host clock.
	CycleFrames   int    // Frames per processing cycle.
	MaxEvents     int    // Events the per-cycle output buffer can hold.
	MaxBytes      int    // Bytes the per-cycle output buffer can hold.
}

// CyclePeriod returns the wall-clock length of one processing cycle.
func (c HostConfig) CyclePeriod() time.Duration {
	if c.SampleRate <= 0 || c.CycleFrames <= 0 {
		return 0
	}
	return time.Duration(c.CycleFrames) * time.Second / time.Duration(c.SampleRate)
}

// SinkConfig selects and configures the output backend.
type SinkConfig struct {
	Backend     string // One of the Backend* constants.
	Destination string // Destination name (substring match); empty picks the first one.
}

// ClientOptions defines the configuration options for the bridge.
type ClientOptions struct {
	Logger       Logger      // Logger for logging events and errors.
	LogLevel     LogLevel    // Level of logging to use.
	LogFilePath  string      // File path for logging if file logging is enabled.
	Host         *HostConfig // Host runtime settings.
	Sink         *SinkConfig // Output backend settings.
	Order        QueueOrder  // Pending command order.
	InitBatch    int         // Initialization writes per cycle; 0 uses the default, negative runs the whole sequence in one cycle.
	StatusBuffer int         // Capacity of the status channel towards the console.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the bridge.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends log output to the given file instead of the console.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithHostConfig sets the host runtime configuration.
func WithHostConfig(config HostConfig) Option {
	return func(opts *ClientOptions) {
		opts.Host = &config
	}
}

// WithSinkConfig sets the output backend configuration.
func WithSinkConfig(config SinkConfig) Option {
	return func(opts *ClientOptions) {
		opts.Sink = &config
	}
}

// WithQueueOrder sets the order in which pending commands are consumed.
func WithQueueOrder(order QueueOrder) Option {
	return func(opts *ClientOptions) {
		opts.Order = order
	}
}

// WithInitBatch sets how many initialization writes are performed per cycle.
func WithInitBatch(n int) Option {
	return func(opts *ClientOptions) {
		opts.InitBatch = n
	}
}

// WithStatusBuffer sets the capacity of the status channel.
func WithStatusBuffer(n int) Option {
	return func(opts *ClientOptions) {
		opts.StatusBuffer = n
	}
}
