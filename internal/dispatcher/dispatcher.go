// Package dispatcher implements the body of the real-time process callback.
package dispatcher

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/padbridge/internal/bridge"
	"github.com/leandrodaf/padbridge/internal/command"
	"github.com/leandrodaf/padbridge/internal/initializer"
	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// ErrWrite wraps a failed port write of a raw command.
var ErrWrite = errors.New("error writing")

// Dispatcher pulls at most one command per cycle and performs its writes.
//
// Process must only be called from the host's processing goroutine. It never
// blocks, never logs and does not allocate on the success path.
type Dispatcher struct {
	commands *bridge.Channel[command.Command]
	init     *initializer.Initializer
	notify   *Notifier

	scratch        [4]byte
	poisonReported bool
}

// New wires a dispatcher to the command channel, the initializer and the status path.
func New(commands *bridge.Channel[command.Command], init *initializer.Initializer, notify *Notifier) *Dispatcher {
	return &Dispatcher{commands: commands, init: init, notify: notify}
}

// Process runs one cycle. While an initialization is in flight it only advances
// the initialization; pending commands wait for it to finish.
func (d *Dispatcher) Process(w contracts.PortWriter) contracts.Control {
	if d.init.Active() {
		d.stepInit(w)
		return contracts.Continue
	}

	cmd, ok := d.commands.TryDequeue()
	if !ok {
		if d.commands.Poisoned() {
			if !d.poisonReported {
				d.poisonReported = true
				d.notify.Notify(Status{Kind: ChannelPoisoned})
			}
		} else {
			d.poisonReported = false
		}
		return contracts.Continue
	}

	switch cmd.Kind {
	case command.Init:
		d.init.Start()
		d.notify.Notify(Status{Kind: InitStarted, Total: initializer.SequenceLen})
		d.stepInit(w)
	default:
		d.scratch = cmd.Message.Padded()
		if err := w.Write(0, d.scratch[:]); err != nil {
			d.notify.Notify(Status{Kind: WriteFailed, Bytes: d.scratch, N: 4, Err: err})
			return contracts.Continue
		}
		d.notify.Notify(Status{Kind: WriteOK, Bytes: d.scratch, N: 4})
	}
	return contracts.Continue
}

// InitState exposes the initializer state for diagnostics.
func (d *Dispatcher) InitState() initializer.State {
	return d.init.State()
}

func (d *Dispatcher) stepInit(w contracts.PortWriter) {
	err := d.init.Step(w)
	done, total := d.init.Progress()
	switch {
	case err != nil:
		d.notify.Notify(Status{Kind: InitFailed, Done: done, Total: total, Err: err})
	case d.init.Active():
		d.notify.Notify(Status{Kind: InitProgress, Done: done, Total: total})
	default:
		d.notify.Notify(Status{Kind: InitDone, Done: done, Total: total})
	}
}

// Failure returns the reported failure wrapped in its error class, or nil.
func (s Status) Failure() error {
	switch s.Kind {
	case WriteFailed:
		return fmt.Errorf("%w: %w", ErrWrite, s.Err)
	case InitFailed:
		return s.Err
	case ChannelPoisoned:
		return bridge.ErrLockPoisoned
	default:
		return nil
	}
}
