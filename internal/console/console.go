// Package console is the producer side of the bridge: it reads operator
// commands line by line and prints what the real-time side reports back.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/leandrodaf/padbridge/internal/bridge"
	"github.com/leandrodaf/padbridge/internal/command"
	"github.com/leandrodaf/padbridge/internal/dispatcher"
	"github.com/leandrodaf/padbridge/internal/message"
	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// Prompt is printed before every line is read.
const Prompt = "> "

// Submitter accepts operator input. *padbridge.Bridge satisfies it.
type Submitter interface {
	Submit(text string) (command.Command, error)
	Recover()
}

// Console serializes prompt, echo and status output on one writer.
type Console struct {
	sub    Submitter
	logger contracts.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a console that submits to sub and prints to out.
func New(sub Submitter, out io.Writer, logger contracts.Logger) *Console {
	return &Console{sub: sub, out: out, logger: logger}
}

// Run reads commands from r until end of input or ctx is done.
//
// Malformed lines are echoed and skipped. A poisoned command channel is
// recovered once and the command retried; a second failure ends Run.
func (c *Console) Run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		c.print(Prompt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}
			if err := c.handle(line); err != nil {
				return err
			}
		}
	}
}

func (c *Console) handle(line string) error {
	cmd, err := c.sub.Submit(line)
	switch {
	case err == nil:
		c.logger.Debug("Command queued", c.logger.Field().String("command", cmd.String()))
		return nil
	case errors.Is(err, command.ErrTokenCount), errors.Is(err, command.ErrByteParse):
		c.printf("%v\n", err)
		c.logger.Warn("Rejected command",
			c.logger.Field().String("input", line),
			c.logger.Field().Error("error", err))
		return nil
	case errors.Is(err, bridge.ErrLockPoisoned):
		c.logger.Error("Command channel poisoned, recovering", c.logger.Field().Error("error", err))
		c.sub.Recover()
		if _, err = c.sub.Submit(line); err != nil {
			return fmt.Errorf("enqueue after recovery: %w", err)
		}
		return nil
	default:
		c.logger.Error("Failed to queue command",
			c.logger.Field().String("input", line),
			c.logger.Field().Error("error", err))
		return nil
	}
}

// Display prints every status until ctx is done or statuses is closed.
func (c *Console) Display(ctx context.Context, statuses <-chan dispatcher.Status) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-statuses:
			if !ok {
				return
			}
			if err := s.Failure(); err != nil {
				c.logger.Error("Real-time failure",
					c.logger.Field().String("kind", s.Kind.String()),
					c.logger.Field().Error("error", err))
			}
			c.print(FormatStatus(s))
		}
	}
}

// FormatStatus renders one status report for the operator.
func FormatStatus(s dispatcher.Status) string {
	switch s.Kind {
	case dispatcher.WriteOK:
		return "Write OK.\n" + formatEvent(s.Event())
	case dispatcher.WriteFailed:
		return fmt.Sprintf("%v\n%s", s.Failure(), formatEvent(s.Event()))
	case dispatcher.InitStarted:
		return fmt.Sprintf("Initializing controller (%d events)\n", s.Total)
	case dispatcher.InitProgress:
		return fmt.Sprintf("init %d/%d\n", s.Done, s.Total)
	case dispatcher.InitDone:
		return fmt.Sprintf("Controller initialized (%d/%d)\n", s.Done, s.Total)
	case dispatcher.InitFailed:
		return fmt.Sprintf("%v\n", s.Failure())
	case dispatcher.ChannelPoisoned:
		return fmt.Sprintf("%v\n", s.Failure())
	default:
		return fmt.Sprintf("%s\n", s.Kind)
	}
}

// formatEvent prints the bytes as "b0;b1;b2;b3;" followed by the decoded message.
func formatEvent(ev []byte) string {
	var out []byte
	for _, b := range ev {
		out = fmt.Appendf(out, "%d;", b)
	}
	if len(ev) >= 3 {
		out = fmt.Appendf(out, " %s", message.FromBytes(ev[0], ev[1], ev[2]))
	}
	return string(append(out, '\n'))
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	c.print(fmt.Sprintf(format, args...))
}
