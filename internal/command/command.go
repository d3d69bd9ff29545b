// Package command parses operator input into commands for the real-time side.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leandrodaf/padbridge/internal/message"
)

// Decoding errors. Both are reported to the operator; nothing is written.
var (
	ErrTokenCount = errors.New("need length 3")
	ErrByteParse  = errors.New("token is not a byte")
)

// InitKeyword is the literal command that runs the device initialization.
const InitKeyword = "init"

// Kind tells the dispatcher what to do with a Command.
type Kind int

const (
	// Raw writes Message as a padded 4-byte event.
	Raw Kind = iota
	// Init starts the device initialization sequence.
	Init
)

func (k Kind) String() string {
	if k == Init {
		return "init"
	}
	return "raw"
}

// Command is the unit moved across the bridge.
type Command struct {
	Kind    Kind
	Message message.Message
}

// Parse decodes one line of operator input.
//
// "init" yields an Init command. Anything else must be exactly three decimal
// tokens in [0,255] separated by single spaces. A token may carry one leading
// '+' sign.
func Parse(text string) (Command, error) {
	text = strings.TrimSpace(text)
	if text == InitKeyword {
		return Command{Kind: Init}, nil
	}

	tokens := strings.Split(text, " ")
	if len(tokens) != 3 {
		return Command{}, fmt.Errorf("%w: got %d tokens", ErrTokenCount, len(tokens))
	}

	var b [3]byte
	for i, tok := range tokens {
		v, err := strconv.ParseUint(strings.TrimPrefix(tok, "+"), 10, 8)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrByteParse, tok)
		}
		b[i] = byte(v)
	}
	return Command{Kind: Raw, Message: message.FromBytes(b[0], b[1], b[2])}, nil
}

func (c Command) String() string {
	if c.Kind == Init {
		return InitKeyword
	}
	return fmt.Sprintf("%d %d %d", c.Message.Status, c.Message.Data1, c.Message.Data2)
}
