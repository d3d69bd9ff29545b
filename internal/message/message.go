// Package message encodes and validates 3-byte MIDI channel messages.
package message

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Validation errors returned by FromDescription.
var (
	ErrInvalidChannel    = errors.New("channel is not within [0..15]")
	ErrInvalidData2      = errors.New("data2 must be 0")
	ErrUnknownStatusName = errors.New("invalid status")
)

// MaxChannel is the highest channel a status nibble can address.
const MaxChannel = 15

// Status base values, high nibble of the status byte.
const (
	NoteOff          byte = 0x80
	NoteOn           byte = 0x90
	PolyKeyPressure  byte = 0xA0
	ControllerChange byte = 0xB0
	ProgramChange    byte = 0xC0
	ChannelPressure  byte = 0xD0
	PitchBend        byte = 0xE0
)

var statusByName = map[string]byte{
	"note_off":          NoteOff,
	"note_on":           NoteOn,
	"poly_key_pressure": PolyKeyPressure,
	"controller_change": ControllerChange,
	"program_change":    ProgramChange,
	"channel_pressure":  ChannelPressure,
	"pitch_bend":        PitchBend,
	"pitch_blend":       PitchBend,
}

var nameByStatus = map[byte]string{
	NoteOff:          "note_off",
	NoteOn:           "note_on",
	PolyKeyPressure:  "poly_key_pressure",
	ControllerChange: "controller_change",
	ProgramChange:    "program_change",
	ChannelPressure:  "channel_pressure",
	PitchBend:        "pitch_bend",
}

// Message is a status byte followed by two data bytes.
type Message struct {
	Status byte
	Data1  byte
	Data2  byte
}

// FromBytes builds a Message from raw bytes without any validation.
// Callers that already hold a fully formed status byte use it; the result may
// not be valid MIDI.
func FromBytes(status, data1, data2 byte) Message {
	return Message{Status: status, Data1: data1, Data2: data2}
}

// FromDescription builds a Message from a symbolic status name and a channel.
// program_change and channel_pressure carry a single data byte, so data2 must be 0.
func FromDescription(name string, channel, data1, data2 byte) (Message, error) {
	if channel > MaxChannel {
		return Message{}, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}
	base, ok := statusByName[name]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownStatusName, name)
	}
	if (base == ProgramChange || base == ChannelPressure) && data2 != 0 {
		return Message{}, fmt.Errorf("%w for %s, got %d", ErrInvalidData2, name, data2)
	}
	return Message{Status: base + channel, Data1: data1, Data2: data2}, nil
}

// MustFromDescription is FromDescription for compile-time constant tables. It panics on error.
func MustFromDescription(name string, channel, data1, data2 byte) Message {
	m, err := FromDescription(name, channel, data1, data2)
	if err != nil {
		panic(err)
	}
	return m
}

// Kind returns the symbolic name of the status high nibble, or "" for non-channel status bytes.
func (m Message) Kind() string {
	return nameByStatus[m.Status&0xF0]
}

// Channel returns the low nibble of the status byte.
func (m Message) Channel() byte {
	return m.Status & 0x0F
}

// Bytes returns the 3-byte wire form.
func (m Message) Bytes() [3]byte {
	return [3]byte{m.Status, m.Data1, m.Data2}
}

// Padded returns the 4-byte form with a trailing zero, the layout used for raw writes.
func (m Message) Padded() [4]byte {
	return [4]byte{m.Status, m.Data1, m.Data2, 0}
}

// String renders the message the way gomidi describes it.
func (m Message) String() string {
	b := m.Bytes()
	return midi.Message(b[:]).String()
}
