//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/leandrodaf/padbridge/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIOUT windows.Handle

// Error definitions for winmm output.
var (
	ErrNoMIDIDestinations  = errors.New("no MIDI output devices found")
	ErrDestinationNotFound = errors.New("MIDI output device not found")
	ErrSinkClosed          = errors.New("sink closed")
)

// Struct representing MIDI output device capabilities
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutReset      = winmm.NewProc("midiOutReset")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// Sink sends events to a winmm MIDI output device.
type Sink struct {
	logger contracts.Logger
	handle HMIDIOUT
	name   string
	mu     sync.Mutex
}

// ListDestinations lists the available MIDI output devices
func ListDestinations() ([]contracts.DestinationInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		return nil, ErrNoMIDIDestinations
	}

	devices := make([]contracts.DestinationInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			devices = append(devices, contracts.DestinationInfo{Name: fmt.Sprintf("device %d", i)})
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DestinationInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// NewSink opens the output device whose name contains config.Destination
// (the first one when empty).
func NewSink(clientName string, config contracts.SinkConfig, logger contracts.Logger) (contracts.Sink, error) {
	devices, err := ListDestinations()
	if err != nil {
		return nil, err
	}

	deviceID := -1
	for i, d := range devices {
		if config.Destination == "" || strings.Contains(d.Name, config.Destination) {
			deviceID = i
			break
		}
	}
	if deviceID < 0 {
		return nil, fmt.Errorf("%w: %q", ErrDestinationNotFound, config.Destination)
	}

	s := &Sink{logger: logger, name: "winmm:" + devices[deviceID].Name}
	r1, _, callErr := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&s.handle)),
		uintptr(deviceID),
		0, 0, 0,
	)
	if r1 != 0 {
		return nil, fmt.Errorf("failed to open MIDI output device %d: %v", deviceID, callErr)
	}

	logger.Info("MIDI output device opened",
		logger.Field().Int("deviceID", deviceID),
		logger.Field().String("client", clientName),
		logger.Field().String("device", devices[deviceID].Name))
	return s, nil
}

// Name returns the backend-qualified device name.
func (s *Sink) Name() string {
	return s.name
}

// Send packs the status and data bytes into a short message. winmm short
// messages carry at most three bytes, so the trailing pad byte of a 4-byte
// event is not transmitted.
func (s *Sink) Send(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var msg uint32
	for i := 0; i < len(data) && i < 3; i++ {
		msg |= uint32(data[i]) << (8 * i)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == 0 {
		return ErrSinkClosed
	}
	r1, _, err := procMidiOutShortMsg.Call(uintptr(s.handle), uintptr(msg))
	if r1 != 0 {
		return fmt.Errorf("midiOutShortMsg failed (%d): %v", r1, err)
	}
	return nil
}

// Close resets and closes the output device.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == 0 {
		return nil
	}
	procMidiOutReset.Call(uintptr(s.handle))
	r1, _, err := procMidiOutClose.Call(uintptr(s.handle))
	s.handle = 0
	if r1 != 0 {
		s.logger.Error(fmt.Sprintf("Failed to close MIDI output device: %v", err))
		return err
	}
	s.logger.Info("MIDI output device closed")
	return nil
}
