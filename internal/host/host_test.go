package host

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/padbridge/internal/logger"
	"github.com/leandrodaf/padbridge/sdk/contracts"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errSink = errors.New("sink unplugged")

type memSink struct {
	mu     sync.Mutex
	sent   [][]byte
	fail   bool
	closed bool
}

func (s *memSink) Name() string { return "mem" }

func (s *memSink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errSink
	}
	s.sent = append(s.sent, append([]byte(nil), data...))
	return nil
}

func (s *memSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memSink) snapshot() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.sent...)
}

type handler struct {
	mu     sync.Mutex
	events []string
	inits  int
}

func (h *handler) OnThreadInit(string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inits++
}

func (h *handler) OnTopologyChanged(a, b contracts.PortID, connected bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if connected {
		h.events = append(h.events, "connect")
	} else {
		h.events = append(h.events, "disconnect")
	}
	return true
}

func testConfig() contracts.HostConfig {
	return contracts.HostConfig{SampleRate: 48000, CycleFrames: 64, MaxEvents: 4, MaxBytes: 16}
}

func testLogger() contracts.Logger {
	core, _ := observer.New(zapcore.DebugLevel)
	return logger.NewWithCore(core)
}

func TestCycleBuffer(t *testing.T) {
	b := NewCycleBuffer(64, 2, 7)

	if err := b.Write(0, []byte{1, 2, 3, 0}); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err := b.Write(0, []byte{4, 5, 6, 0}); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("byte overflow err = %v", err)
	}
	if err := b.Write(0, []byte{4, 5, 6}); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err := b.Write(0, []byte{7}); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("event overflow err = %v", err)
	}
	if err := b.Write(64, []byte{7}); !errors.Is(err, ErrLateEvent) {
		t.Fatalf("late event err = %v", err)
	}

	var got [][]byte
	b.Each(func(_ uint32, data []byte) { got = append(got, append([]byte(nil), data...)) })
	if len(got) != 2 || !bytes.Equal(got[0], []byte{1, 2, 3, 0}) || !bytes.Equal(got[1], []byte{4, 5, 6}) {
		t.Fatalf("events = %v", got)
	}

	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("Len() after Reset = %d", b.Len())
	}
	if err := b.Write(0, []byte{1, 2, 3, 0}); err != nil {
		t.Fatalf("Write() after Reset failed: %v", err)
	}
}

func TestOpenValidation(t *testing.T) {
	cfg := testConfig()
	if _, err := Open("", cfg, &memSink{}, testLogger()); !errors.Is(err, ErrClientOpen) {
		t.Errorf("empty name err = %v", err)
	}
	if _, err := Open("padbridge", cfg, nil, testLogger()); !errors.Is(err, ErrClientOpen) {
		t.Errorf("nil sink err = %v", err)
	}
	bad := cfg
	bad.SampleRate = 0
	if _, err := Open("padbridge", bad, &memSink{}, testLogger()); !errors.Is(err, ErrClientOpen) {
		t.Errorf("zero sample rate err = %v", err)
	}
}

func TestRegisterPort(t *testing.T) {
	c, err := Open("padbridge", testConfig(), &memSink{}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.RegisterPort("padbridge_out", contracts.Output)
	if err != nil {
		t.Fatalf("RegisterPort() failed: %v", err)
	}
	if _, err := c.RegisterPort("padbridge_out", contracts.Output); !errors.Is(err, ErrPortRegistration) {
		t.Errorf("duplicate err = %v", err)
	}
	if _, err := c.RegisterPort("", contracts.Input); !errors.Is(err, ErrPortRegistration) {
		t.Errorf("empty name err = %v", err)
	}

	p, ok := c.PortByID(out)
	if !ok || !c.IsMine(p) || p.FullName() != "padbridge:padbridge_out" {
		t.Errorf("PortByID(out) = %+v, %v", p, ok)
	}
	sp, ok := c.PortByID(c.SinkPort())
	if !ok || c.IsMine(sp) {
		t.Errorf("sink port = %+v, %v", sp, ok)
	}
	if c.OutPort() != out {
		t.Errorf("OutPort() = %d, want %d", c.OutPort(), out)
	}
}

func TestActivateNeedsOutputPort(t *testing.T) {
	c, _ := Open("padbridge", testConfig(), &memSink{}, testLogger())
	_, _ = c.RegisterPort("padbridge_in", contracts.Input)
	err := c.Activate(func(contracts.PortWriter) contracts.Control { return contracts.Continue }, nil)
	if !errors.Is(err, ErrPortRegistration) {
		t.Fatalf("Activate() err = %v", err)
	}
}

func TestRunCycleFlushesInOrder(t *testing.T) {
	sink := &memSink{}
	c, _ := Open("padbridge", testConfig(), sink, testLogger())

	c.RunCycle(func(w contracts.PortWriter) contracts.Control {
		_ = w.Write(0, []byte{0x9F, 12, 127, 0})
		_ = w.Write(0, []byte{0xBF, 59, 127})
		return contracts.Continue
	})
	c.RunCycle(func(contracts.PortWriter) contracts.Control { return contracts.Continue })

	sent := sink.snapshot()
	if len(sent) != 2 || !bytes.Equal(sent[0], []byte{0x9F, 12, 127, 0}) || !bytes.Equal(sent[1], []byte{0xBF, 59, 127}) {
		t.Fatalf("sent = %v", sent)
	}
	if c.Cycles() != 2 {
		t.Errorf("Cycles() = %d", c.Cycles())
	}
}

func TestRunCycleCountsSinkErrors(t *testing.T) {
	sink := &memSink{fail: true}
	c, _ := Open("padbridge", testConfig(), sink, testLogger())
	c.RunCycle(func(w contracts.PortWriter) contracts.Control {
		_ = w.Write(0, []byte{1, 2, 3})
		return contracts.Continue
	})
	if c.FlushErrors() != 1 {
		t.Errorf("FlushErrors() = %d", c.FlushErrors())
	}
}

func TestActivateRunsCyclesAndNotifies(t *testing.T) {
	sink := &memSink{}
	h := &handler{}
	c, _ := Open("padbridge", testConfig(), sink, testLogger())
	out, _ := c.RegisterPort("padbridge_out", contracts.Output)
	_, _ = c.RegisterPort("padbridge_in", contracts.Input)

	var once sync.Once
	err := c.Activate(func(w contracts.PortWriter) contracts.Control {
		once.Do(func() { _ = w.Write(0, []byte{60, 127, 0, 0}) })
		return contracts.Continue
	}, h)
	if err != nil {
		t.Fatalf("Activate() failed: %v", err)
	}
	if !c.Connected(out, c.SinkPort()) {
		t.Error("output not connected to sink")
	}
	if _, err := c.RegisterPort("late", contracts.Output); !errors.Is(err, ErrPortRegistration) {
		t.Errorf("RegisterPort() after Activate err = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.Cycles() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.Cycles() < 3 {
		t.Fatalf("only %d cycles ran", c.Cycles())
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}

	if sent := sink.snapshot(); len(sent) != 1 {
		t.Errorf("sent = %v", sent)
	}
	sink.mu.Lock()
	closed := sink.closed
	sink.mu.Unlock()
	if !closed {
		t.Error("sink not closed")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inits != 1 || len(h.events) != 2 || h.events[0] != "connect" || h.events[1] != "disconnect" {
		t.Errorf("notifications: inits=%d events=%v", h.inits, h.events)
	}
}

func TestQuitStopsProcessing(t *testing.T) {
	c, _ := Open("padbridge", testConfig(), &memSink{}, testLogger())
	_, _ = c.RegisterPort("padbridge_out", contracts.Output)
	if err := c.Activate(func(contracts.PortWriter) contracts.Control { return contracts.Quit }, nil); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for c.Cycles() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if n := c.Cycles(); n != 1 {
		t.Errorf("Cycles() = %d after Quit, want 1", n)
	}
	_ = c.Close()
}

func TestRunCycleRefusedOnceActive(t *testing.T) {
	c, _ := Open("padbridge", testConfig(), &memSink{}, testLogger())
	_, _ = c.RegisterPort("padbridge_out", contracts.Output)
	if err := c.Activate(func(contracts.PortWriter) contracts.Control { return contracts.Continue }, nil); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	called := false
	_, err := c.RunCycle(func(contracts.PortWriter) contracts.Control {
		called = true
		return contracts.Continue
	})
	if !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("RunCycle() err = %v, want ErrAlreadyActive", err)
	}
	if called {
		t.Error("process ran outside the run loop")
	}
}

func TestActivateRefusedDuringRunCycle(t *testing.T) {
	c, _ := Open("padbridge", testConfig(), &memSink{}, testLogger())
	_, _ = c.RegisterPort("padbridge_out", contracts.Output)
	noop := func(contracts.PortWriter) contracts.Control { return contracts.Continue }

	var activateErr error
	_, err := c.RunCycle(func(contracts.PortWriter) contracts.Control {
		activateErr = c.Activate(noop, nil)
		return contracts.Continue
	})
	if err != nil {
		t.Fatalf("RunCycle() failed: %v", err)
	}
	if !errors.Is(activateErr, ErrAlreadyActive) {
		t.Errorf("Activate() inside a cycle err = %v, want ErrAlreadyActive", activateErr)
	}

	if err := c.Activate(noop, nil); err != nil {
		t.Fatalf("Activate() after the cycle failed: %v", err)
	}
	_ = c.Close()
}
