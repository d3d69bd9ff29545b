package message

import (
	"errors"
	"testing"
)

func TestFromDescriptionStatusByte(t *testing.T) {
	bases := map[string]byte{
		"note_off":          0x80,
		"note_on":           0x90,
		"poly_key_pressure": 0xA0,
		"controller_change": 0xB0,
		"program_change":    0xC0,
		"channel_pressure":  0xD0,
		"pitch_bend":        0xE0,
	}

	for name, base := range bases {
		for ch := byte(0); ch <= 15; ch++ {
			m, err := FromDescription(name, ch, 1, 0)
			if err != nil {
				t.Fatalf("FromDescription(%q, %d) failed: %v", name, ch, err)
			}
			if m.Status != base+ch {
				t.Errorf("FromDescription(%q, %d).Status = %#x, want %#x", name, ch, m.Status, base+ch)
			}
			if m.Kind() != name || m.Channel() != ch {
				t.Errorf("round trip of %#x: kind=%q channel=%d", m.Status, m.Kind(), m.Channel())
			}
		}
		for ch := 16; ch <= 255; ch++ {
			_, err := FromDescription(name, byte(ch), 1, 0)
			if !errors.Is(err, ErrInvalidChannel) {
				t.Fatalf("FromDescription(%q, %d) err = %v, want ErrInvalidChannel", name, ch, err)
			}
		}
	}
}

func TestFromDescriptionData2(t *testing.T) {
	for _, name := range []string{"program_change", "channel_pressure"} {
		for d2 := 0; d2 <= 255; d2++ {
			_, err := FromDescription(name, 3, 10, byte(d2))
			if d2 == 0 && err != nil {
				t.Errorf("%s with data2=0 failed: %v", name, err)
			}
			if d2 != 0 && !errors.Is(err, ErrInvalidData2) {
				t.Errorf("%s with data2=%d err = %v, want ErrInvalidData2", name, d2, err)
			}
		}
	}

	if _, err := FromDescription("note_on", 0, 60, 127); err != nil {
		t.Errorf("note_on with data2 != 0 must succeed: %v", err)
	}
}

func TestFromDescriptionUnknownName(t *testing.T) {
	for _, name := range []string{"", "note", "NOTE_ON", "sysex", "init"} {
		if _, err := FromDescription(name, 0, 0, 0); !errors.Is(err, ErrUnknownStatusName) {
			t.Errorf("FromDescription(%q) err = %v, want ErrUnknownStatusName", name, err)
		}
	}
}

func TestFromDescriptionChannelCheckedFirst(t *testing.T) {
	if _, err := FromDescription("bogus", 16, 0, 0); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("err = %v, want ErrInvalidChannel", err)
	}
}

func TestPitchBlendAlias(t *testing.T) {
	m, err := FromDescription("pitch_blend", 2, 0, 64)
	if err != nil {
		t.Fatalf("alias rejected: %v", err)
	}
	if m.Status != 0xE2 {
		t.Errorf("Status = %#x, want 0xe2", m.Status)
	}
}

func TestFromBytesNeverFails(t *testing.T) {
	for _, b := range [][3]byte{{0, 0, 0}, {0xFF, 0xFF, 0xFF}, {0x9F, 200, 255}, {12, 0x80, 0xF7}} {
		m := FromBytes(b[0], b[1], b[2])
		if m.Bytes() != b {
			t.Errorf("FromBytes(%v).Bytes() = %v", b, m.Bytes())
		}
	}
}

func TestPadded(t *testing.T) {
	m := FromBytes(60, 127, 0)
	if got := m.Padded(); got != [4]byte{60, 127, 0, 0} {
		t.Errorf("Padded() = %v", got)
	}
}
