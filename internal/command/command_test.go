package command

import (
	"errors"
	"testing"

	"github.com/leandrodaf/padbridge/internal/message"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Command
		wantErr error
	}{
		{in: "init", want: Command{Kind: Init}},
		{in: "init\n", want: Command{Kind: Init}},
		{in: "60 127 0", want: Command{Kind: Raw, Message: message.FromBytes(60, 127, 0)}},
		{in: "0 0 0", want: Command{Kind: Raw, Message: message.FromBytes(0, 0, 0)}},
		{in: "255 255 255", want: Command{Kind: Raw, Message: message.FromBytes(255, 255, 255)}},
		{in: "144 60 100\r\n", want: Command{Kind: Raw, Message: message.FromBytes(144, 60, 100)}},
		{in: "1 2", wantErr: ErrTokenCount},
		{in: "1 2 3 4", wantErr: ErrTokenCount},
		{in: "", wantErr: ErrTokenCount},
		{in: "INIT", wantErr: ErrTokenCount},
		{in: "1  2 3", wantErr: ErrTokenCount},
		{in: "abc 1 2", wantErr: ErrByteParse},
		{in: "256 1 2", wantErr: ErrByteParse},
		{in: "1 -2 3", wantErr: ErrByteParse},
		{in: "1 2 0x10", wantErr: ErrByteParse},
		{in: "+60 127 +0", want: Command{Kind: Raw, Message: message.FromBytes(60, 127, 0)}},
		{in: "++5 1 2", wantErr: ErrByteParse},
		{in: "+ 1 2", wantErr: ErrByteParse},
		{in: "+256 1 2", wantErr: ErrByteParse},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) err = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	c, err := Parse("60 127 0")
	if err != nil {
		t.Fatal(err)
	}
	if c.String() != "60 127 0" {
		t.Errorf("String() = %q", c.String())
	}
}
