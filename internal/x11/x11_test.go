package x11

import (
	"testing"

	"github.com/jezek/xgb/xproto"
)

func TestParseWMClass(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		want  string
	}{
		{"instance and class", []byte("konsole\x00konsole\x00"), "konsole"},
		{"instance differs", []byte("Navigator\x00firefox\x00"), "Navigator"},
		{"empty instance", []byte("\x00Steam\x00"), "Steam"},
		{"no trailing nul", []byte("xterm\x00XTerm"), "xterm"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseWMClass(tt.value); got != tt.want {
				t.Errorf("ParseWMClass(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestWindowsFromValue(t *testing.T) {
	// little-endian 32-bit ids: 0x01200003, 0, 0x0140000a, then a stray byte
	value := []byte{
		0x03, 0x00, 0x20, 0x01,
		0x00, 0x00, 0x00, 0x00,
		0x0a, 0x00, 0x40, 0x01,
		0xff,
	}
	got := windowsFromValue(value)
	want := []xproto.Window{0x01200003, 0x0140000a}
	if len(got) != len(want) {
		t.Fatalf("windowsFromValue() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window[%d] = 0x%x, want 0x%x", i, got[i], want[i])
		}
	}
}
