package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		log.SetPrefix("")
		debugMode, verboseMode = false, false
	})
	return &buf
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name        string
		debug       bool
		verbose     bool
		wantDebug   bool
		wantVerbose bool
	}{
		{"quiet", false, false, false, false},
		{"verbose", false, true, false, true},
		{"debug implies verbose", true, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			Setup(tt.debug, tt.verbose)
			buf.Reset()

			Debugf("d %d", 1)
			Verbosef("v %d", 2)
			Infof("i %d", 3)

			out := buf.String()
			if got := strings.Contains(out, "[DEBUG] d 1"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "[VERBOSE] v 2"); got != tt.wantVerbose {
				t.Errorf("verbose line present = %v, want %v\n%s", got, tt.wantVerbose, out)
			}
			if !strings.Contains(out, "[INFO] i 3") {
				t.Errorf("info line missing:\n%s", out)
			}
		})
	}
}

func TestAlwaysShown(t *testing.T) {
	buf := capture(t)
	Setup(false, false)

	Errorf("broken %s", "pipe")
	Warningf("careful")
	Successf("done")

	out := buf.String()
	for _, want := range []string{"[ERROR] broken pipe", "[WARNING] careful", "[SUCCESS] done"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
