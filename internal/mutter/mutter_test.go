package mutter

import (
	"testing"

	"github.com/Christopher-Hayes/active-window/window"
)

func TestParseFocusedWindow(t *testing.T) {
	reply := `{"title":"GitHub - Mozilla Firefox","wm_class":"firefox","wm_class_instance":"Navigator","pid":4242,"id":2411,"width":1280,"height":720,"x":64,"y":32,"focus":true,"in_current_workspace":true,"moveable":true,"resizeable":true,"canclose":true,"canmaximize":true,"maximized":false,"canminimize":true,"display":{},"frame_type":0,"window_type":0,"layer":2,"monitor":0,"role":"browser","area":{},"area_all":{},"area_cust":{}}`

	descs, err := ParseFocusedWindow(reply)
	if err != nil {
		t.Fatalf("ParseFocusedWindow() error = %v", err)
	}
	if len(descs) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descs))
	}

	want := window.Descriptor{
		Active:   true,
		Geometry: window.Geometry{X: 64, Y: 32, Width: 1280, Height: 720},
		PID:      4242,
		Class:    "firefox",
		Title:    "GitHub - Mozilla Firefox",
	}
	if descs[0] != want {
		t.Errorf("descriptor = %+v, want %+v", descs[0], want)
	}

	summary, ok := window.Active(descs)
	if !ok || summary.Extents != [4]int{64, 32, 1280, 720} {
		t.Errorf("Active() = %+v, %v", summary, ok)
	}
}

func TestParseFocusedWindowEmpty(t *testing.T) {
	for _, reply := range []string{"", "  ", "null", "{}", `{"title":"","wm_class":"","pid":0}`} {
		descs, err := ParseFocusedWindow(reply)
		if err != nil {
			t.Errorf("ParseFocusedWindow(%q) error = %v", reply, err)
		}
		if len(descs) != 0 {
			t.Errorf("ParseFocusedWindow(%q) = %v, want none", reply, descs)
		}
	}
}

func TestParseFocusedWindowUnfocused(t *testing.T) {
	descs, err := ParseFocusedWindow(`{"wm_class":"gnome-shell","pid":1000,"focus":false}`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := window.Active(descs); ok {
		t.Error("window without focus must not be reported as active")
	}
}

func TestParseFocusedWindowInvalid(t *testing.T) {
	if _, err := ParseFocusedWindow(`{"wm_class":`); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
