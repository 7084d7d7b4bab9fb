// Package mutter reads the focused window from GNOME Shell through the
// FocusedWindow extension (focused-window-dbus@nichijou.github.io).
package mutter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Christopher-Hayes/active-window/internal/common"
	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/window"
)

// MutterWindow represents the window information from GNOME Shell's FocusedWindow extension
type MutterWindow struct {
	Title              string `json:"title"`
	WmClass            string `json:"wm_class"`
	WmClassInstance    string `json:"wm_class_instance"`
	Pid                int32  `json:"pid"`
	Id                 uint64 `json:"id"`
	Width              int32  `json:"width"`
	Height             int32  `json:"height"`
	X                  int32  `json:"x"`
	Y                  int32  `json:"y"`
	Focus              bool   `json:"focus"`
	InCurrentWorkspace bool   `json:"in_current_workspace"`
	Maximized          bool   `json:"maximized"`
	Monitor            int32  `json:"monitor"`
	Role               string `json:"role"`
}

// Descriptor converts the extension's window into a descriptor.
func (w MutterWindow) Descriptor() window.Descriptor {
	return window.Descriptor{
		Active: w.Focus,
		Geometry: window.Geometry{
			X:      int(w.X),
			Y:      int(w.Y),
			Width:  int(w.Width),
			Height: int(w.Height),
		},
		PID:   int(w.Pid),
		Class: w.WmClass,
		Title: w.Title,
	}
}

// Source asks the FocusedWindow extension for the focused window. The
// extension only knows about that one window, so the list has at most one
// entry.
type Source struct{}

func NewSource() *Source {
	return &Source{}
}

func (s *Source) Name() string {
	return "gnome"
}

func (s *Source) ListWindows(ctx context.Context) ([]window.Descriptor, error) {
	conn, err := common.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	logging.Debugf("Connected to D-Bus session bus")

	// Call the FocusedWindow extension
	obj := conn.Object(common.GnomeDestination, common.GnomeObjectPath)
	call := obj.CallWithContext(ctx, common.GnomeMethod, 0)

	if call.Err != nil {
		return nil, fmt.Errorf("failed to call FocusedWindow.Get: %w\n\nTroubleshooting:\n  1. Verify extension is installed: gnome-extensions list | grep focused\n  2. Enable if needed: gnome-extensions enable focused-window-dbus@nichijou.github.io\n  3. Test D-Bus manually: gdbus call --session --dest org.gnome.Shell --object-path /org/gnome/shell/extensions/FocusedWindow --method org.gnome.shell.extensions.FocusedWindow.Get", call.Err)
	}

	// The response is a tuple with a JSON string
	var jsonStr string
	if err := call.Store(&jsonStr); err != nil {
		return nil, fmt.Errorf("failed to parse D-Bus response: %w", err)
	}

	logging.Debugf("Received D-Bus response: %s", jsonStr)

	return ParseFocusedWindow(jsonStr)
}

// ParseFocusedWindow decodes the extension's JSON reply. An empty reply or an
// empty object means nothing is focused.
func ParseFocusedWindow(jsonStr string) ([]window.Descriptor, error) {
	trimmed := strings.TrimSpace(jsonStr)
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return nil, nil
	}

	var w MutterWindow
	if err := json.Unmarshal([]byte(trimmed), &w); err != nil {
		return nil, fmt.Errorf("failed to parse window JSON: %w", err)
	}
	if w.WmClass == "" && w.Pid == 0 {
		return nil, nil
	}
	return []window.Descriptor{w.Descriptor()}, nil
}
