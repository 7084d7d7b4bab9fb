// Package session works out which window system the current graphical
// session runs, so the matching window source can be opened.
package session

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a window system backend.
type Kind string

const (
	KindAuto     Kind = "auto"
	KindKWin     Kind = "kwin"
	KindGNOME    Kind = "gnome"
	KindHyprland Kind = "hyprland"
	KindSway     Kind = "sway"
	KindX11      Kind = "x11"
)

// Supported lists the backends in the order they are documented.
var Supported = []Kind{KindKWin, KindGNOME, KindHyprland, KindSway, KindX11}

// ErrUnknownSessionType is returned when XDG_SESSION_TYPE is not set.
var ErrUnknownSessionType = errors.New("could not identify the window system type: is XDG_SESSION_TYPE set?")

// UnsupportedError reports a Wayland desktop with no matching backend.
type UnsupportedError struct {
	Desktop   string
	Supported []Kind
}

func (e *UnsupportedError) Error() string {
	names := make([]string, len(e.Supported))
	for i, k := range e.Supported {
		names[i] = string(k)
	}
	desktop := e.Desktop
	if desktop == "" {
		desktop = "unknown desktop"
	}
	return fmt.Sprintf("%s is not supported, active-window supports one of: %s\n\nSet the backend explicitly with --backend or the backend key in config.toml",
		desktop, strings.Join(names, ", "))
}

// ParseKind validates a backend name. The empty string means auto.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" || k == KindAuto {
		return KindAuto, nil
	}
	for _, supported := range Supported {
		if k == supported {
			return k, nil
		}
	}
	return "", &UnsupportedError{Desktop: s, Supported: Supported}
}

// Detect picks a backend from the session environment.
func Detect(getenv func(string) string) (Kind, error) {
	if getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return KindHyprland, nil
	}
	if getenv("SWAYSOCK") != "" {
		return KindSway, nil
	}

	sessionType := strings.ToLower(getenv("XDG_SESSION_TYPE"))
	if sessionType == "" {
		return "", ErrUnknownSessionType
	}

	desktop := getenv("XDG_CURRENT_DESKTOP")
	if hasDesktop(desktop, "KDE") {
		return KindKWin, nil
	}

	// X11 does not always report itself as "x11", so anything that is not
	// wayland is treated as X11.
	if sessionType != "wayland" {
		return KindX11, nil
	}

	if hasDesktop(desktop, "GNOME") {
		return KindGNOME, nil
	}

	return "", &UnsupportedError{Desktop: desktop, Supported: Supported}
}

// hasDesktop matches one entry of the colon-separated XDG_CURRENT_DESKTOP.
func hasDesktop(desktop, name string) bool {
	for _, d := range strings.Split(desktop, ":") {
		if strings.EqualFold(strings.TrimSpace(d), name) {
			return true
		}
	}
	return false
}
