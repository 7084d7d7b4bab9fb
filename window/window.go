// Package window finds the active window in a list of window descriptors and
// projects it into a small summary record.
//
// The list itself comes from a Source, which wraps whatever the compositor
// exposes (KWin scripting, the GNOME Shell FocusedWindow extension, Hyprland
// and Sway sockets, or EWMH properties on X11). This package does no I/O of
// its own.
//
// Example usage:
//
//	summary, ok, err := window.Lookup(ctx, src)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if ok {
//		fmt.Println(summary.Name, summary.PID, summary.Extents)
//	}
package window

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoActiveWindow is returned by callers that treat a missing active window
// as a failure. Lookup itself never returns it.
var ErrNoActiveWindow = errors.New("no active window")

// Geometry is the client area of a window in screen coordinates.
type Geometry struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Descriptor describes one on-screen window as reported by the compositor.
type Descriptor struct {
	Active   bool     `json:"active" yaml:"active"`
	Geometry Geometry `json:"geometry" yaml:"geometry"`
	PID      int      `json:"pid" yaml:"pid"`
	Class    string   `json:"class" yaml:"class"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
}

// Summary is the projection of the active window that gets printed.
type Summary struct {
	Extents [4]int `json:"extents" yaml:"extents"`
	PID     int    `json:"pid" yaml:"pid"`
	Name    string `json:"name" yaml:"name"`
}

// Source lists the windows known to a compositor, in the compositor's order.
type Source interface {
	ListWindows(ctx context.Context) ([]Descriptor, error)

	// Name returns the backend name (e.g., "kwin", "x11")
	Name() string
}

// Summarize projects a descriptor into a Summary.
func Summarize(d Descriptor) Summary {
	return Summary{
		Extents: [4]int{d.Geometry.X, d.Geometry.Y, d.Geometry.Width, d.Geometry.Height},
		PID:     d.PID,
		Name:    d.Class,
	}
}

// Active returns the summary of the first active descriptor in list order.
// The second result is false when no descriptor is active, including when
// descs is empty.
func Active(descs []Descriptor) (Summary, bool) {
	for _, d := range descs {
		if d.Active {
			return Summarize(d), true
		}
	}
	return Summary{}, false
}

// Lookup lists the windows of src and returns the active one.
func Lookup(ctx context.Context, src Source) (Summary, bool, error) {
	descs, err := src.ListWindows(ctx)
	if err != nil {
		return Summary{}, false, fmt.Errorf("%s: list windows: %w", src.Name(), err)
	}
	summary, ok := Active(descs)
	return summary, ok, nil
}

// Changed reports whether two lookups describe a different active window.
func Changed(prev Summary, prevOK bool, cur Summary, curOK bool) bool {
	if prevOK != curOK {
		return true
	}
	return prev != cur
}

// StaticSource is a Source over a fixed list. It is used by tests and by
// callers that already hold descriptors.
type StaticSource struct {
	Windows []Descriptor
	Err     error
}

// ListWindows returns the fixed list.
func (s StaticSource) ListWindows(ctx context.Context) ([]Descriptor, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Windows, nil
}

// Name returns "static".
func (s StaticSource) Name() string {
	return "static"
}
