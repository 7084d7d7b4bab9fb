// Package x11 lists windows from the EWMH properties an X11 window manager
// publishes on the root window.
package x11

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/window"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// maxPropertyLength caps property reads, in 32-bit units.
const maxPropertyLength = 1 << 16

type Source struct{}

func NewSource() *Source {
	return &Source{}
}

func (s *Source) Name() string {
	return "x11"
}

// atoms holds the interned atoms one listing needs.
type atoms struct {
	clientList   xproto.Atom
	activeWindow xproto.Atom
	wmPid        xproto.Atom
	wmName       xproto.Atom
	utf8String   xproto.Atom
}

func internAtoms(conn *xgb.Conn) (atoms, error) {
	var a atoms
	for name, dst := range map[string]*xproto.Atom{
		"_NET_CLIENT_LIST":   &a.clientList,
		"_NET_ACTIVE_WINDOW": &a.activeWindow,
		"_NET_WM_PID":        &a.wmPid,
		"_NET_WM_NAME":       &a.wmName,
		"UTF8_STRING":        &a.utf8String,
	} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return a, fmt.Errorf("failed to intern %s: %w", name, err)
		}
		*dst = reply.Atom
	}
	return a, nil
}

func (s *Source) ListWindows(ctx context.Context) ([]window.Descriptor, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w\n\nTroubleshooting:\n  1. Check DISPLAY is set\n  2. Verify the X server accepts connections: xdpyinfo", err)
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root

	a, err := internAtoms(conn)
	if err != nil {
		return nil, err
	}

	clients, err := windowList(conn, root, a.clientList)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		logging.Debugf("_NET_CLIENT_LIST is empty; is the window manager EWMH compliant?")
	}

	activeList, err := windowList(conn, root, a.activeWindow)
	if err != nil {
		return nil, err
	}
	var active xproto.Window
	if len(activeList) > 0 {
		active = activeList[0]
	}

	descs := make([]window.Descriptor, 0, len(clients))
	for _, win := range clients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := describe(conn, root, win, a)
		if err != nil {
			// windows can disappear between the list read and the query
			logging.Debugf("Skipping window 0x%x: %v", win, err)
			continue
		}
		d.Active = active != 0 && win == active
		descs = append(descs, d)
	}
	return descs, nil
}

func windowList(conn *xgb.Conn, root xproto.Window, prop xproto.Atom) ([]xproto.Window, error) {
	reply, err := xproto.GetProperty(conn, false, root, prop, xproto.AtomWindow, 0, maxPropertyLength).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to read root window property: %w", err)
	}
	return windowsFromValue(reply.Value), nil
}

func describe(conn *xgb.Conn, root, win xproto.Window, a atoms) (window.Descriptor, error) {
	var d window.Descriptor

	geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return d, fmt.Errorf("get geometry: %w", err)
	}
	pos, err := xproto.TranslateCoordinates(conn, win, root, 0, 0).Reply()
	if err != nil {
		return d, fmt.Errorf("translate coordinates: %w", err)
	}
	d.Geometry = window.Geometry{
		X:      int(pos.DstX),
		Y:      int(pos.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}

	if reply, err := xproto.GetProperty(conn, false, win, a.wmPid, xproto.AtomCardinal, 0, 1).Reply(); err == nil && len(reply.Value) >= 4 {
		d.PID = int(xgb.Get32(reply.Value))
	}

	if reply, err := xproto.GetProperty(conn, false, win, xproto.AtomWmClass, xproto.AtomString, 0, maxPropertyLength).Reply(); err == nil {
		d.Class = ParseWMClass(reply.Value)
	}

	if reply, err := xproto.GetProperty(conn, false, win, a.wmName, a.utf8String, 0, maxPropertyLength).Reply(); err == nil && len(reply.Value) > 0 {
		d.Title = string(reply.Value)
	} else if reply, err := xproto.GetProperty(conn, false, win, xproto.AtomWmName, xproto.GetPropertyTypeAny, 0, maxPropertyLength).Reply(); err == nil {
		d.Title = string(reply.Value)
	}

	return d, nil
}

// windowsFromValue decodes a property of 32-bit window ids.
func windowsFromValue(value []byte) []xproto.Window {
	windows := make([]xproto.Window, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		if w := xproto.Window(xgb.Get32(value[i:])); w != 0 {
			windows = append(windows, w)
		}
	}
	return windows
}

// ParseWMClass returns the instance name of a WM_CLASS value
// ("instance\x00class\x00"), falling back to the class name.
func ParseWMClass(value []byte) string {
	parts := bytes.Split(bytes.TrimRight(value, "\x00"), []byte{0})
	if len(parts) > 0 && len(parts[0]) > 0 {
		return string(parts[0])
	}
	if len(parts) > 1 {
		return string(parts[1])
	}
	return ""
}
