// Package sway lists windows through sway's i3-compatible IPC socket.
package sway

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/window"
)

const magic = "i3-ipc"

// IPC message types
const (
	msgGetWorkspaces uint32 = 1
	msgGetOutputs    uint32 = 3
	msgGetTree       uint32 = 4
)

// Rect is a sway rectangle in layout coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Node is one container of the GET_TREE reply.
type Node struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Focused          bool   `json:"focused"`
	Rect             Rect   `json:"rect"`
	Pid              int    `json:"pid"`
	AppID            string `json:"app_id"`
	WindowProperties *struct {
		Class    string `json:"class"`
		Instance string `json:"instance"`
	} `json:"window_properties"`
	Nodes         []Node `json:"nodes"`
	FloatingNodes []Node `json:"floating_nodes"`
}

// class returns app_id for native Wayland clients and WM_CLASS for XWayland.
func (n Node) class() string {
	if n.AppID != "" {
		return n.AppID
	}
	if n.WindowProperties != nil {
		return n.WindowProperties.Class
	}
	return ""
}

// isScratchpad reports whether the node is the hidden __i3 output holding
// the scratchpad workspace.
func (n Node) isScratchpad() bool {
	return n.Type == "output" && n.Name == "__i3"
}

// isView reports whether the node is an application window rather than a
// split or tab container.
func (n Node) isView() bool {
	return (n.Type == "con" || n.Type == "floating_con") && n.Pid > 0
}

// Output and workspace replies share these fields.
type focusable struct {
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
	Rect    Rect   `json:"rect"`
}

// Source talks to sway over $SWAYSOCK.
type Source struct {
	SocketPath string
	// SubtractBar moves windows up by the bar height of the focused output.
	SubtractBar bool
}

func NewSource(subtractBar bool) *Source {
	return &Source{SubtractBar: subtractBar}
}

func (s *Source) Name() string {
	return "sway"
}

func (s *Source) dial(ctx context.Context) (net.Conn, error) {
	sock := s.SocketPath
	if sock == "" {
		sock = os.Getenv("SWAYSOCK")
	}
	if sock == "" {
		return nil, fmt.Errorf("SWAYSOCK is not set, is sway running?")
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", sock)
	if err != nil {
		return nil, fmt.Errorf("cannot open sway socket %s: %w", sock, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	return conn, nil
}

func (s *Source) ListWindows(ctx context.Context) ([]window.Descriptor, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var tree Node
	if err := roundTrip(conn, msgGetTree, &tree); err != nil {
		return nil, fmt.Errorf("error getting tree: %w", err)
	}

	offset := 0
	if s.SubtractBar {
		var workspaces, outputs []focusable
		if err := roundTrip(conn, msgGetWorkspaces, &workspaces); err != nil {
			return nil, fmt.Errorf("error getting workspaces: %w", err)
		}
		if err := roundTrip(conn, msgGetOutputs, &outputs); err != nil {
			return nil, fmt.Errorf("error getting outputs: %w", err)
		}
		offset = BarHeight(workspaces, outputs)
		logging.Debugf("sway bar height: %d", offset)
	}

	return Views(tree, offset), nil
}

// Views flattens the tree depth-first into descriptors, tiling children
// before floating ones, and shifts every y coordinate up by barHeight.
// Scratchpad windows are skipped.
func Views(root Node, barHeight int) []window.Descriptor {
	var descs []window.Descriptor
	var walk func(n Node)
	walk = func(n Node) {
		if n.isScratchpad() {
			return
		}
		if n.isView() {
			descs = append(descs, window.Descriptor{
				Active: n.Focused,
				Geometry: window.Geometry{
					X:      n.Rect.X,
					Y:      n.Rect.Y - barHeight,
					Width:  n.Rect.Width,
					Height: n.Rect.Height,
				},
				PID:   n.Pid,
				Class: n.class(),
				Title: n.Name,
			})
		}
		for _, child := range n.Nodes {
			walk(child)
		}
		for _, child := range n.FloatingNodes {
			walk(child)
		}
	}
	walk(root)
	return descs
}

// BarHeight is the space on the focused output not covered by the focused
// workspace, which is where swaybar sits.
func BarHeight(workspaces, outputs []focusable) int {
	var ws, out *focusable
	for i := range workspaces {
		if workspaces[i].Focused {
			ws = &workspaces[i]
			break
		}
	}
	for i := range outputs {
		if outputs[i].Focused {
			out = &outputs[i]
			break
		}
	}
	if ws == nil || out == nil {
		return 0
	}
	if h := out.Rect.Height - ws.Rect.Height; h > 0 {
		return h
	}
	return 0
}

// roundTrip sends an empty-payload request and decodes the reply into v.
func roundTrip(conn io.ReadWriter, msgType uint32, v interface{}) error {
	if err := writeMessage(conn, msgType, nil); err != nil {
		return err
	}
	replyType, payload, err := readMessage(conn)
	if err != nil {
		return err
	}
	if replyType != msgType {
		return fmt.Errorf("unexpected reply type %d for request %d", replyType, msgType)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to parse reply: %w", err)
	}
	return nil
}

// The i3 IPC header is the magic string followed by payload length and
// message type, both in native byte order (little-endian on every platform
// sway ships on).
func writeMessage(w io.Writer, msgType uint32, payload []byte) error {
	header := make([]byte, len(magic)+8)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[len(magic):], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[len(magic)+4:], msgType)
	if _, err := w.Write(append(header, payload...)); err != nil {
		return fmt.Errorf("failed to write IPC message: %w", err)
	}
	return nil
}

func readMessage(r io.Reader) (uint32, []byte, error) {
	header := make([]byte, len(magic)+8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("failed to read IPC header: %w", err)
	}
	if string(header[:len(magic)]) != magic {
		return 0, nil, fmt.Errorf("invalid IPC magic %q", header[:len(magic)])
	}
	length := binary.LittleEndian.Uint32(header[len(magic):])
	msgType := binary.LittleEndian.Uint32(header[len(magic)+4:])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("failed to read IPC payload: %w", err)
	}
	return msgType, payload, nil
}
