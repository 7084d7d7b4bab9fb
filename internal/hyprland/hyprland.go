// Package hyprland lists windows through Hyprland's command socket.
package hyprland

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/window"
)

// Client is the subset of `hyprctl clients -j` this package reads.
type Client struct {
	Address        string `json:"address"`
	Mapped         bool   `json:"mapped"`
	Hidden         bool   `json:"hidden"`
	At             []int  `json:"at"`
	Size           []int  `json:"size"`
	Class          string `json:"class"`
	Title          string `json:"title"`
	Pid            int    `json:"pid"`
	FocusHistoryID int    `json:"focusHistoryID"`
}

// Source talks to one Hyprland instance.
type Source struct {
	// SocketPath overrides the command socket location.
	SocketPath string
}

func NewSource() *Source {
	return &Source{}
}

func (s *Source) Name() string {
	return "hyprland"
}

// socketPath finds .socket.sock for the running instance. Hyprland 0.40+
// keeps it under $XDG_RUNTIME_DIR/hypr, older releases under /tmp/hypr.
func (s *Source) socketPath() (string, error) {
	if s.SocketPath != "" {
		return s.SocketPath, nil
	}

	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set, is Hyprland running?")
	}

	candidates := []string{}
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		candidates = append(candidates, filepath.Join(runtimeDir, "hypr", sig, ".socket.sock"))
	}
	candidates = append(candidates, filepath.Join("/tmp/hypr", sig, ".socket.sock"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("cannot find Hyprland socket, tried %v", candidates)
}

// sendCommand writes one request and reads until Hyprland closes the socket.
func (s *Source) sendCommand(ctx context.Context, cmd string) ([]byte, error) {
	sock, err := s.socketPath()
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", sock)
	if err != nil {
		return nil, fmt.Errorf("cannot open Hyprland socket %s: %w", sock, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return nil, fmt.Errorf("failed to send %q: %w", cmd, err)
	}

	out, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply to %q: %w", cmd, err)
	}
	logging.Debugf("Hyprland %s: %d bytes", cmd, len(out))
	return out, nil
}

func (s *Source) ListWindows(ctx context.Context) ([]window.Descriptor, error) {
	clientsJSON, err := s.sendCommand(ctx, "j/clients")
	if err != nil {
		return nil, fmt.Errorf("error getting clients: %w", err)
	}
	activeJSON, err := s.sendCommand(ctx, "j/activewindow")
	if err != nil {
		return nil, fmt.Errorf("error getting active window: %w", err)
	}
	return ParseClients(clientsJSON, activeJSON)
}

// ParseClients builds descriptors from the j/clients reply, marking the
// client whose address matches the j/activewindow reply. Unmapped and hidden
// clients are skipped.
func ParseClients(clientsJSON, activeJSON []byte) ([]window.Descriptor, error) {
	var clients []Client
	if err := json.Unmarshal(clientsJSON, &clients); err != nil {
		return nil, fmt.Errorf("failed to parse clients: %w", err)
	}

	// activewindow answers "{}" when nothing has focus
	var active Client
	if err := json.Unmarshal(activeJSON, &active); err != nil {
		return nil, fmt.Errorf("failed to parse active window: %w", err)
	}

	descs := make([]window.Descriptor, 0, len(clients))
	for _, c := range clients {
		if !c.Mapped || c.Hidden {
			continue
		}
		descs = append(descs, window.Descriptor{
			Active:   active.Address != "" && c.Address == active.Address,
			Geometry: geometry(c),
			PID:      c.Pid,
			Class:    c.Class,
			Title:    c.Title,
		})
	}
	return descs, nil
}

func geometry(c Client) window.Geometry {
	var g window.Geometry
	if len(c.At) == 2 {
		g.X, g.Y = c.At[0], c.At[1]
	}
	if len(c.Size) == 2 {
		g.Width, g.Height = c.Size[0], c.Size[1]
	}
	return g
}
