package hyprland

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Christopher-Hayes/active-window/window"
)

const clientsReply = `[
	{"address":"0x55a1","mapped":true,"hidden":false,"at":[0,0],"size":[960,1080],"class":"firefox","title":"GitHub","pid":300,"focusHistoryID":1},
	{"address":"0x55b2","mapped":true,"hidden":false,"at":[10,20],"size":[800,600],"class":"kitty","title":"zsh","pid":1234,"focusHistoryID":0},
	{"address":"0x55c3","mapped":false,"hidden":false,"at":[0,0],"size":[0,0],"class":"","title":"","pid":555,"focusHistoryID":2}
]`

const activeReply = `{"address":"0x55b2","mapped":true,"at":[10,20],"size":[800,600],"class":"kitty","title":"zsh","pid":1234}`

func TestParseClients(t *testing.T) {
	descs, err := ParseClients([]byte(clientsReply), []byte(activeReply))
	if err != nil {
		t.Fatalf("ParseClients() error = %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("unmapped client should be skipped, got %d descriptors", len(descs))
	}

	summary, ok := window.Active(descs)
	if !ok {
		t.Fatal("expected an active window")
	}
	want := window.Summary{Extents: [4]int{10, 20, 800, 600}, PID: 1234, Name: "kitty"}
	if summary != want {
		t.Errorf("Active() = %+v, want %+v", summary, want)
	}
}

func TestParseClientsNoFocus(t *testing.T) {
	descs, err := ParseClients([]byte(clientsReply), []byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := window.Active(descs); ok {
		t.Error("empty activewindow reply must not mark a client active")
	}
}

func TestParseClientsInvalid(t *testing.T) {
	if _, err := ParseClients([]byte("unknown request"), []byte("{}")); err == nil {
		t.Error("expected error for non-JSON clients reply")
	}
}

// fakeHyprland answers j/clients and j/activewindow on a temporary socket.
func fakeHyprland(t *testing.T) string {
	t.Helper()
	sock := filepath.Join(t.TempDir(), ".socket.sock")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 64)
				n, err := bufio.NewReader(c).Read(buf)
				if err != nil {
					return
				}
				switch string(buf[:n]) {
				case "j/clients":
					c.Write([]byte(clientsReply))
				case "j/activewindow":
					c.Write([]byte(activeReply))
				default:
					c.Write([]byte("unknown request"))
				}
			}(conn)
		}
	}()
	return sock
}

func TestListWindowsOverSocket(t *testing.T) {
	src := &Source{SocketPath: fakeHyprland(t)}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	summary, ok, err := window.Lookup(ctx, src)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok || summary.Name != "kitty" || summary.PID != 1234 {
		t.Errorf("Lookup() = %+v, %v", summary, ok)
	}
}

func TestSocketPathFromEnv(t *testing.T) {
	runtimeDir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "sig123")

	if _, err := (&Source{}).socketPath(); err == nil {
		t.Error("expected error when no socket exists")
	}

	sock := filepath.Join(runtimeDir, "hypr", "sig123", ".socket.sock")
	dir := filepath.Dir(sock)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	got, err := (&Source{}).socketPath()
	if err != nil {
		t.Fatalf("socketPath() error = %v", err)
	}
	if got != sock {
		t.Errorf("socketPath() = %q, want %q", got, sock)
	}

	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	if _, err := (&Source{}).socketPath(); err == nil {
		t.Error("expected error without instance signature")
	}
}
