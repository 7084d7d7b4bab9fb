// Package kwin lists windows on KDE Plasma by loading a short script into
// KWin through its scripting D-Bus API. The script walks the workspace's
// window list and calls back into a D-Bus object exported by this process
// with the result as JSON.
package kwin

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/template"
	"time"

	"github.com/Christopher-Hayes/active-window/internal/common"
	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/window"
	"github.com/godbus/dbus/v5"
)

//go:embed active_window.js.tmpl
var scriptSource string

var scriptTemplate = template.Must(template.New("active_window.js").Parse(scriptSource))

// unloadTimeout bounds the cleanup call, which runs after ctx may have expired.
const unloadTimeout = 1 * time.Second

// kwinWindow is one entry of the script's report. KWin geometry is a QRectF,
// so coordinates can be fractional under scaling.
type kwinWindow struct {
	Active         bool `json:"active"`
	ClientGeometry struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"clientGeometry"`
	Pid           int    `json:"pid"`
	ResourceClass string `json:"resourceClass"`
	Caption       string `json:"caption"`
}

// ParseReport decodes the JSON array the script sends back.
func ParseReport(payload string) ([]window.Descriptor, error) {
	var windows []kwinWindow
	if err := json.Unmarshal([]byte(payload), &windows); err != nil {
		return nil, fmt.Errorf("failed to parse KWin script report: %w", err)
	}

	descs := make([]window.Descriptor, 0, len(windows))
	for _, w := range windows {
		g := w.ClientGeometry
		descs = append(descs, window.Descriptor{
			Active: w.Active,
			Geometry: window.Geometry{
				X:      int(math.Round(g.X)),
				Y:      int(math.Round(g.Y)),
				Width:  int(math.Round(g.Width)),
				Height: int(math.Round(g.Height)),
			},
			PID:   w.Pid,
			Class: w.ResourceClass,
			Title: w.Caption,
		})
	}
	return descs, nil
}

// renderScript fills in the D-Bus address the script reports to.
func renderScript(service string) ([]byte, error) {
	quote := func(s string) string {
		b, _ := json.Marshal(s)
		return string(b)
	}
	params := struct {
		Service, Path, Interface, Method string
	}{
		Service:   quote(service),
		Path:      quote(common.ReportObjectPath),
		Interface: quote(common.ReportInterface),
		Method:    quote(common.ReportMethod),
	}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, params); err != nil {
		return nil, fmt.Errorf("failed to render KWin script: %w", err)
	}
	return buf.Bytes(), nil
}

// receiver is exported on the session bus; KWin calls Report once per run.
type receiver struct {
	reports chan string
}

func (r *receiver) Report(payload string) *dbus.Error {
	select {
	case r.reports <- payload:
	default:
		// a report is already pending; later ones are dropped
	}
	return nil
}

// Source lists windows through KWin scripting.
type Source struct {
	Timeout time.Duration
}

func NewSource(timeout time.Duration) *Source {
	return &Source{Timeout: timeout}
}

func (s *Source) Name() string {
	return "kwin"
}

func (s *Source) ListWindows(ctx context.Context) ([]window.Descriptor, error) {
	conn, err := common.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	recv := &receiver{reports: make(chan string, 1)}
	if err := conn.Export(recv, common.ReportObjectPath, common.ReportInterface); err != nil {
		return nil, fmt.Errorf("failed to export report object: %w", err)
	}

	names := conn.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("session bus connection has no unique name")
	}
	service := names[0]
	logging.Debugf("Waiting for KWin report on %s%s", service, common.ReportObjectPath)

	script, err := renderScript(service)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "active-window-*.js")
	if err != nil {
		return nil, fmt.Errorf("failed to create script file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(script); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write script file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write script file: %w", err)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	plugin := fmt.Sprintf("active-window-%d-%d", os.Getpid(), time.Now().UnixNano())
	scripting := conn.Object(common.KWinDestination, common.KWinScriptingPath)

	var id int32
	if err := scripting.CallWithContext(ctx, common.KWinLoadScript, 0, f.Name(), plugin).Store(&id); err != nil {
		return nil, fmt.Errorf("failed to load KWin script: %w\n\nTroubleshooting:\n  1. Verify you're running KDE Plasma (KWin)\n  2. Test D-Bus manually: qdbus org.kde.KWin /Scripting", err)
	}
	defer s.unload(conn, plugin)

	if id < 0 {
		return nil, fmt.Errorf("KWin refused to load script %s (id %d)", f.Name(), id)
	}
	logging.Debugf("Loaded KWin script %s as id %d", plugin, id)

	if err := runScript(ctx, conn, id); err != nil {
		return nil, err
	}

	select {
	case payload := <-recv.reports:
		logging.Debugf("Received KWin report: %s", payload)
		return ParseReport(payload)
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out waiting for KWin script report: %w", ctx.Err())
	}
}

// runScript starts a loaded script. Plasma 6 registers it under
// /Scripting/Script<id>, Plasma 5 under /<id>.
func runScript(ctx context.Context, conn *dbus.Conn, id int32) error {
	paths := []dbus.ObjectPath{
		dbus.ObjectPath(fmt.Sprintf("%s%d", common.KWinScriptPathPrefix, id)),
		dbus.ObjectPath(fmt.Sprintf("/%d", id)),
	}

	var lastErr error
	for _, path := range paths {
		call := conn.Object(common.KWinDestination, path).CallWithContext(ctx, common.KWinScriptRun, 0)
		if call.Err == nil {
			return nil
		}
		logging.Debugf("Running script at %s failed: %v", path, call.Err)
		lastErr = call.Err
	}
	return fmt.Errorf("failed to run KWin script %d: %w", id, lastErr)
}

func (s *Source) unload(conn *dbus.Conn, plugin string) {
	ctx, cancel := context.WithTimeout(context.Background(), unloadTimeout)
	defer cancel()

	var unloaded bool
	scripting := conn.Object(common.KWinDestination, common.KWinScriptingPath)
	if err := scripting.CallWithContext(ctx, common.KWinUnloadScript, 0, plugin).Store(&unloaded); err != nil {
		logging.Debugf("Failed to unload KWin script %s: %v", plugin, err)
		return
	}
	if !unloaded {
		logging.Debugf("KWin had no script named %s to unload", plugin)
	}
}
