package common

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// D-Bus configuration for the GNOME Shell FocusedWindow extension
const (
	GnomeDestination = "org.gnome.Shell"
	GnomeObjectPath  = "/org/gnome/shell/extensions/FocusedWindow"
	GnomeInterface   = "org.gnome.shell.extensions.FocusedWindow"
	GnomeMethod      = GnomeInterface + ".Get"
)

// D-Bus configuration for KWin's scripting API
const (
	KWinDestination      = "org.kde.KWin"
	KWinScriptingPath    = "/Scripting"
	KWinScriptingIface   = "org.kde.kwin.Scripting"
	KWinLoadScript       = KWinScriptingIface + ".loadScript"
	KWinUnloadScript     = KWinScriptingIface + ".unloadScript"
	KWinScriptIface      = "org.kde.kwin.Script"
	KWinScriptRun        = KWinScriptIface + ".run"
	KWinScriptPathPrefix = "/Scripting/Script" // Plasma 6; Plasma 5 uses "/<id>"
)

// Object exported by active-window so KWin scripts can hand results back
const (
	ReportObjectPath = "/ActiveWindow/Report"
	ReportInterface  = "io.github.activewindow.Report"
	ReportMethod     = "Report"
)

// ConnectSessionBus opens a private session bus connection. Callers close it.
func ConnectSessionBus() (*dbus.Conn, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w\n\nTroubleshooting:\n  1. Make sure you are running inside a graphical session\n  2. Check DBUS_SESSION_BUS_ADDRESS is set", err)
	}
	return conn, nil
}
