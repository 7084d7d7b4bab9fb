package main

import (
	"os"

	"github.com/Christopher-Hayes/active-window/internal/config"
	"github.com/Christopher-Hayes/active-window/internal/hyprland"
	"github.com/Christopher-Hayes/active-window/internal/kwin"
	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/internal/mutter"
	"github.com/Christopher-Hayes/active-window/internal/session"
	"github.com/Christopher-Hayes/active-window/internal/sway"
	"github.com/Christopher-Hayes/active-window/internal/x11"
	"github.com/Christopher-Hayes/active-window/window"
)

// resolveKind turns the configured backend into a concrete one, detecting it
// from the session environment for "auto".
func resolveKind(backend string, getenv func(string) string) (session.Kind, error) {
	kind, err := session.ParseKind(backend)
	if err != nil {
		return "", err
	}
	if kind != session.KindAuto {
		return kind, nil
	}

	logging.Debugf("Session type: %s, Desktop: %s", getenv("XDG_SESSION_TYPE"), getenv("XDG_CURRENT_DESKTOP"))
	return session.Detect(getenv)
}

// newSource builds the window source for a backend.
func newSource(kind session.Kind, c *config.Config) window.Source {
	switch kind {
	case session.KindKWin:
		return kwin.NewSource(c.KWin.Timeout.Duration)
	case session.KindGNOME:
		return mutter.NewSource()
	case session.KindHyprland:
		return hyprland.NewSource()
	case session.KindSway:
		return sway.NewSource(c.Sway.SubtractBar)
	case session.KindX11:
		return x11.NewSource()
	default:
		return nil
	}
}

// openSource is replaced in tests.
var openSource = openConfiguredSource

// openConfiguredSource resolves the configured backend and opens its source.
func openConfiguredSource() (window.Source, error) {
	kind, err := resolveKind(cfg.Backend, os.Getenv)
	if err != nil {
		return nil, err
	}
	src := newSource(kind, cfg)
	if src == nil {
		return nil, &session.UnsupportedError{Desktop: string(kind), Supported: session.Supported}
	}
	logging.Verbosef("Using %s window source", src.Name())
	return src, nil
}
