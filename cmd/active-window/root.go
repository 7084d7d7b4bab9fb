package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Christopher-Hayes/active-window/internal/config"
	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/internal/output"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	printer *output.Printer
)

var rootCmd = &cobra.Command{
	Use:   "active-window",
	Short: "Print the window that currently has keyboard focus",
	Long: `Print the active window's extents, process id and application name as one
JSON line. Supports KDE Plasma (KWin), GNOME (FocusedWindow extension),
Hyprland, Sway and X11 window managers.

Examples:
  active-window
  active-window --format text
  active-window watch --interval 500ms
  active-window list --format yaml`,
	SilenceUsage: true,
	RunE:         runGet,
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentFlags().String("backend", "", "Window source: auto, kwin, gnome, hyprland, sway, x11")
	rootCmd.PersistentFlags().String("format", "", "Output format: json, yaml, text")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("config", "", "Path to config.toml")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Deadline for one window lookup (e.g., 2s)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	rootCmd.Flags().Bool("require-active", false, "Exit with an error when no window is active")
}

// setup loads config.toml and lets explicit flags override it.
func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Root().PersistentFlags()

	debug, _ := flags.GetBool("debug")
	verbose, _ := flags.GetBool("verbose")
	logging.Setup(debug, verbose)

	// Load .env file if it exists (won't override existing env vars)
	if _, err := os.Stat(".env"); err == nil {
		if err := config.LoadEnvFile(".env"); err != nil {
			logging.Warningf("Failed to load .env file: %v", err)
		} else {
			logging.Debugf("Loaded environment variables from .env")
		}
	}

	path, _ := flags.GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	if backend, _ := flags.GetString("backend"); backend != "" {
		loaded.Backend = backend
	}
	if format, _ := flags.GetString("format"); format != "" {
		loaded.Format = format
	}
	if timeout, _ := flags.GetDuration("timeout"); timeout > 0 {
		loaded.KWin.Timeout = config.Duration{Duration: timeout}
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format, err := output.ParseFormat(loaded.Format)
	if err != nil {
		return err
	}
	pretty, _ := flags.GetBool("pretty")

	cfg = loaded
	printer = output.NewPrinter(format, pretty)
	printer.W = cmd.OutOrStdout()

	logging.Debugf("Config: backend=%s format=%s timeout=%v", cfg.Backend, cfg.Format, cfg.KWin.Timeout)
	return nil
}

// lookupContext bounds one window lookup.
func lookupContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := cfg.KWin.Timeout.Duration
	if timeout <= 0 {
		timeout = config.DefaultKWinTimeout
	}
	// KWin applies the same deadline internally; leave room for script cleanup.
	return context.WithTimeout(parent, timeout+time.Second)
}
