package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/internal/output"
	"github.com/Christopher-Hayes/active-window/internal/tracker"
	"github.com/Christopher-Hayes/active-window/window"
	"github.com/spf13/cobra"
)

const pickPollInterval = 200 * time.Millisecond

var ignoreCmd = &cobra.Command{
	Use:   "ignore",
	Short: "Manage applications excluded from session tracking",
	Long: `Manage the ignore list used by "active-window watch". Ignored applications
are still printed but never recorded as focus sessions.`,
}

var ignoreAddCmd = &cobra.Command{
	Use:   "add NAME...",
	Short: "Add applications to the ignore list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateIgnoreList(cmd.OutOrStdout(), args, true)
	},
}

var ignoreRemoveCmd = &cobra.Command{
	Use:   "remove NAME...",
	Short: "Remove applications from the ignore list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateIgnoreList(cmd.OutOrStdout(), args, false)
	},
}

var ignoreListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the ignore list",
	RunE:  runIgnoreList,
}

var ignorePickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Watch the active window for a while and pick an application to ignore",
	Long: `Monitor the active window for --duration. Switch between the applications
you want to review, then choose one from the list to add to the ignore list.`,
	RunE: runIgnorePick,
}

func init() {
	rootCmd.AddCommand(ignoreCmd)
	ignoreCmd.AddCommand(ignoreAddCmd, ignoreRemoveCmd, ignoreListCmd, ignorePickCmd)
	ignorePickCmd.Flags().Duration("duration", 10*time.Second, "How long to monitor windows")
}

func loadIgnoreList() (string, map[string]bool, error) {
	path, err := cfg.IgnoreFilePath()
	if err != nil {
		return "", nil, err
	}
	ignored, err := tracker.LoadIgnoreFile(path)
	if err != nil {
		return "", nil, err
	}
	return path, ignored, nil
}

func updateIgnoreList(w io.Writer, names []string, ignore bool) error {
	path, ignored, err := loadIgnoreList()
	if err != nil {
		return err
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if ignore {
			ignored[name] = true
			fmt.Fprintf(w, "✓ Ignoring '%s'\n", name)
		} else {
			if !ignored[name] {
				logging.Warningf("'%s' is not in the ignore list", name)
			}
			delete(ignored, name)
			fmt.Fprintf(w, "✓ No longer ignoring '%s'\n", name)
		}
	}

	if err := tracker.SaveIgnoreFile(path, ignored); err != nil {
		return fmt.Errorf("error saving ignore list: %w", err)
	}
	logging.Verbosef("Saved ignore list to %s", path)
	return nil
}

func runIgnoreList(cmd *cobra.Command, args []string) error {
	_, ignored, err := loadIgnoreList()
	if err != nil {
		return err
	}
	names := tracker.SortedNames(ignored)
	if printer.Format == output.FormatText {
		for _, name := range names {
			fmt.Fprintln(printer.W, name)
		}
		return nil
	}
	return printer.Print(names)
}

// seenApplication is one application observed while picking.
type seenApplication struct {
	Name     string
	PID      int
	LastSeen time.Time
}

// collectApplications polls src until ctx is done and returns every
// application that was active, most recently seen first.
func collectApplications(ctx context.Context, src window.Source, interval time.Duration, found func(name string)) []seenApplication {
	seen := make(map[string]*seenApplication)

	observe := func() {
		lctx, cancel := lookupContext(ctx)
		defer cancel()
		summary, ok, err := window.Lookup(lctx, src)
		if err != nil || !ok || summary.Name == "" {
			return
		}
		if _, exists := seen[summary.Name]; !exists && found != nil {
			found(summary.Name)
		}
		seen[summary.Name] = &seenApplication{Name: summary.Name, PID: summary.PID, LastSeen: time.Now()}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	observe()
	for {
		select {
		case <-ctx.Done():
			apps := make([]seenApplication, 0, len(seen))
			for _, app := range seen {
				apps = append(apps, *app)
			}
			sort.Slice(apps, func(i, j int) bool {
				return apps[i].LastSeen.After(apps[j].LastSeen)
			})
			return apps
		case <-ticker.C:
			observe()
		}
	}
}

// parseChoice reads a 1-based menu choice. 0 cancels.
func parseChoice(input string, n int) (int, error) {
	choice, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || choice < 0 || choice > n {
		return 0, fmt.Errorf("invalid choice %q", strings.TrimSpace(input))
	}
	return choice, nil
}

func runIgnorePick(cmd *cobra.Command, args []string) error {
	duration, _ := cmd.Flags().GetDuration("duration")
	if duration <= 0 {
		return fmt.Errorf("--duration must be positive, got %v", duration)
	}

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	src, err := openSource()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "This will monitor your active windows for the next %v.\n", duration)
	fmt.Fprintln(out, "Switch between applications you want to review.")
	fmt.Fprint(out, "\nPress Enter to start monitoring...")
	in.ReadString('\n')

	fmt.Fprintf(out, "\nMonitoring for %v...\n", duration)
	ctx, cancel := context.WithTimeout(cmd.Context(), duration)
	defer cancel()
	apps := collectApplications(ctx, src, pickPollInterval, func(name string) {
		fmt.Fprintf(out, "  Found: %s\n", name)
	})

	fmt.Fprintf(out, "\nFound %d unique applications.\n\n", len(apps))
	if len(apps) == 0 {
		fmt.Fprintln(out, "No applications detected. Make sure you switched between some windows.")
		return nil
	}

	path, ignored, err := loadIgnoreList()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Applications detected:")
	for i, app := range apps {
		status := ""
		if ignored[app.Name] {
			status = " [ALREADY IGNORED]"
		}
		fmt.Fprintf(out, "  %d) %s (pid %d)%s\n", i+1, app.Name, app.PID, status)
	}

	fmt.Fprintln(out, "\nEnter the number of the application to ignore (or 0 to cancel):")
	fmt.Fprint(out, "> ")
	input, _ := in.ReadString('\n')

	choice, err := parseChoice(input, len(apps))
	if err != nil {
		return err
	}
	if choice == 0 {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	selected := apps[choice-1]
	if ignored[selected.Name] {
		fmt.Fprintf(out, "\n'%s' is already in the ignore list.\n", selected.Name)
		return nil
	}
	ignored[selected.Name] = true

	if err := tracker.SaveIgnoreFile(path, ignored); err != nil {
		return fmt.Errorf("error saving ignore list: %w", err)
	}

	fmt.Fprintf(out, "\n✓ Added '%s' to ignore list (%s)\n", selected.Name, path)
	fmt.Fprintln(out, "Restart active-window watch if it's currently running to apply changes.")
	return nil
}
