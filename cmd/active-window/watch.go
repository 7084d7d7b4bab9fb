package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/Christopher-Hayes/active-window/internal/config"
	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/internal/output"
	"github.com/Christopher-Hayes/active-window/internal/tracker"
	"github.com/Christopher-Hayes/active-window/postgres"
	"github.com/Christopher-Hayes/active-window/webhook"
	"github.com/Christopher-Hayes/active-window/window"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const sessionsFile = "active-window-sessions.json"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the active window every time it changes",
	Long: `Poll the active window and print a line whenever it changes. Focus is
recorded as sessions per application; completed sessions are flushed to
PostgreSQL and/or a webhook when those are configured. On Ctrl+C the current
session is closed, flushed, and a per-application summary is printed.

Examples:
  active-window watch
  active-window watch --interval 250ms --format text
  active-window watch --flush-interval 5m --save`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("interval", 0, "Polling interval (e.g., 100ms, 1s; default from config, 1s)")
	watchCmd.Flags().Duration("flush-interval", 0, "Interval for flushing sessions to PostgreSQL/webhook (e.g., 15m)")
	watchCmd.Flags().Bool("save", false, "Save application summaries to "+sessionsFile)
}

// watcher polls one source and feeds a tracker.
type watcher struct {
	src     window.Source
	tracker *tracker.Tracker
	printer *output.Printer
	now     func() time.Time

	last   window.Summary
	lastOK bool
	polled bool
}

// poll performs one lookup. It prints and records the result when the active
// window differs from the previous lookup. Lookup errors skip the iteration.
func (w *watcher) poll(ctx context.Context) {
	lctx, cancel := lookupContext(ctx)
	defer cancel()

	summary, ok, err := window.Lookup(lctx, w.src)
	if err != nil {
		// Don't spam errors, just skip this iteration
		logging.Debugf("Error getting window: %v", err)
		return
	}

	w.tracker.Observe(summary, ok, w.now())

	if w.polled && !window.Changed(w.last, w.lastOK, summary, ok) {
		return
	}
	w.polled = true
	w.last, w.lastOK = summary, ok

	if ok {
		logging.Verbosef("Window changed to: %s (pid %d)", summary.Name, summary.PID)
	} else {
		logging.Verbosef("No active window")
	}
	if err := w.printer.PrintSummary(summary, ok); err != nil {
		logging.Errorf("Failed to print window: %v", err)
	}
}

// sinks are the configured session stores. Either may be nil.
type sinks struct {
	postgres *postgres.Client
	webhook  *webhook.Client
}

func openSinks(c *config.Config) sinks {
	var s sinks
	if c.Postgres.ConnectionString != "" {
		client, err := postgres.NewClient(c.Postgres.ConnectionString)
		if err != nil {
			logging.Errorf("PostgreSQL disabled: %v", err)
		} else {
			s.postgres = client
			logging.Infof("PostgreSQL storage enabled")
		}
	}
	if c.Webhook.URL != "" {
		client, err := webhook.NewClient(c.Webhook.URL)
		if err != nil {
			logging.Errorf("Webhook disabled: %v", err)
		} else {
			for key, value := range c.Webhook.Headers {
				client.SetHeader(key, value)
			}
			s.webhook = client
			logging.Infof("Webhook submission enabled")
		}
	}
	return s
}

func (s sinks) enabled() bool {
	return s.postgres != nil || s.webhook != nil
}

// flush hands completed sessions to every sink and forgets them.
func (s sinks) flush(tr *tracker.Tracker) {
	sessions := tr.Drain()
	var current *tracker.Session
	if cur, ok := tr.Current(); ok {
		current = &cur
	}

	if s.postgres != nil {
		s.postgres.SubmitSessions(sessions)
	}
	if s.webhook != nil {
		if err := s.webhook.SubmitSessions(sessions, current); err != nil {
			logging.Errorf("Failed to send sessions to webhook: %v", err)
		}
	}
}

// finish closes the ongoing session and flushes it to the sinks. The summaries
// are taken before the flush drains the tracker.
func finish(tr *tracker.Tracker, out sinks, now time.Time) map[string]tracker.Summary {
	tr.EndCurrent(now)
	summaries := tr.Summaries(now)
	if out.enabled() {
		logging.Infof("Flushing final sessions before shutdown...")
		out.flush(tr)
	}
	return summaries
}

func (s sinks) Close() {
	if s.postgres != nil {
		s.postgres.Close()
	}
	if s.webhook != nil {
		s.webhook.Close()
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval := cfg.Watch.Interval.Duration
	if d, _ := cmd.Flags().GetDuration("interval"); d > 0 {
		interval = d
	}
	flushInterval := cfg.Watch.FlushInterval.Duration
	if d, _ := cmd.Flags().GetDuration("flush-interval"); d > 0 {
		flushInterval = d
	}
	saveToFile, _ := cmd.Flags().GetBool("save")

	if interval < config.MinPollInterval {
		return fmt.Errorf("poll interval too short (minimum %v), got %v", config.MinPollInterval, interval)
	}
	if flushInterval < config.MinFlushInterval {
		return fmt.Errorf("flush interval must be at least %v, got %v", config.MinFlushInterval, flushInterval)
	}

	src, err := openSource()
	if err != nil {
		return err
	}

	tr := tracker.New(cfg.Watch.MergeThreshold.Duration, cfg.Watch.MinDuration.Duration)
	if path, err := cfg.IgnoreFilePath(); err == nil {
		ignored, err := tracker.LoadIgnoreFile(path)
		if err != nil {
			logging.Warningf("Failed to load ignore list: %v", err)
		} else {
			tr.SetIgnored(ignored)
			logging.Verbosef("Loaded %d ignored applications from %s", len(ignored), path)
		}
	}

	out := openSinks(cfg)
	defer out.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := &watcher{src: src, tracker: tr, printer: printer, now: time.Now}
	w.poll(ctx)

	pollTicker := time.NewTicker(interval)
	defer pollTicker.Stop()

	var flushChan <-chan time.Time
	if out.enabled() {
		flushTicker := time.NewTicker(flushInterval)
		defer flushTicker.Stop()
		flushChan = flushTicker.C
		logging.Infof("Flushing sessions every %v", flushInterval)
	}

	for {
		select {
		case <-ctx.Done():
			color.New(color.FgYellow).Fprintln(os.Stderr, "\nShutting down window monitor...")
			summaries := finish(tr, out, time.Now())
			if saveToFile {
				if err := saveSummariesToFile(sessionsFile, summaries); err != nil {
					logging.Errorf("Failed to save sessions to file: %v", err)
				} else {
					logging.Infof("Saved sessions to %s", sessionsFile)
				}
			}

			printActivitySummary(os.Stderr, summaries)
			return nil

		case <-flushChan:
			if saveToFile {
				if err := saveSummariesToFile(sessionsFile, tr.Summaries(time.Now())); err != nil {
					logging.Errorf("Failed to save sessions to file: %v", err)
				}
			}
			out.flush(tr)

		case <-pollTicker.C:
			w.poll(ctx)
		}
	}
}

// savedSummary is one application in active-window-sessions.json.
type savedSummary struct {
	Name          string    `json:"name"`
	TotalDuration string    `json:"total_duration"`
	SessionCount  int       `json:"session_count"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
}

// saveSummariesToFile writes the summaries, longest first, as indented JSON.
func saveSummariesToFile(path string, summaries map[string]tracker.Summary) error {
	saved := make([]savedSummary, 0, len(summaries))
	for _, s := range sortedSummaries(summaries) {
		saved = append(saved, savedSummary{
			Name:          s.Name,
			TotalDuration: s.TotalDuration.Round(time.Second).String(),
			SessionCount:  s.SessionCount,
			FirstSeen:     s.FirstSeen,
			LastSeen:      s.LastSeen,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	defer f.Close()

	data := struct {
		Timestamp time.Time      `json:"timestamp"`
		Summaries []savedSummary `json:"summaries"`
	}{
		Timestamp: time.Now(),
		Summaries: saved,
	}
	return output.PrintPrettyJSON(f, data)
}

// sortedSummaries orders summaries by total duration, then name.
func sortedSummaries(summaries map[string]tracker.Summary) []tracker.Summary {
	list := make([]tracker.Summary, 0, len(summaries))
	for _, s := range summaries {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].TotalDuration != list[j].TotalDuration {
			return list[i].TotalDuration > list[j].TotalDuration
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// printActivitySummary prints time per application.
func printActivitySummary(w io.Writer, summaries map[string]tracker.Summary) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, "\n=== Activity Summary ===")

	if len(summaries) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No activities tracked.")
		return
	}

	totalTime := time.Duration(0)
	for _, summary := range summaries {
		totalTime += summary.TotalDuration
	}

	color.New(color.FgWhite, color.Bold).Fprintf(w, "Total tracking time: %v\n\n", totalTime.Round(time.Second))

	for _, summary := range sortedSummaries(summaries) {
		percentage := 0.0
		if totalTime > 0 {
			percentage = float64(summary.TotalDuration) / float64(totalTime) * 100
		}
		color.New(color.FgGreen, color.Bold).Fprintf(w, "%s: ", summary.Name)
		fmt.Fprintf(w, "%v ", summary.TotalDuration.Round(time.Second))
		color.New(color.FgCyan).Fprintf(w, "(%.1f%%) ", percentage)
		color.New(color.FgWhite).Fprintf(w, "- %d sessions\n", summary.SessionCount)
	}
}
