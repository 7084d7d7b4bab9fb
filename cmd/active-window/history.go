package main

import (
	"fmt"
	"time"

	"github.com/Christopher-Hayes/active-window/internal/output"
	"github.com/Christopher-Hayes/active-window/postgres"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent focus sessions stored in PostgreSQL",
	Long:  "Show the most recent focus sessions recorded by `active-window watch`, newest first. Requires a PostgreSQL connection string.",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "Number of sessions to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}

	client, err := postgres.NewClient(cfg.Postgres.ConnectionString)
	if err != nil {
		return err
	}
	defer client.Close()

	sessions, err := client.GetRecentSessions(limit)
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []postgres.StoredSession{}
	}

	if printer.Format != output.FormatText {
		return printer.Print(sessions)
	}
	for _, s := range sessions {
		fmt.Fprintf(printer.W, "%s  %s %s\n",
			color.HiBlackString(s.Start.Local().Format("2006-01-02 15:04:05")),
			color.New(color.FgGreen, color.Bold).Sprint(s.Name),
			s.Duration.Round(time.Second))
	}
	return nil
}
