package main

import (
	"github.com/Christopher-Hayes/active-window/window"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the active window once",
	Long: `Print the active window as {"extents":[x,y,width,height],"pid":...,"name":"..."}.

When no window is active, prints null (json, yaml) or "no active window"
(text) and exits 0. With --require-active nothing is printed and the exit
status is 1.`,
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().Bool("require-active", false, "Exit with an error when no window is active")
}

func runGet(cmd *cobra.Command, args []string) error {
	requireActive, _ := cmd.Flags().GetBool("require-active")

	src, err := openSource()
	if err != nil {
		return err
	}

	ctx, cancel := lookupContext(cmd.Context())
	defer cancel()

	summary, ok, err := window.Lookup(ctx, src)
	if err != nil {
		return err
	}

	if !ok && requireActive {
		return window.ErrNoActiveWindow
	}
	return printer.PrintSummary(summary, ok)
}
