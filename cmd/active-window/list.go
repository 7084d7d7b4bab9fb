package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every window the compositor reports",
	Long:  "List all windows in the compositor's order with class, title, PID, geometry and whether each one is active.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	src, err := openSource()
	if err != nil {
		return err
	}

	ctx, cancel := lookupContext(cmd.Context())
	defer cancel()

	descs, err := src.ListWindows(ctx)
	if err != nil {
		return err
	}
	return printer.PrintDescriptors(descs)
}
