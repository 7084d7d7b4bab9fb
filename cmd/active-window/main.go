// Command active-window prints the window that currently has keyboard focus
// as a single JSON line, and can watch focus changes over time.
package main

import (
	"os"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
