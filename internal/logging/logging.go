// Package logging holds the coloured, leveled log helpers shared by every
// command. Everything goes through the standard log package, so it lands on
// stderr and never mixes with command output on stdout.
package logging

import (
	"io"
	"log"

	"github.com/fatih/color"
)

var (
	debugMode   bool
	verboseMode bool

	// Color functions for different log levels
	colorDebug   = color.New(color.FgCyan).SprintfFunc()
	colorVerbose = color.New(color.FgBlue).SprintfFunc()
	colorInfo    = color.New(color.FgGreen).SprintfFunc()
	colorError   = color.New(color.FgRed, color.Bold).SprintfFunc()
	colorWarning = color.New(color.FgYellow).SprintfFunc()
	colorSuccess = color.New(color.FgGreen, color.Bold).SprintfFunc()
)

// Setup configures the log package and the enabled levels.
func Setup(debug, verbose bool) {
	debugMode = debug
	verboseMode = verbose

	log.SetFlags(log.Ldate | log.Ltime)
	if debugMode {
		log.SetPrefix("[active-window] ")
		Debugf("Debug mode enabled")
	}
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// DebugEnabled reports whether debug logging is on.
func DebugEnabled() bool {
	return debugMode
}

// Debugf prints debug messages if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if debugMode {
		log.Print(colorDebug("[DEBUG] "+format, args...))
	}
}

// Verbosef prints verbose messages if verbose or debug mode is enabled
func Verbosef(format string, args ...interface{}) {
	if verboseMode || debugMode {
		log.Print(colorVerbose("[VERBOSE] "+format, args...))
	}
}

// Infof prints info messages (always shown)
func Infof(format string, args ...interface{}) {
	log.Print(colorInfo("[INFO] "+format, args...))
}

// Errorf prints error messages (always shown)
func Errorf(format string, args ...interface{}) {
	log.Print(colorError("[ERROR] "+format, args...))
}

// Warningf prints warning messages (always shown)
func Warningf(format string, args ...interface{}) {
	log.Print(colorWarning("[WARNING] "+format, args...))
}

// Successf prints success messages (always shown)
func Successf(format string, args ...interface{}) {
	log.Print(colorSuccess("[SUCCESS] "+format, args...))
}
