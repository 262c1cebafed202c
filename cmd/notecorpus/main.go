// Command notecorpus turns a corpus of MIDI files into note and chord
// token sequences and saves them as one artifact.
//
// Usage:
//
//	notecorpus build --pattern 'data/**/*.mid' --output data/notes.ntcp
//	notecorpus inspect data/notes.ntcp --path data/bach/bwv772.mid
//
// For interactive mode, use notecorpus-tui.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitOK        = 0
	exitFailure   = 1
	exitCancelled = 130
)

var rootCmd = &cobra.Command{
	Use:   "notecorpus",
	Short: "Build note and chord token corpora from MIDI files",
	Long: `notecorpus reads every MIDI file matched by one or more glob patterns,
extracts the note and chord tokens of one instrument part of each file in
parallel, and saves the path-to-tokens mapping as a single artifact.

Files that cannot be parsed are recorded as failures and never stop the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Build cancelled.")
		return exitCancelled
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}
}

// newLogger creates the structured logger for a log level name.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
