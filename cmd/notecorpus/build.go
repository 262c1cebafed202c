package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/handiism/notecorpus/internal/config"
	"github.com/handiism/notecorpus/internal/corpus"
	"github.com/handiism/notecorpus/internal/pipeline"
	"github.com/handiism/notecorpus/internal/score/midi"
	"github.com/spf13/cobra"
)

var (
	buildPatterns   []string // Glob patterns, repeatable
	buildOutput     string   // Artifact path
	buildWorkers    int      // Worker pool size
	buildConfig     string   // Settings file
	buildPartIndex  int      // Instrument part index
	buildNoCompress bool     // Write the body uncompressed
	buildPlaylist   bool     // Write a playlist next to the artifact
	buildMetrics    string   // Prometheus textfile path
	buildVerbose    bool     // Print per-file progress
	buildDryRun     bool     // Enumerate only
)

// buildCmd enumerates, tokenizes and persists a corpus.
//
// # Examples
//
//	notecorpus build
//	notecorpus build --pattern 'data/**/*.mid' --pattern 'extra/*.midi'
//	notecorpus build --config notecorpus.yaml --workers 8 --playlist
//	notecorpus build --dry-run
//
// # Exit Codes
//
//	0   - Success, including runs where some files failed
//	1   - Enumeration, configuration or persistence failed
//	130 - Cancelled by SIGINT or SIGTERM, nothing was written
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Tokenize a MIDI corpus and save the artifact",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringArrayVarP(&buildPatterns, "pattern", "p", nil, "glob pattern of MIDI files, ** matches directories (repeatable)")
	f.StringVarP(&buildOutput, "output", "o", "", "artifact path (overrides config)")
	f.IntVarP(&buildWorkers, "workers", "w", 0, "number of parallel workers (default: number of CPUs)")
	f.StringVarP(&buildConfig, "config", "c", "", "path to a JSON or YAML settings file")
	f.IntVar(&buildPartIndex, "part-index", 1, "index of the instrument part to tokenize")
	f.BoolVar(&buildNoCompress, "no-compress", false, "write the artifact body without zstd compression")
	f.BoolVar(&buildPlaylist, "playlist", false, "create a playlist of tokenized files")
	f.StringVar(&buildMetrics, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.BoolVarP(&buildVerbose, "verbose", "v", false, "show verbose output")
	f.BoolVar(&buildDryRun, "dry-run", false, "list matched files without processing them")
}

// loadSettings builds the effective settings: defaults, then the config
// file and .env/environment overrides, then explicitly set flags.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	var (
		settings *config.Settings
		err      error
	)
	if buildConfig != "" {
		settings, err = config.Load(buildConfig)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		settings = config.DefaultSettings()
		if err := settings.ApplyEnv(); err != nil {
			return nil, err
		}
	}

	// Apply flags
	flags := cmd.Flags()
	if flags.Changed("pattern") {
		settings.Patterns = buildPatterns
	}
	if flags.Changed("output") {
		settings.Output = buildOutput
	}
	if flags.Changed("workers") {
		settings.Workers = buildWorkers
	}
	if flags.Changed("part-index") {
		settings.PartSelector = config.PartSelection{Mode: "index", Index: buildPartIndex}
	}
	if buildNoCompress {
		settings.Compress = false
	}
	if buildPlaylist {
		settings.CreatePlaylist = true
	}
	if flags.Changed("metrics-file") {
		settings.MetricsFile = buildMetrics
	}
	if buildVerbose && settings.LogLevel == "info" {
		settings.LogLevel = "debug"
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func runBuild(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(settings.LogLevel)

	// Handle interrupts
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nInterrupted, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Println("♫ Note Corpus")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	items, err := corpus.EnumeratePatterns(settings.Patterns)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d file(s)\n", len(items))

	if buildDryRun {
		for _, it := range items {
			fmt.Println("   " + it.Path)
		}
		fmt.Println("\n[Dry run - not processing]")
		return nil
	}

	manager := pipeline.NewManager(settings, midi.NewParser(), printProgress, pipeline.WithLogger(logger))

	fmt.Println()
	corpusResult, err := manager.Run(ctx, items)
	if err != nil {
		return err
	}

	hdr, err := manager.Persist(ctx, corpusResult)
	if err != nil {
		return err
	}

	s := manager.Summary()
	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Complete! Tokenized %d/%d files (%d tokens) in %s\n",
		s.Succeeded, s.Items, s.Tokens, s.Elapsed.Round(time.Millisecond))
	if s.Failed > 0 {
		fmt.Printf("   %d file(s) failed, see 'notecorpus inspect %s --failures'\n", s.Failed, settings.Output)
	}
	if s.Fallbacks > 0 {
		fmt.Printf("   %d file(s) had no instrument parts and used the whole score\n", s.Fallbacks)
	}
	fmt.Printf("   Run %s saved to %s\n", hdr.RunID, settings.Output)
	return nil
}

func printProgress(event pipeline.ProgressEvent) {
	if event.Level == pipeline.LevelVerbose && !buildVerbose {
		return
	}

	prefix := ""
	switch event.Level {
	case pipeline.LevelError:
		prefix = "❌ "
	case pipeline.LevelWarning:
		prefix = "⚠️  "
	case pipeline.LevelSuccess:
		prefix = "✅ "
	case pipeline.LevelInfo:
		prefix = "ℹ️  "
	default:
		prefix = "   "
	}

	fmt.Println(prefix + event.Message)
}
