package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/handiism/notecorpus/internal/artifact"
	"github.com/handiism/notecorpus/internal/corpus"
	"github.com/handiism/notecorpus/internal/model"
	"github.com/spf13/cobra"
)

var (
	inspectPath     string // Entry to print tokens for
	inspectLimit    int    // Max tokens to print
	inspectFailures bool   // List failures
	inspectSpell    bool   // Spell chord tokens with pitch names
)

// inspectCmd prints the header and contents of an artifact.
//
// # Examples
//
//	notecorpus inspect data/notes.ntcp
//	notecorpus inspect data/notes.ntcp --path data/bach/bwv772.mid --limit 50
//	notecorpus inspect data/notes.ntcp --path data/bach/bwv772.mid --spell
//	notecorpus inspect data/notes.ntcp --failures
var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact>",
	Short: "Show the contents of a corpus artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := artifact.Read(args[0])
		if err != nil {
			return err
		}
		return printArtifact(cmd.OutOrStdout(), a)
	},
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectPath, "path", "", "print the tokens of this corpus path")
	f.IntVar(&inspectLimit, "limit", 20, "maximum number of tokens to print, 0 for all")
	f.BoolVar(&inspectFailures, "failures", false, "list the files that failed")
	f.BoolVar(&inspectSpell, "spell", false, "print chord tokens as pitch names, e.g. C-E-G for 0.4.7")
}

func printArtifact(w io.Writer, a *artifact.Artifact) error {
	c := a.Corpus
	fmt.Fprintf(w, "Version:    %d\n", a.Header.Version)
	fmt.Fprintf(w, "Run:        %s\n", a.Header.RunID)
	fmt.Fprintf(w, "Created:    %s\n", a.Header.Created.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Compressed: %t\n", a.Header.Compressed)
	fmt.Fprintf(w, "Entries:    %d\n", len(c.Mapping))
	fmt.Fprintf(w, "Failures:   %d\n", len(c.Failures))
	fmt.Fprintf(w, "Tokens:     %d\n", c.TokenCount())

	if inspectPath != "" {
		path := corpus.Normalize(inspectPath)
		tokens, ok := c.Mapping[path]
		if !ok {
			return fmt.Errorf("%s is not in the artifact", path)
		}
		chords := 0
		for _, tok := range tokens {
			if model.IsChordToken(tok) {
				chords++
			}
		}
		shown := tokens
		if inspectLimit > 0 && len(shown) > inspectLimit {
			shown = shown[:inspectLimit]
		}
		if inspectSpell {
			spelled := make([]string, len(shown))
			for i, tok := range shown {
				spelled[i] = model.SpellToken(tok)
			}
			shown = spelled
		}
		fmt.Fprintf(w, "\n%s (%d tokens, %d chords)\n", path, len(tokens), chords)
		fmt.Fprintln(w, "  "+strings.Join(shown, " "))
		if len(shown) < len(tokens) {
			fmt.Fprintf(w, "  ... %d more\n", len(tokens)-len(shown))
		}
	}

	if inspectFailures && len(c.Failures) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, f := range c.Failures {
			fmt.Fprintf(w, "  %s: %s\n", f.Path, f.Reason)
		}
	}
	return nil
}
