// Package main provides the bibtidy CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibtidy",
	Short: "Sanitize BibTeX bibliographies before building a manuscript",
	Long: `bibtidy cleans the BibTeX databases referenced by a LaTeX document.

It reads the document's aux file to find the citations actually used,
applies the configured cleanup policies, merges duplicate entries, prunes
unused ones, and rewrites a single consolidated bibliography. It is meant
to run as a pre-build or pre-commit check: a non-zero exit status means
the bibliography changed or is broken.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
