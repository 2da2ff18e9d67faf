package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibtidy/bibtidy/internal/pdf"
)

func init() {
	rootCmd.AddCommand(doiCmd)
}

var doiCmd = &cobra.Command{
	Use:   "doi <pdf>",
	Short: "Extract the DOI from a PDF",
	Long: `Extract the DOI from the first pages of a PDF.

Useful for filling in entries the sanitizer flags as DOI-less.`,
	Args: cobra.ExactArgs(1),
	RunE: runDOI,
}

// DOIResponse is the JSON output of the doi command.
type DOIResponse struct {
	Path string `json:"path"`
	DOI  string `json:"doi,omitempty"`
}

func runDOI(cmd *cobra.Command, args []string) error {
	doi, err := pdf.ExtractDOI(args[0])
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", args[0], err)
	}
	if doi == "" {
		exitWithError(ExitError, "no DOI found in %s", args[0])
	}

	if humanOutput {
		fmt.Println(doi)
	} else {
		outputJSON(DOIResponse{Path: args[0], DOI: doi})
	}
	return nil
}
