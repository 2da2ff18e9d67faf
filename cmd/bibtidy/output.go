package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bibtidy/bibtidy/internal/bibliography"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CheckResponse reports the result for one aux file.
type CheckResponse struct {
	Aux         string                    `json:"aux"`
	Outcome     string                    `json:"outcome"`
	Entries     int                       `json:"entries"`
	Diagnostics []bibliography.Diagnostic `json:"diagnostics,omitempty"`
}

// printDiagnosticsHuman prints the diagnostics of one run.
func printDiagnosticsHuman(diags []bibliography.Diagnostic) {
	for _, d := range diags {
		fmt.Printf("  %s\n", d)
	}
}
