package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(abbrevCmd)
}

var abbrevCmd = &cobra.Command{
	Use:   "abbrev <journal>...",
	Short: "Look up journal abbreviations",
	Long: `Look up the ISO abbreviation for one or more journal names.

Results are cached locally, so repeated checks of the same bibliography do
not hit the network. Set BIBTIDY_ABBREV_URL to use a different service and
BIBTIDY_CACHE_DIR to relocate the cache.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAbbrev,
}

// AbbrevResponse is the JSON output of the abbrev command.
type AbbrevResponse struct {
	Journal string `json:"journal"`
	Abbrev  string `json:"abbrev"`
}

func runAbbrev(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	svc := newAbbrevService()
	for _, name := range args {
		abbrev, err := svc.Abbreviate(name)
		if err != nil {
			exitWithError(ExitError, "looking up %q: %v", name, err)
		}
		if humanOutput {
			fmt.Printf("%s: %s\n", name, abbrev)
		} else {
			outputJSON(AbbrevResponse{Journal: name, Abbrev: abbrev})
		}
	}
	return nil
}
