package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bibtidy/bibtidy/internal/abbrev"
	"github.com/bibtidy/bibtidy/internal/config"
	"github.com/bibtidy/bibtidy/internal/normalize"
	"github.com/bibtidy/bibtidy/internal/pipeline"
)

var checkConfigPath string

func init() {
	checkCmd.Flags().StringVarP(&checkConfigPath, "config", "c", "", "Policy configuration file (YAML)")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [aux...]",
	Short: "Sanitize the bibliographies referenced by LaTeX aux files",
	Long: `Sanitize the bibliographies referenced by LaTeX aux files.

With no arguments, every *.aux file with a matching *.tex file under the
current directory is processed.

Exit status: 0 when nothing changed, 1 when a bibliography was rewritten,
2 when the bibliography is broken and needs manual fixes.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg := config.Default()
	if checkConfigPath != "" {
		loaded, err := config.Load(checkConfigPath)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		cfg = loaded
	}

	auxFiles := args
	if len(auxFiles) == 0 {
		found, err := findAuxFiles(".")
		if err != nil {
			exitWithError(ExitError, "scanning for aux files: %v", err)
		}
		auxFiles = found
	}
	for _, path := range auxFiles {
		if !strings.HasSuffix(path, ".aux") {
			exitWithError(ExitError, "not an aux file: %s", path)
		}
	}

	var journals normalize.JournalService
	if cfg.AbbreviateJournals {
		journals = newAbbrevService()
	}
	p := pipeline.New(cfg, journals)

	exit := ExitUnchanged
	for _, auxPath := range auxFiles {
		res, err := p.ProcessAux(auxPath)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if res == nil {
			if humanOutput {
				fmt.Printf("%s: no citations, skipped\n", auxPath)
			}
			continue
		}

		if humanOutput {
			fmt.Printf("%s: %s (%d entries)\n", auxPath, res.Outcome, len(res.Entries))
			printDiagnosticsHuman(res.Report.Diagnostics)
		} else {
			outputJSON(CheckResponse{
				Aux:         auxPath,
				Outcome:     res.Outcome.String(),
				Entries:     len(res.Entries),
				Diagnostics: res.Report.Diagnostics,
			})
		}

		if code := outcomeExitCode(res.Outcome); code > exit {
			exit = code
		}
	}

	os.Exit(exit)
	return nil
}

func outcomeExitCode(o pipeline.Outcome) int {
	switch o {
	case pipeline.Changed:
		return ExitChanged
	case pipeline.Broken:
		return ExitBroken
	}
	return ExitUnchanged
}

// findAuxFiles returns aux files under root that have a sibling tex file,
// so stale build artifacts without a source are not processed.
func findAuxFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".aux") {
			return nil
		}
		tex := strings.TrimSuffix(path, ".aux") + ".tex"
		if info, err := os.Stat(tex); err == nil && !info.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// newAbbrevService builds the journal lookup with its local cache. A cache
// setup failure degrades to uncached lookups.
func newAbbrevService() *abbrev.Service {
	var cache *abbrev.Cache
	if dir := cacheDir(); dir != "" {
		if err := os.MkdirAll(dir, 0755); err == nil {
			if c, err := abbrev.OpenCache(filepath.Join(dir, "abbrev.db")); err == nil {
				cache = c
			}
		}
	}
	return abbrev.NewService(abbrev.NewClient(), cache)
}

func cacheDir() string {
	if dir := os.Getenv("BIBTIDY_CACHE_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "bibtidy")
}
