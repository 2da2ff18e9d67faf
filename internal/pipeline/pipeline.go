// Package pipeline sequences the sanitization passes over a parsed
// bibliography and decides the overall outcome.
package pipeline

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bibtidy/bibtidy/internal/bibliography"
	"github.com/bibtidy/bibtidy/internal/bibtex"
	"github.com/bibtidy/bibtidy/internal/config"
	"github.com/bibtidy/bibtidy/internal/dedupe"
	"github.com/bibtidy/bibtidy/internal/normalize"
	"github.com/bibtidy/bibtidy/internal/policy"
	"github.com/bibtidy/bibtidy/internal/usage"
)

// Outcome is the overall result of a run, mapped by the CLI to an exit code.
type Outcome int

const (
	// Unchanged: the bibliography already matches the sanitized output.
	Unchanged Outcome = iota
	// Changed: the sanitized output differs and was written.
	Changed
	// Broken: error diagnostics were raised; the output was not written.
	Broken
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Broken:
		return "broken"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result carries everything a run produced.
type Result struct {
	Outcome Outcome
	Report  bibliography.Report
	Entries []*bibliography.Entry
	Output  string // Rendered bibliography text
}

// Pipeline runs the sanitization passes. It is single-threaded; entries are
// handed from pass to pass and the configuration is shared read-only.
type Pipeline struct {
	cfg    *config.Config
	engine *policy.Engine
}

// New creates a Pipeline. The journal service may be nil when journal
// abbreviation is disabled.
func New(cfg *config.Config, journals normalize.JournalService) *Pipeline {
	norm := normalize.New(cfg, journals)
	return &Pipeline{cfg: cfg, engine: policy.New(cfg, norm)}
}

// Run executes policy, duplicate-resolution, usage, and sort passes over
// the parsed entries. Every pass runs to completion; the outcome is decided
// only after all diagnostics are in.
func (p *Pipeline) Run(entries []*bibliography.Entry, used map[string]bool) *Result {
	res := &Result{}

	var surviving []*bibliography.Entry
	for _, entry := range entries {
		kept, diags := p.engine.Apply(entry)
		res.Report.Add(diags...)
		if kept {
			surviving = append(surviving, entry)
		}
	}

	surviving, diags := dedupe.Resolve(surviving, p.cfg)
	res.Report.Add(diags...)

	surviving, diags = usage.Filter(surviving, used)
	res.Report.Add(diags...)

	if p.cfg.Sort {
		bibtex.Sort(surviving)
	}

	res.Entries = surviving
	res.Output = bibtex.Render(surviving)

	if res.Report.Failed() {
		res.Outcome = Broken
	} else {
		res.Outcome = Changed // WriteOutput downgrades to Unchanged
	}
	return res
}

// WriteOutput writes the rendered bibliography to path, replacing all prior
// sources in one step. When the existing file already matches, nothing is
// written and the outcome becomes Unchanged. Broken results are never
// written.
func (p *Pipeline) WriteOutput(res *Result, path string) error {
	if res.Outcome == Broken {
		return nil
	}

	if existing, err := os.ReadFile(path); err == nil {
		if sha256.Sum256(existing) == sha256.Sum256([]byte(res.Output)) {
			res.Outcome = Unchanged
			return nil
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".bibtidy-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if _, err := tmp.WriteString(res.Output); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}

	res.Outcome = Changed
	return nil
}
