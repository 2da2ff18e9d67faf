package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/bibtidy/bibtidy/internal/auxfile"
	"github.com/bibtidy/bibtidy/internal/bibliography"
	"github.com/bibtidy/bibtidy/internal/bibtex"
)

// ProcessAux runs the full check for one aux file: scan citations, load the
// referenced .bib databases, sanitize, and write the consolidated output
// next to the aux file. A nil result with a nil error means the aux file
// had no citations or no bibliography databases and was skipped.
func (p *Pipeline) ProcessAux(auxPath string) (*Result, error) {
	doc, err := auxfile.Parse(auxPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", auxPath, err)
	}
	if len(doc.Citations) == 0 || len(doc.BibFiles) == 0 {
		return nil, nil
	}

	var entries []*bibliography.Entry
	for _, bibPath := range doc.BibFiles {
		parsed, err := bibtex.ParseFile(bibPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}

	res := p.Run(entries, doc.Citations)

	outPath := filepath.Join(filepath.Dir(auxPath), p.cfg.BibtexOut)
	if err := p.WriteOutput(res, outPath); err != nil {
		return res, err
	}
	return res, nil
}
