// Package auxfile extracts citation keys and bibliography file references
// from LaTeX aux files.
package auxfile

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Document holds what the sanitizer needs from one aux file: the set of
// citation keys actually used, and the .bib databases the document pulls
// entries from. Paths are resolved relative to the aux file's directory.
type Document struct {
	Citations map[string]bool
	BibFiles  []string
}

// Parse scans an aux file for \citation and \bibdata lines.
func Parse(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc := &Document{Citations: make(map[string]bool)}
	root := filepath.Dir(path)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		for _, key := range parseCommand(line, `\citation{`) {
			doc.Citations[key] = true
		}
		for _, name := range parseCommand(line, `\bibdata{`) {
			if !strings.HasSuffix(name, ".bib") {
				name += ".bib"
			}
			doc.BibFiles = append(doc.BibFiles, filepath.Join(root, name))
		}
	}
	return doc, scanner.Err()
}

// parseCommand extracts the comma-separated arguments of a single-brace
// LaTeX command occurrence at the start of a line.
func parseCommand(line, prefix string) []string {
	if !strings.HasPrefix(line, prefix) {
		return nil
	}
	rest := line[len(prefix):]
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return nil
	}
	var out []string
	for _, arg := range strings.Split(rest[:end], ",") {
		if arg = strings.TrimSpace(arg); arg != "" {
			out = append(out, arg)
		}
	}
	return out
}
