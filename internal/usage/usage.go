// Package usage prunes entries not cited by the document and reports
// citations with no matching entry.
package usage

import (
	"sort"

	"github.com/bibtidy/bibtidy/internal/bibliography"
)

// Filter intersects entries against the set of citation keys actually used.
// Unused entries are dropped with an info diagnostic; used keys with no
// entry are errors. Matching is exact (case-sensitive); case-insensitive
// near-matches were already flagged by the duplicate resolver.
func Filter(entries []*bibliography.Entry, used map[string]bool) ([]*bibliography.Entry, []bibliography.Diagnostic) {
	var kept []*bibliography.Entry
	var diags []bibliography.Diagnostic

	available := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Type == bibliography.Preamble {
			// Preamble keys are synthetic and never cited.
			kept = append(kept, entry)
			continue
		}
		available[entry.Key] = true
		if !used[entry.Key] {
			diags = append(diags, bibliography.Infof(entry.Key, "dropping unused entry"))
			continue
		}
		kept = append(kept, entry)
	}

	missing := make([]string, 0)
	for key := range used {
		if !available[key] {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	for _, key := range missing {
		diags = append(diags, bibliography.Errorf(key, "missing entry for citation"))
	}

	return kept, diags
}
