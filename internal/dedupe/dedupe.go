// Package dedupe detects and resolves duplicate bibliography entries.
package dedupe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bibtidy/bibtidy/internal/bibliography"
	"github.com/bibtidy/bibtidy/internal/config"
	"github.com/bibtidy/bibtidy/internal/normalize"
)

// group is a set of entry indices sharing a merge key.
type group struct {
	key     string
	indices []int
}

// Resolve merges entries that share a normalized DOI and flags
// case-insensitive citation-key collisions. The returned slice preserves
// the first-seen order of surviving entries.
func Resolve(entries []*bibliography.Entry, cfg *config.Config) ([]*bibliography.Entry, []bibliography.Diagnostic) {
	var diags []bibliography.Diagnostic

	merged := make(map[int]*bibliography.Entry) // first index of group -> merge product
	absorbed := make(map[int]bool)              // indices merged away

	if cfg.MergeOnDOI {
		for _, g := range groupByDOI(entries) {
			if len(g.indices) < 2 {
				continue
			}
			product, conflicts := merge(entries, g.indices)
			if len(conflicts) > 0 {
				diags = append(diags, conflicts...)
				continue
			}
			merged[g.indices[0]] = product
			for _, i := range g.indices[1:] {
				absorbed[i] = true
			}
			diags = append(diags, bibliography.Infof(product.Key,
				"merged entries with DOI %s: %s", g.key, strings.Join(groupKeys(entries, g.indices), " ")))
		}
	}

	var out []*bibliography.Entry
	for i, entry := range entries {
		if absorbed[i] {
			continue
		}
		if m, ok := merged[i]; ok {
			out = append(out, m)
			continue
		}
		out = append(out, entry)
	}

	diags = append(diags, detectKeyCollisions(out)...)
	return out, diags
}

// groupByDOI partitions entry indices by normalized DOI, in first-seen order.
func groupByDOI(entries []*bibliography.Entry) []group {
	byDOI := make(map[string]int)
	var groups []group
	for i, entry := range entries {
		raw, ok := entry.Get("doi")
		if !ok || raw == "" {
			continue
		}
		doi, valid := normalize.NormalizeDOI(raw)
		if !valid {
			doi = strings.ToLower(strings.TrimSpace(raw))
		}
		if gi, seen := byDOI[doi]; seen {
			groups[gi].indices = append(groups[gi].indices, i)
		} else {
			byDOI[doi] = len(groups)
			groups = append(groups, group{key: doi, indices: []int{i}})
		}
	}
	return groups
}

// merge attempts a field-wise union of the group members. A field present
// in more than one member must have an identical value everywhere it
// appears; otherwise the merge is refused and one error diagnostic per
// conflicting field is returned.
func merge(entries []*bibliography.Entry, indices []int) (*bibliography.Entry, []bibliography.Diagnostic) {
	keys := groupKeys(entries, indices)

	var diags []bibliography.Diagnostic
	for i := 1; i < len(indices); i++ {
		if entries[indices[i]].Type != entries[indices[0]].Type {
			diags = append(diags, bibliography.Errorf(entries[indices[0]].Key,
				"cannot merge entries of different types (%s): @%s vs @%s",
				strings.Join(keys, " "), entries[indices[0]].TypeTag(), entries[indices[i]].TypeTag()))
			return nil, diags
		}
	}

	// Deterministic surviving key: lexicographically smallest.
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	product := bibliography.NewEntry(entries[indices[0]].Type, sorted[0])
	product.RawType = entries[indices[0]].RawType

	conflicted := make(map[string]bool)
	for _, i := range indices {
		entry := entries[i]
		for _, name := range entry.Fields() {
			value, _ := entry.Get(name)
			existing, present := product.Get(name)
			if !present {
				product.Set(name, value)
				continue
			}
			if existing != value && !conflicted[name] {
				conflicted[name] = true
				diags = append(diags, bibliography.Diagnostic{
					Severity: bibliography.SeverityError,
					Key:      product.Key,
					Field:    name,
					Message: fmt.Sprintf("merge conflict between %s: field %s differs (%q vs %q)",
						strings.Join(keys, " "), name, existing, value),
				})
			}
		}
	}
	if len(diags) > 0 {
		return nil, diags
	}
	return product, nil
}

// detectKeyCollisions flags surviving entries whose keys differ only by
// letter case. Case-only key divergence is never intentional, so every
// collision group is an error even when DOI merging is disabled.
func detectKeyCollisions(entries []*bibliography.Entry) []bibliography.Diagnostic {
	byFolded := make(map[string][]string)
	var order []string
	for _, entry := range entries {
		folded := strings.ToLower(entry.Key)
		if _, seen := byFolded[folded]; !seen {
			order = append(order, folded)
		}
		byFolded[folded] = append(byFolded[folded], entry.Key)
	}

	var diags []bibliography.Diagnostic
	for _, folded := range order {
		keys := byFolded[folded]
		if len(keys) < 2 {
			continue
		}
		if allEqual(keys) {
			diags = append(diags, bibliography.Errorf(keys[0], "duplicate entry key: %s", keys[0]))
		} else {
			diags = append(diags, bibliography.Errorf(keys[0],
				"entry keys differ only by case: %s", strings.Join(keys, " ")))
		}
	}
	return diags
}

func allEqual(keys []string) bool {
	for _, k := range keys[1:] {
		if k != keys[0] {
			return false
		}
	}
	return true
}

// groupKeys returns the citation keys of the group members in input order.
func groupKeys(entries []*bibliography.Entry, indices []int) []string {
	keys := make([]string, len(indices))
	for i, idx := range indices {
		keys[i] = entries[idx].Key
	}
	return keys
}
