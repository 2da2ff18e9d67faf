package bibtex

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/bibtidy/bibtidy/internal/bibliography"
)

// stripAccents folds accented characters for locale-independent comparison
// (e.g. Élodie sorts with Elodie).
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sortKey is the precomputed ordering key for one entry.
type sortKey struct {
	preamble bool
	hasYear  bool
	year     int
	author   string
	key      string
}

// Sort orders entries by publication year, then by the ASCII-folded family
// name of the first author (editor when there is no author field), then by
// citation key. Preambles stay at the top; entries without a numeric year
// sort last, keeping their original relative order. The result is
// deterministic for any permutation of the same entry set.
func Sort(entries []*bibliography.Entry) {
	type keyed struct {
		k     sortKey
		entry *bibliography.Entry
	}
	rows := make([]keyed, len(entries))
	for i, entry := range entries {
		rows[i] = keyed{k: makeSortKey(entry), entry: entry}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].k, rows[j].k
		if a.preamble != b.preamble {
			return a.preamble
		}
		if a.hasYear != b.hasYear {
			return a.hasYear
		}
		if a.hasYear && a.year != b.year {
			return a.year < b.year
		}
		if a.author != b.author {
			return a.author < b.author
		}
		return a.key < b.key
	})
	for i, row := range rows {
		entries[i] = row.entry
	}
}

func makeSortKey(entry *bibliography.Entry) sortKey {
	k := sortKey{key: entry.Key}
	if entry.Type == bibliography.Preamble {
		k.preamble = true
		return k
	}
	if raw, ok := entry.Get("year"); ok {
		if year, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			k.hasYear = true
			k.year = year
		}
	}
	k.author = foldName(FirstFamilyName(entry))
	return k
}

// FirstFamilyName extracts the family name of the first listed author, or
// editor when no author field is present. Returns "" when neither exists.
func FirstFamilyName(entry *bibliography.Entry) string {
	names, ok := entry.Get("author")
	if !ok {
		names, ok = entry.Get("editor")
	}
	if !ok {
		return ""
	}

	first := names
	if i := strings.Index(strings.ToLower(names), " and "); i >= 0 {
		first = names[:i]
	}
	first = strings.Map(func(r rune) rune {
		if r == '{' || r == '}' {
			return -1
		}
		return r
	}, first)
	first = strings.TrimSpace(first)

	// "Last, First" form: family name precedes the comma.
	if i := strings.Index(first, ","); i >= 0 {
		return strings.TrimSpace(first[:i])
	}

	// "First Last" form: family name is the final word.
	words := strings.Fields(first)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

// foldName lowercases and strips accents for comparison.
func foldName(name string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(name))
	if err != nil {
		return strings.ToLower(name)
	}
	return folded
}
