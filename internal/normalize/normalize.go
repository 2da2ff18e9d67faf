// Package normalize cleans individual BibTeX field values.
package normalize

import (
	"regexp"
	"strings"

	"github.com/bibtidy/bibtidy/internal/bibliography"
	"github.com/bibtidy/bibtidy/internal/config"
)

// JournalService maps a full journal name to its abbreviated form. A failed
// lookup degrades to keeping the original value; it never fails the run.
type JournalService interface {
	Abbreviate(name string) (string, error)
}

// doiProxies are resolver prefixes stripped from DOI values, longest match
// first so dx.doi.org forms are not half-stripped.
var doiProxies = []string{
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"https://doi.org/",
	"http://doi.org/",
	"doi.org/",
	"doi:",
}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	pageRangeRe     = regexp.MustCompile(`^(\d+)\s*(?:--?|\x{2013})\s*(\d+)$`)
	pageIrregularRe = regexp.MustCompile(`^\d+\s*[-\x{2013}\x{2014}]+\s*\d+$`)
)

// Normalizer applies per-field cleanup rules from a shared configuration.
type Normalizer struct {
	cfg      *config.Config
	journals JournalService
}

// New creates a Normalizer. The journal service may be nil when journal
// abbreviation is disabled.
func New(cfg *config.Config, journals JournalService) *Normalizer {
	return &Normalizer{cfg: cfg, journals: journals}
}

// Field returns the cleaned value of a single field, plus any diagnostics.
// The entry key is used only for diagnostic context.
func (n *Normalizer) Field(key, name, value string) (string, []bibliography.Diagnostic) {
	var diags []bibliography.Diagnostic

	value = CollapseWhitespace(value)

	stripped, balanced := StripRedundantBraces(value)
	if !balanced {
		diags = append(diags, bibliography.Diagnostic{
			Severity: bibliography.SeverityError,
			Key:      key,
			Field:    name,
			Message:  "unbalanced braces in field value",
		})
	} else if !n.cfg.BraceExempt(name) {
		value = stripped
	}

	switch strings.ToLower(name) {
	case "doi":
		if n.cfg.NormalizeDOI {
			doi, ok := NormalizeDOI(value)
			if !ok {
				diags = append(diags, bibliography.Warningf(key, name, "invalid DOI: %s", value))
			} else {
				value = doi
			}
		}
	case "pages":
		if n.cfg.NormalizePages {
			pages, warn := NormalizePages(value)
			if warn {
				diags = append(diags, bibliography.Warningf(key, name, "irregular page range: %s", value))
			} else {
				value = pages
			}
		}
	case "journal":
		if n.cfg.AbbreviateJournals && n.journals != nil {
			abbrev, err := n.abbreviate(value)
			if err != nil {
				diags = append(diags, bibliography.Warningf(key, name, "journal abbreviation lookup failed: %v", err))
			} else {
				value = abbrev
			}
		}
	}

	return value, diags
}

// abbreviate looks up the abbreviated journal name. Names that already
// contain a period are taken to be abbreviated and returned unchanged.
func (n *Normalizer) abbreviate(name string) (string, error) {
	if strings.Contains(name, ".") {
		return name, nil
	}
	abbrev, err := n.journals.Abbreviate(name)
	if err != nil {
		return "", err
	}
	return CollapseWhitespace(abbrev), nil
}

// CollapseWhitespace collapses runs of whitespace (including newlines) to a
// single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// StripRedundantBraces removes brace pairs that span the entire value,
// repeating until none remain. Braces protecting only part of the value
// (case-protecting groups) are kept. The second result is false when the
// braces are unbalanced, in which case the value is returned unchanged.
func StripRedundantBraces(s string) (string, bool) {
	if !bracesBalanced(s) {
		return s, false
	}
	for {
		t := strings.TrimSpace(s)
		if len(t) < 2 || t[0] != '{' || t[len(t)-1] != '}' {
			return t, true
		}
		if !spansWhole(t) {
			return t, true
		}
		s = t[1 : len(t)-1]
	}
}

// bracesBalanced checks that every brace opens and closes in order.
func bracesBalanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// spansWhole reports whether the leading brace of s closes at the final
// character, i.e. the pair encloses the entire value.
func spansWhole(s string) bool {
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

// NormalizeDOI lowercases a DOI and strips resolver prefixes, leaving the
// bare 10.xxxx/... form. Returns false when the result is not a conforming
// DOI; callers should keep the original value in that case.
func NormalizeDOI(doi string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, proxy := range doiProxies {
		if strings.HasPrefix(d, proxy) {
			d = d[len(proxy):]
			break
		}
	}
	if !strings.HasPrefix(d, "10.") || !strings.Contains(d, "/") {
		return "", false
	}
	return d, true
}

// NormalizePages rewrites a page range to the canonical double-hyphen form.
// Single hyphens and en-dashes between two numbers are upgraded. The second
// result is true when the separator is irregular and the value should be
// left alone with a warning.
func NormalizePages(pages string) (string, bool) {
	if m := pageRangeRe.FindStringSubmatch(pages); m != nil {
		return m[1] + "--" + m[2], false
	}
	if pageIrregularRe.MatchString(pages) {
		return pages, true
	}
	return pages, false
}
