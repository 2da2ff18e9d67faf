// Package policy applies the configured admission and cruft rules to
// single entries.
package policy

import (
	"strings"

	"github.com/bibtidy/bibtidy/internal/bibliography"
	"github.com/bibtidy/bibtidy/internal/config"
	"github.com/bibtidy/bibtidy/internal/normalize"
)

// Engine applies a configuration's rule set to one entry at a time.
type Engine struct {
	cfg  *config.Config
	norm *normalize.Normalizer
}

// New creates an Engine sharing the given configuration and normalizer.
func New(cfg *config.Config, norm *normalize.Normalizer) *Engine {
	return &Engine{cfg: cfg, norm: norm}
}

// Apply runs type admission, cruft removal, and field normalization on an
// entry. It returns false when the entry is dropped; dropped entries are
// excluded from all subsequent passes.
func (e *Engine) Apply(entry *bibliography.Entry) (bool, []bibliography.Diagnostic) {
	var diags []bibliography.Diagnostic

	if entry.Type == bibliography.Preamble {
		if !e.cfg.PreambleAllowed() {
			diags = append(diags, bibliography.Errorf(entry.Key, "@preamble is not allowed"))
			return false, diags
		}
		return true, diags
	}

	if e.cfg.RestrictsTypes() {
		if entry.Type == bibliography.Unrecognized {
			diags = append(diags, bibliography.Errorf(entry.Key, "unrecognized entry type @%s", entry.TypeTag()))
			return false, diags
		}
		if !e.cfg.TypeAllowed(entry.Type) {
			diags = append(diags, bibliography.Infof(entry.Key, "dropping disallowed entry type @%s", entry.Type))
			return false, diags
		}
	} else if !e.cfg.TypeAllowed(entry.Type) {
		// drop_entry_types applies even without an allow-set.
		diags = append(diags, bibliography.Infof(entry.Key, "dropping irrelevant entry type @%s", entry.TypeTag()))
		return false, diags
	}

	e.removeCruft(entry)

	for _, name := range entry.Fields() {
		value, _ := entry.Get(name)
		cleaned, fieldDiags := e.norm.Field(entry.Key, name, value)
		diags = append(diags, fieldDiags...)
		if cleaned != value {
			entry.Set(name, cleaned)
		}
	}

	return true, diags
}

// removeCruft deletes fields named by applicable cruft rules, then the
// marker field itself.
func (e *Engine) removeCruft(entry *bibliography.Entry) {
	tags := e.markerTags(entry)
	for _, rule := range e.cfg.Cruft {
		if !rule.Matches(entry.Type, tags) {
			continue
		}
		for _, field := range rule.Fields {
			entry.Delete(field)
		}
	}
	entry.Delete(e.cfg.MarkerField)
}

// markerTags parses the entry's policy marker field into a tag set.
func (e *Engine) markerTags(entry *bibliography.Entry) []string {
	raw, ok := entry.Get(e.cfg.MarkerField)
	if !ok {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
