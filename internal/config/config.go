// Package config loads the bibtidy policy configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bibtidy/bibtidy/internal/bibliography"
)

// DefaultOutputFile is the bibliography file written when bibtex_out is not set.
const DefaultOutputFile = "references.bib"

// DefaultMarkerField is the per-entry field naming applicable policy tags.
const DefaultMarkerField = "bibtidy"

// defaultBraceExceptions are the fields never brace-stripped unless the
// config overrides the exception set.
var defaultBraceExceptions = []string{"author", "editor", "title", "note"}

// CruftRule names fields to strip from entries of a given type. Type "*"
// matches every entry type. A rule with a Tag applies only to entries whose
// marker field lists that tag.
type CruftRule struct {
	Type   string   `yaml:"type"`
	Tag    string   `yaml:"tag,omitempty"`
	Fields []string `yaml:"fields"`
}

// Config controls the sanitization pipeline. It is immutable after Load;
// all passes share it by reference.
type Config struct {
	BibtexOut          string      `yaml:"bibtex_out,omitempty"`
	AllowedTypes       []string    `yaml:"allowed_types,omitempty"`
	DropEntryTypes     []string    `yaml:"drop_entry_types,omitempty"`
	Cruft              []CruftRule `yaml:"cruft,omitempty"`
	BraceExceptions    []string    `yaml:"brace_exceptions,omitempty"`
	MarkerField        string      `yaml:"marker_field,omitempty"`
	MergeOnDOI         bool        `yaml:"merge_on_doi,omitempty"`
	AllowPreamble      *bool       `yaml:"allow_preamble,omitempty"`
	NormalizeDOI       bool        `yaml:"normalize_doi,omitempty"`
	NormalizePages     bool        `yaml:"normalize_pages,omitempty"`
	AbbreviateJournals bool        `yaml:"abbreviate_journals,omitempty"`
	Sort               bool        `yaml:"sort,omitempty"`

	braceSkip map[string]bool
}

// Default returns the most permissive configuration: every knob off, all
// entry types admitted, preambles allowed.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.finalize(); err != nil {
		panic(err) // Empty config always validates
	}
	return cfg
}

// Load reads and validates a YAML policy file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// finalize applies defaults and validates rule references.
func (c *Config) finalize() error {
	if c.BibtexOut == "" {
		c.BibtexOut = DefaultOutputFile
	}
	if c.MarkerField == "" {
		c.MarkerField = DefaultMarkerField
	}
	if c.BraceExceptions == nil {
		c.BraceExceptions = defaultBraceExceptions
	}

	for _, tag := range c.AllowedTypes {
		if bibliography.ParseEntryType(tag) == bibliography.Unrecognized {
			return fmt.Errorf("allowed_types: unknown entry type %q", tag)
		}
	}
	for _, tag := range c.DropEntryTypes {
		if bibliography.ParseEntryType(tag) == bibliography.Unrecognized {
			return fmt.Errorf("drop_entry_types: unknown entry type %q", tag)
		}
	}

	for i, rule := range c.Cruft {
		if rule.Type != "*" && bibliography.ParseEntryType(rule.Type) == bibliography.Unrecognized {
			return fmt.Errorf("cruft rule %d: unknown entry type %q", i+1, rule.Type)
		}
		if len(rule.Fields) == 0 {
			return fmt.Errorf("cruft rule %d: must name at least one field", i+1)
		}
	}

	c.braceSkip = make(map[string]bool)
	for _, f := range c.BraceExceptions {
		c.braceSkip[strings.ToLower(f)] = true
	}

	return nil
}

// PreambleAllowed reports whether @preamble blocks are accepted.
// Defaults to true when allow_preamble is not set.
func (c *Config) PreambleAllowed() bool {
	return c.AllowPreamble == nil || *c.AllowPreamble
}

// RestrictsTypes reports whether an allowed_types set is configured.
func (c *Config) RestrictsTypes() bool {
	return len(c.AllowedTypes) > 0
}

// TypeAllowed reports whether the given type passes the admission rules.
func (c *Config) TypeAllowed(t bibliography.EntryType) bool {
	for _, tag := range c.DropEntryTypes {
		if bibliography.ParseEntryType(tag) == t {
			return false
		}
	}
	if len(c.AllowedTypes) == 0 {
		return true
	}
	for _, tag := range c.AllowedTypes {
		if bibliography.ParseEntryType(tag) == t {
			return true
		}
	}
	return false
}

// BraceExempt reports whether a field is exempt from brace stripping.
func (c *Config) BraceExempt(field string) bool {
	return c.braceSkip[strings.ToLower(field)]
}

// Matches reports whether a cruft rule applies to an entry of the given
// type carrying the given policy tags.
func (r CruftRule) Matches(t bibliography.EntryType, tags []string) bool {
	if r.Type != "*" && bibliography.ParseEntryType(r.Type) != t {
		return false
	}
	if r.Tag == "" {
		return true
	}
	for _, tag := range tags {
		if tag == r.Tag {
			return true
		}
	}
	return false
}
