package policy

import (
	"testing"

	"github.com/bibtidy/bibtidy/internal/bibliography"
	"github.com/bibtidy/bibtidy/internal/config"
	"github.com/bibtidy/bibtidy/internal/normalize"
)

func newEngine(cfg *config.Config) *Engine {
	return New(cfg, normalize.New(cfg, nil))
}

func TestApply_PreambleDisallowed(t *testing.T) {
	cfg := config.Default()
	disallow := false
	cfg.AllowPreamble = &disallow

	entry := bibliography.NewEntry(bibliography.Preamble, "preamble-1")
	kept, diags := newEngine(cfg).Apply(entry)

	if kept {
		t.Error("disallowed preamble must be dropped")
	}
	if len(diags) != 1 || diags[0].Severity != bibliography.SeverityError {
		t.Errorf("expected one error diagnostic, got %v", diags)
	}
}

func TestApply_PreambleAllowedByDefault(t *testing.T) {
	entry := bibliography.NewEntry(bibliography.Preamble, "preamble-1")
	kept, diags := newEngine(config.Default()).Apply(entry)

	if !kept || len(diags) != 0 {
		t.Errorf("preamble should pass by default, kept=%v diags=%v", kept, diags)
	}
}

func TestApply_TypeAdmission(t *testing.T) {
	cfg := config.Default()
	cfg.AllowedTypes = []string{"article", "book"}
	engine := newEngine(cfg)

	// Allowed type survives.
	kept, _ := engine.Apply(bibliography.NewEntry(bibliography.Article, "A"))
	if !kept {
		t.Error("article should be admitted")
	}

	// Known but disallowed type: dropped with info, not error.
	kept, diags := engine.Apply(bibliography.NewEntry(bibliography.Misc, "M"))
	if kept {
		t.Error("misc should be dropped under the allow-set")
	}
	if len(diags) != 1 || diags[0].Severity != bibliography.SeverityInfo {
		t.Errorf("policy drop should be info, got %v", diags)
	}

	// Unrecognized type: error.
	unk := bibliography.NewEntry(bibliography.Unrecognized, "U")
	unk.RawType = "conference"
	kept, diags = engine.Apply(unk)
	if kept {
		t.Error("unrecognized type should be dropped")
	}
	if len(diags) != 1 || diags[0].Severity != bibliography.SeverityError {
		t.Errorf("unrecognized type should be an error, got %v", diags)
	}
}

func TestApply_UnrecognizedPassesWithoutRestriction(t *testing.T) {
	unk := bibliography.NewEntry(bibliography.Unrecognized, "U")
	unk.RawType = "dataset"

	kept, diags := newEngine(config.Default()).Apply(unk)
	if !kept || len(diags) != 0 {
		t.Errorf("unrestricted config should pass unrecognized types, kept=%v diags=%v", kept, diags)
	}
}

func TestApply_CruftRemoval(t *testing.T) {
	cfg := config.Default()
	cfg.Cruft = []config.CruftRule{
		{Type: "*", Fields: []string{"abstract", "file"}},
		{Type: "article", Fields: []string{"url"}},
		{Type: "book", Fields: []string{"isbn"}},
	}

	entry := bibliography.NewEntry(bibliography.Article, "A")
	entry.Set("title", "T")
	entry.Set("abstract", "long text")
	entry.Set("url", "https://example.com")
	entry.Set("isbn", "123")

	kept, _ := newEngine(cfg).Apply(entry)
	if !kept {
		t.Fatal("entry should survive cruft removal")
	}
	for _, gone := range []string{"abstract", "url"} {
		if _, ok := entry.Get(gone); ok {
			t.Errorf("field %s should have been removed", gone)
		}
	}
	if _, ok := entry.Get("isbn"); !ok {
		t.Error("book rule must not apply to an article")
	}
	if _, ok := entry.Get("title"); !ok {
		t.Error("unmatched field must survive")
	}
}

func TestApply_TaggedCruftRules(t *testing.T) {
	cfg := config.Default()
	cfg.Cruft = []config.CruftRule{
		{Type: "misc", Tag: "misc.url", Fields: []string{"note"}},
		{Type: "misc", Tag: "misc.software", Fields: []string{"version"}},
	}

	entry := bibliography.NewEntry(bibliography.Misc, "M")
	entry.Set("bibtidy", "misc.url")
	entry.Set("note", "drop me")
	entry.Set("version", "keep me")

	kept, _ := newEngine(cfg).Apply(entry)
	if !kept {
		t.Fatal("entry should survive")
	}
	if _, ok := entry.Get("note"); ok {
		t.Error("tagged rule matching the marker should apply")
	}
	if _, ok := entry.Get("version"); !ok {
		t.Error("rule with non-matching tag must not apply")
	}
	if _, ok := entry.Get("bibtidy"); ok {
		t.Error("marker field must be removed after rules are applied")
	}
}

func TestApply_NormalizesFieldValues(t *testing.T) {
	cfg := config.Default()
	cfg.NormalizePages = true

	entry := bibliography.NewEntry(bibliography.Article, "A")
	entry.Set("journal", "{Nature}")
	entry.Set("pages", "10-20")
	entry.Set("title", "A  title\nacross lines")

	kept, diags := newEngine(cfg).Apply(entry)
	if !kept {
		t.Fatal("entry should survive")
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if v, _ := entry.Get("journal"); v != "Nature" {
		t.Errorf("journal = %q, want braces stripped", v)
	}
	if v, _ := entry.Get("pages"); v != "10--20" {
		t.Errorf("pages = %q, want 10--20", v)
	}
	if v, _ := entry.Get("title"); v != "A title across lines" {
		t.Errorf("title = %q, want whitespace collapsed", v)
	}
}
