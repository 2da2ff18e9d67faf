package bibtex

import (
	"strings"
	"testing"

	"github.com/bibtidy/bibtidy/internal/bibliography"
)

const sampleBib = `
@article{Doe20,
  author = {Doe, J. and Roe, R.},
  title = {A {DNA} Study},
  journal = {Nature},
  year = 2020,
  pages = {100--110},
}

@book{Roe19,
  author = "Roe, R.",
  title = {Some Book},
  year = {2019},
}
`

func TestParse_Entries(t *testing.T) {
	entries, err := Parse(sampleBib)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	doe := entries[0]
	if doe.Type != bibliography.Article || doe.Key != "Doe20" {
		t.Errorf("first entry = @%s{%s}, want @article{Doe20}", doe.Type, doe.Key)
	}
	if v, _ := doe.Get("title"); v != "A {DNA} Study" {
		t.Errorf("title = %q, inner braces must survive parsing", v)
	}
	if v, _ := doe.Get("year"); v != "2020" {
		t.Errorf("bare year = %q, want 2020", v)
	}

	roe := entries[1]
	if v, _ := roe.Get("author"); v != "Roe, R." {
		t.Errorf("quoted author = %q, want Roe, R.", v)
	}
	wantOrder := []string{"author", "title", "year"}
	got := roe.Fields()
	for i, name := range wantOrder {
		if got[i] != name {
			t.Fatalf("field order = %v, want %v", got, wantOrder)
		}
	}
}

func TestParse_PreambleAndComment(t *testing.T) {
	entries, err := Parse(`
@comment{ignore all of this}
@preamble{"\newcommand{\x}{y}"}
@string{me = "self"}
@misc{M1, note = {hi}}
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected preamble and misc, got %d entries", len(entries))
	}
	if entries[0].Type != bibliography.Preamble {
		t.Errorf("first entry type = %s, want preamble", entries[0].Type)
	}
	if entries[1].Key != "M1" {
		t.Errorf("second entry = %s, want M1", entries[1].Key)
	}
}

func TestParse_UnrecognizedType(t *testing.T) {
	entries, err := Parse("@dataset{D1, title = {x}}")
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Type != bibliography.Unrecognized {
		t.Errorf("type = %s, want unrecognized", entries[0].Type)
	}
	if entries[0].TypeTag() != "dataset" {
		t.Errorf("TypeTag() = %q, want raw tag kept", entries[0].TypeTag())
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		"@article{,\n}",              // empty key
		"@article{K, title = {open",  // unterminated group
		"@article{K, title {x}}",     // missing '='
		`@article{K, title = "open}`, // unterminated quote
	} {
		if _, err := Parse(src); err == nil {
			t.Errorf("Parse(%q): expected error", src)
		}
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	entries, err := Parse(sampleBib)
	if err != nil {
		t.Fatal(err)
	}
	rendered := Render(entries)

	again, err := Parse(rendered)
	if err != nil {
		t.Fatalf("re-parsing rendered output: %v", err)
	}
	if Render(again) != rendered {
		t.Error("render/parse round trip is not stable")
	}
}

func TestRender_Layout(t *testing.T) {
	e := bibliography.NewEntry(bibliography.Article, "Doe20")
	e.Set("author", "Doe, J.")
	e.Set("year", "2020")

	got := Render([]*bibliography.Entry{e})
	want := "@article{Doe20,\n  author = {Doe, J.},\n  year = {2020},\n}\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_EmptySet(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Errorf("Render(nil) = %q, want empty", got)
	}
}

func TestRender_SeparatesEntries(t *testing.T) {
	entries, _ := Parse(sampleBib)
	out := Render(entries)
	if !strings.Contains(out, "}\n\n@book") {
		t.Error("entries should be separated by a blank line")
	}
}
