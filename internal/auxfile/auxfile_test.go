package auxfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.aux")
	content := `\relax
\citation{Doe20}
\citation{Roe19,Ng21}
\citation{Doe20}
\bibstyle{plain}
\bibdata{refs,extra.bib}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Citations) != 3 {
		t.Errorf("citations = %v, want 3 unique keys", doc.Citations)
	}
	for _, key := range []string{"Doe20", "Roe19", "Ng21"} {
		if !doc.Citations[key] {
			t.Errorf("missing citation %s", key)
		}
	}

	if len(doc.BibFiles) != 2 {
		t.Fatalf("bib files = %v, want 2", doc.BibFiles)
	}
	if doc.BibFiles[0] != filepath.Join(dir, "refs.bib") {
		t.Errorf("first bib = %q, want .bib extension added and dir resolved", doc.BibFiles[0])
	}
	if doc.BibFiles[1] != filepath.Join(dir, "extra.bib") {
		t.Errorf("second bib = %q", doc.BibFiles[1])
	}
}

func TestParse_NoCitations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.aux")
	if err := os.WriteFile(path, []byte("\\relax\n"), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Citations) != 0 || len(doc.BibFiles) != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}
