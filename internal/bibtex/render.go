package bibtex

import (
	"fmt"
	"strings"

	"github.com/bibtidy/bibtidy/internal/bibliography"
)

// Render produces the full bibliography as a single text blob. Entries are
// written in slice order with fields in their stored order, so output is
// deterministic for a given entry sequence.
func Render(entries []*bibliography.Entry) string {
	var parts []string
	for _, entry := range entries {
		parts = append(parts, renderEntry(entry))
	}
	return strings.Join(parts, "\n")
}

func renderEntry(entry *bibliography.Entry) string {
	var b strings.Builder

	if entry.Type == bibliography.Preamble {
		value, _ := entry.Get("value")
		fmt.Fprintf(&b, "@preamble{%s}\n", value)
		return b.String()
	}

	fmt.Fprintf(&b, "@%s{%s,\n", entry.TypeTag(), entry.Key)
	for _, name := range entry.Fields() {
		value, _ := entry.Get(name)
		fmt.Fprintf(&b, "  %s = {%s},\n", name, value)
	}
	b.WriteString("}\n")
	return b.String()
}
