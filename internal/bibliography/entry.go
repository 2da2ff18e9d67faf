// Package bibliography defines the core domain types for BibTeX entries.
package bibliography

import "strings"

// EntryType identifies a BibTeX entry type.
type EntryType string

// The standard BibTeX entry types, plus Preamble for @preamble blocks and
// Unrecognized for anything outside the known set.
const (
	Article       EntryType = "article"
	Book          EntryType = "book"
	Booklet       EntryType = "booklet"
	InBook        EntryType = "inbook"
	InCollection  EntryType = "incollection"
	InProceedings EntryType = "inproceedings"
	Manual        EntryType = "manual"
	MastersThesis EntryType = "mastersthesis"
	Misc          EntryType = "misc"
	PhDThesis     EntryType = "phdthesis"
	Proceedings   EntryType = "proceedings"
	TechReport    EntryType = "techreport"
	Unpublished   EntryType = "unpublished"
	Preamble      EntryType = "preamble"
	Unrecognized  EntryType = "unrecognized"
)

var knownTypes = map[EntryType]bool{
	Article:       true,
	Book:          true,
	Booklet:       true,
	InBook:        true,
	InCollection:  true,
	InProceedings: true,
	Manual:        true,
	MastersThesis: true,
	Misc:          true,
	PhDThesis:     true,
	Proceedings:   true,
	TechReport:    true,
	Unpublished:   true,
	Preamble:      true,
}

// ParseEntryType maps a raw type tag (case-insensitive) to an EntryType.
// Unknown tags map to Unrecognized; the raw tag is kept on the entry so
// rendering can reproduce it.
func ParseEntryType(tag string) EntryType {
	t := EntryType(strings.ToLower(strings.TrimSpace(tag)))
	if knownTypes[t] {
		return t
	}
	return Unrecognized
}

// Entry represents a single bibliographic record: a type tag, a citation
// key, and an ordered field map. Field order is the order fields were first
// encountered and is preserved through all passes.
type Entry struct {
	Type EntryType
	// RawType is the type tag as written in the source, used when Type is
	// Unrecognized so the original spelling survives to the output.
	RawType string
	Key     string

	fields map[string]string
	order  []string
}

// NewEntry creates an entry with no fields.
func NewEntry(entryType EntryType, key string) *Entry {
	return &Entry{
		Type:   entryType,
		Key:    key,
		fields: make(map[string]string),
	}
}

// Get returns the value of a field and whether it is present.
func (e *Entry) Get(name string) (string, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// Set stores a field value, appending to the field order on first write.
func (e *Entry) Set(name, value string) {
	if _, ok := e.fields[name]; !ok {
		e.order = append(e.order, name)
	}
	e.fields[name] = value
}

// Delete removes a field. Removing an absent field is a no-op.
func (e *Entry) Delete(name string) {
	if _, ok := e.fields[name]; !ok {
		return
	}
	delete(e.fields, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Fields returns the field names in stored order. The returned slice is a
// copy and safe to mutate.
func (e *Entry) Fields() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Len returns the number of fields.
func (e *Entry) Len() int {
	return len(e.fields)
}

// TypeTag returns the tag to render: the raw tag for unrecognized types,
// the canonical lowercase tag otherwise.
func (e *Entry) TypeTag() string {
	if e.Type == Unrecognized && e.RawType != "" {
		return e.RawType
	}
	return string(e.Type)
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := NewEntry(e.Type, e.Key)
	c.RawType = e.RawType
	for _, name := range e.order {
		c.Set(name, e.fields[name])
	}
	return c
}
