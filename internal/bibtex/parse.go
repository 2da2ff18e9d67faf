// Package bibtex reads and writes BibTeX databases.
package bibtex

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/bibtidy/bibtidy/internal/bibliography"
)

// ParseFile reads a .bib file into entries.
func ParseFile(path string) ([]*bibliography.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse reads BibTeX source into entries. @comment and @string blocks are
// skipped; @preamble blocks become entries of type Preamble so policy can
// accept or reject them. This is a tolerant reader, not a full grammar:
// field values are taken verbatim between their delimiters.
func Parse(src string) ([]*bibliography.Entry, error) {
	p := &parser{src: src}
	var entries []*bibliography.Entry
	preambles := 0

	for {
		if !p.seek('@') {
			return entries, nil
		}
		p.pos++ // consume '@'
		tag := p.readWord()
		p.skipSpace()

		open := p.peek()
		if open != '{' && open != '(' {
			return nil, fmt.Errorf("line %d: expected '{' after @%s", p.line(), tag)
		}

		switch strings.ToLower(tag) {
		case "comment", "string":
			if _, err := p.readGroup(); err != nil {
				return nil, err
			}
		case "preamble":
			body, err := p.readGroup()
			if err != nil {
				return nil, err
			}
			preambles++
			entry := bibliography.NewEntry(bibliography.Preamble, fmt.Sprintf("preamble-%d", preambles))
			entry.Set("value", strings.TrimSpace(body))
			entries = append(entries, entry)
		default:
			entry, err := p.readEntry(tag)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) line() int {
	return 1 + strings.Count(p.src[:p.pos], "\n")
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// seek advances to the next occurrence of c, returning false at EOF.
func (p *parser) seek(c byte) bool {
	for p.pos < len(p.src) {
		if p.src[p.pos] == c {
			return true
		}
		p.pos++
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// readWord reads a run of letters (an entry type tag or field name).
func (p *parser) readWord() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '-' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// readGroup consumes a brace- or paren-delimited group and returns its
// inner content. The cursor must be on the opening delimiter.
func (p *parser) readGroup() (string, error) {
	open := p.src[p.pos]
	closer := byte('}')
	if open == '(' {
		closer = ')'
	}
	startLine := p.line()
	p.pos++
	start := p.pos
	depth := 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case open:
			if open != closer {
				depth++
			}
		case closer:
			depth--
			if depth == 0 {
				body := p.src[start:p.pos]
				p.pos++
				return body, nil
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				body := p.src[start:p.pos]
				p.pos++
				return body, nil
			}
		}
		p.pos++
	}
	return "", fmt.Errorf("line %d: unterminated group", startLine)
}

// readEntry reads the body of a regular @type{key, field = value, ...} entry.
// The cursor must be on the opening delimiter.
func (p *parser) readEntry(tag string) (*bibliography.Entry, error) {
	p.pos++ // consume '{'
	p.skipSpace()
	keyStart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ',' && p.src[p.pos] != '}' && !unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
	key := strings.TrimSpace(p.src[keyStart:p.pos])
	if key == "" {
		return nil, fmt.Errorf("line %d: entry @%s has an empty citation key", p.line(), tag)
	}

	entry := bibliography.NewEntry(bibliography.ParseEntryType(tag), key)
	if entry.Type == bibliography.Unrecognized {
		entry.RawType = tag
	}

	p.skipSpace()
	for {
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			continue
		case '}':
			p.pos++
			return entry, nil
		case 0:
			return nil, fmt.Errorf("entry %s: unexpected end of input", key)
		}

		name := strings.ToLower(p.readWord())
		if name == "" {
			return nil, fmt.Errorf("line %d: entry %s: expected field name", p.line(), key)
		}
		p.skipSpace()
		if p.peek() != '=' {
			return nil, fmt.Errorf("line %d: entry %s: expected '=' after field %s", p.line(), key, name)
		}
		p.pos++
		p.skipSpace()

		value, err := p.readValue(key, name)
		if err != nil {
			return nil, err
		}
		entry.Set(name, value)
		p.skipSpace()
	}
}

// readValue reads one field value: a braced group, a quoted string, or a
// bare token (numbers, macro names).
func (p *parser) readValue(key, name string) (string, error) {
	switch p.peek() {
	case '{':
		return p.readGroup()
	case '"':
		startLine := p.line()
		p.pos++
		start := p.pos
		depth := 0
		for p.pos < len(p.src) {
			switch p.src[p.pos] {
			case '{':
				depth++
			case '}':
				depth--
			case '"':
				if depth == 0 {
					body := p.src[start:p.pos]
					p.pos++
					return body, nil
				}
			}
			p.pos++
		}
		return "", fmt.Errorf("line %d: entry %s: unterminated quoted value for %s", startLine, key, name)
	default:
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != ',' && p.src[p.pos] != '}' && p.src[p.pos] != '\n' {
			p.pos++
		}
		value := strings.TrimSpace(p.src[start:p.pos])
		if value == "" {
			return "", fmt.Errorf("line %d: entry %s: empty value for field %s", p.line(), key, name)
		}
		return value, nil
	}
}
