package rdf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// escapeLiteral escapes a lexical form for a double-quoted N-Triples or
// Turtle string.
func escapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeIRI escapes characters that may not appear inside <...>.
func escapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ ") && !hasControl(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", r) {
			fmt.Fprintf(&b, `\u%04X`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 {
			return true
		}
	}
	return false
}

// decodeEscape decodes the escape sequence starting at s[0] == '\\'. It
// returns the decoded text and the number of input bytes consumed.
func decodeEscape(s string) (string, int, error) {
	if len(s) < 2 {
		return "", 0, fmt.Errorf("unterminated escape")
	}
	switch s[1] {
	case 't':
		return "\t", 2, nil
	case 'b':
		return "\b", 2, nil
	case 'n':
		return "\n", 2, nil
	case 'r':
		return "\r", 2, nil
	case 'f':
		return "\f", 2, nil
	case '"':
		return "\"", 2, nil
	case '\'':
		return "'", 2, nil
	case '\\':
		return "\\", 2, nil
	case 'u', 'U':
		width := 4
		if s[1] == 'U' {
			width = 8
		}
		if len(s) < 2+width {
			return "", 0, fmt.Errorf("short unicode escape")
		}
		code, err := strconv.ParseUint(s[2:2+width], 16, 32)
		if err != nil {
			return "", 0, fmt.Errorf("invalid unicode escape %q", s[:2+width])
		}
		r := rune(code)
		if !utf8.ValidRune(r) {
			return "", 0, fmt.Errorf("invalid code point %q", s[:2+width])
		}
		return string(r), 2 + width, nil
	default:
		return "", 0, fmt.Errorf("unknown escape \\%c", s[1])
	}
}

// unescapeIRI decodes \u and \U escapes inside an IRI reference.
func unescapeIRI(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 >= len(s) || (s[i+1] != 'u' && s[i+1] != 'U') {
			return "", fmt.Errorf("invalid escape in IRI")
		}
		text, n, err := decodeEscape(s[i:])
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		i += n
	}
	return b.String(), nil
}
