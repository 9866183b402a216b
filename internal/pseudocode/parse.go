package pseudocode

import (
	"fmt"
	"strings"
)

// ParseBlock parses the plain-text pseudocode syntax used in fenced code
// blocks and YAML documents into a Block.
//
// Per line:
//   - indentation is two spaces (or one tab) per level and sets the level
//     absolutely,
//   - a leading "! " highlights the line,
//   - a leading "~ " marks a continuation of the previous numbered line,
//   - a trailing " {name}" labels the line as a cross-reference anchor,
//   - "#" begins a comment running to end of line,
//   - "$...$" delimits math,
//   - recognized keywords (if, else, for, while, return, ...) are marked.
//
// Marker order is fixed as "! ~ text {label}": highlight before
// continuation.
func ParseBlock(src string) (Block, error) {
	var b Block
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	for idx, raw := range lines {
		level, rest := measureIndent(raw)
		ln := Line{Level: level}

		if strings.HasPrefix(rest, "! ") {
			ln.Highlight = true
			rest = rest[2:]
		}
		if strings.HasPrefix(rest, "~ ") {
			ln.Continuation = true
			rest = rest[2:]
		}
		if strings.HasPrefix(rest, "! ") {
			return Block{}, fmt.Errorf("line %d: highlight marker must precede continuation marker", idx+1)
		}

		rest, label := splitLabel(rest)
		ln.Label = label

		segs, err := parseSegments(rest)
		if err != nil {
			return Block{}, fmt.Errorf("line %d: %w", idx+1, err)
		}
		ln.Segments = segs
		b.Lines = append(b.Lines, ln)
	}
	return b, nil
}

// measureIndent counts leading whitespace: one tab or two spaces per level.
// An odd trailing space is kept as line text.
func measureIndent(s string) (int, string) {
	level := 0
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '\t':
			level++
			i++
		case strings.HasPrefix(s[i:], "  "):
			level++
			i += 2
		default:
			return level, s[i:]
		}
	}
	return level, ""
}

// splitLabel strips a trailing " {name}" marker.
func splitLabel(s string) (string, string) {
	if !strings.HasSuffix(s, "}") {
		return s, ""
	}
	open := strings.LastIndex(s, " {")
	if open < 0 {
		return s, ""
	}
	label := s[open+2 : len(s)-1]
	if label == "" || strings.ContainsAny(label, " {}") {
		return s, ""
	}
	return strings.TrimRight(s[:open], " "), label
}

// keywords recognized by the pseudocode dialect. Deliberately small: plain
// English reads better than a keyword soup.
var keywords = map[string]bool{
	"if": true, "then": true, "else": true, "elseif": true,
	"for": true, "to": true, "downto": true, "in": true, "each": true,
	"while": true, "do": true, "repeat": true, "until": true,
	"return": true, "break": true, "continue": true,
	"function": true, "procedure": true, "end": true,
	"and": true, "or": true, "not": true,
	"nil": true, "true": true, "false": true,
	"new": true, "error": true,
}

// parseSegments splits line text into plain/keyword/comment/math segments.
func parseSegments(s string) ([]Segment, error) {
	var segs []Segment
	flushPlain := func(text string) {
		segs = append(segs, splitKeywords(text)...)
	}

	for len(s) > 0 {
		hash := strings.IndexByte(s, '#')
		dollar := strings.IndexByte(s, '$')
		switch {
		case hash >= 0 && (dollar < 0 || hash < dollar):
			flushPlain(s[:hash])
			segs = append(segs, Comment(s[hash:]))
			return segs, nil
		case dollar >= 0:
			closing := strings.IndexByte(s[dollar+1:], '$')
			if closing < 0 {
				return nil, fmt.Errorf("unterminated math span %q", s[dollar:])
			}
			flushPlain(s[:dollar])
			segs = append(segs, Math(s[dollar+1:dollar+1+closing]))
			s = s[dollar+closing+2:]
		default:
			flushPlain(s)
			return segs, nil
		}
	}
	return segs, nil
}

// splitKeywords marks recognized keywords in plain text, leaving everything
// else untouched.
func splitKeywords(text string) []Segment {
	if text == "" {
		return nil
	}
	var segs []Segment
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			segs = append(segs, Plain(plain.String()))
			plain.Reset()
		}
	}

	i := 0
	for i < len(text) {
		if !isWordByte(text[i]) {
			plain.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && isWordByte(text[j]) {
			j++
		}
		word := text[i:j]
		if keywords[word] {
			flush()
			segs = append(segs, Keyword(word))
		} else {
			plain.WriteString(word)
		}
		i = j
	}
	flush()
	return segs
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
