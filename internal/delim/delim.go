// Package delim renders structured (parenthesized) code with rainbow
// delimiter coloring and provides a depth-based re-indentation helper.
//
// The tokenizer understands the delimiter pairs ()/[]/{}, double-quoted
// strings with backslash escapes, and line comments introduced by ';'.
// Everything else is atoms and verbatim whitespace. Delimiters carry their
// nesting depth, and the renderer cycles a fixed palette by depth so the
// open and close of a pair always share a color class.
package delim

import (
	"fmt"
	"strings"

	"github.com/quillforge/quill/internal/errors"
)

// TokenKind classifies a structured-code token.
type TokenKind int

const (
	TokOpen TokenKind = iota
	TokClose
	TokAtom
	TokString
	TokComment
	TokSpace
)

// Token is one lexeme of structured source.
type Token struct {
	Kind TokenKind
	// Text is the verbatim source slice, delimiters included.
	Text string
	// Depth is the nesting depth of a delimiter: an open token carries the
	// depth it introduces, and its matching close carries the same value.
	Depth int
	// Offset is the byte offset of the token in the source.
	Offset int
}

var pairs = map[byte]byte{')': '(', ']': '[', '}': '{'}

func isOpen(b byte) bool  { return b == '(' || b == '[' || b == '{' }
func isClose(b byte) bool { return b == ')' || b == ']' || b == '}' }

// Tokenize splits structured source into tokens, assigning delimiter
// depths. Unbalanced or mismatched delimiters are a diagnostic: rainbow
// coloring of broken code would paint a lie.
func Tokenize(src string) ([]Token, error) {
	var toks []Token
	type open struct {
		char   byte
		offset int
	}
	var stack []open

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case isOpen(c):
			stack = append(stack, open{char: c, offset: i})
			toks = append(toks, Token{Kind: TokOpen, Text: src[i : i+1], Depth: len(stack) - 1, Offset: i})
			i++
		case isClose(c):
			if len(stack) == 0 {
				return nil, errors.Newf("structured", "unmatched %q at offset %d", string(c), i)
			}
			top := stack[len(stack)-1]
			if top.char != pairs[c] {
				return nil, errors.Newf("structured", "mismatched %q at offset %d (opened with %q at offset %d)",
					string(c), i, string(top.char), top.offset)
			}
			stack = stack[:len(stack)-1]
			toks = append(toks, Token{Kind: TokClose, Text: src[i : i+1], Depth: len(stack), Offset: i})
			i++
		case c == '"':
			end, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: TokString, Text: src[i:end], Offset: i})
			i = end
		case c == ';':
			end := i
			for end < len(src) && src[end] != '\n' {
				end++
			}
			toks = append(toks, Token{Kind: TokComment, Text: src[i:end], Offset: i})
			i = end
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			end := i
			for end < len(src) && (src[end] == ' ' || src[end] == '\t' || src[end] == '\n' || src[end] == '\r') {
				end++
			}
			toks = append(toks, Token{Kind: TokSpace, Text: src[i:end], Offset: i})
			i = end
		default:
			end := i
			for end < len(src) && !isBoundary(src[end]) {
				end++
			}
			toks = append(toks, Token{Kind: TokAtom, Text: src[i:end], Offset: i})
			i = end
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, errors.Newf("structured", "unclosed %q at offset %d", string(top.char), top.offset)
	}
	return toks, nil
}

func isBoundary(b byte) bool {
	return isOpen(b) || isClose(b) || b == '"' || b == ';' ||
		b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func scanString(src string, start int) (int, error) {
	i := start + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1, nil
		case '\n':
			return 0, errors.Newf("structured", "newline in string at offset %d", start)
		default:
			i++
		}
	}
	return 0, errors.Newf("structured", "unterminated string at offset %d", start)
}

// Depth reports the maximum nesting depth of the source.
func Depth(toks []Token) int {
	max := 0
	for _, t := range toks {
		if t.Kind == TokOpen && t.Depth+1 > max {
			max = t.Depth + 1
		}
	}
	return max
}

// Indent re-indents structured source by nesting depth, two spaces per
// level, leaving strings and comments untouched. Only the leading
// whitespace of each line changes.
func Indent(src string) (string, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return "", err
	}
	depth := 0
	var b strings.Builder
	atLineStart := true
	for _, t := range toks {
		switch t.Kind {
		case TokOpen:
			writeIndented(&b, t.Text, &atLineStart, depth)
			depth++
		case TokClose:
			depth--
			writeIndented(&b, t.Text, &atLineStart, depth)
		case TokSpace:
			if strings.Contains(t.Text, "\n") {
				// Collapse the line break and swallow original leading
				// whitespace; the next token re-indents.
				newlines := strings.Count(t.Text, "\n")
				b.WriteString(strings.Repeat("\n", newlines))
				atLineStart = true
			} else if !atLineStart {
				b.WriteString(t.Text)
			}
		default:
			writeIndented(&b, t.Text, &atLineStart, depth)
		}
	}
	return b.String(), nil
}

func writeIndented(b *strings.Builder, text string, atLineStart *bool, depth int) {
	if *atLineStart {
		b.WriteString(strings.Repeat("  ", depth))
		*atLineStart = false
	}
	b.WriteString(text)
}

// PaletteSize is the number of rainbow color classes; depth d gets class
// ColorClass(d) = "qd-(d mod PaletteSize)".
const PaletteSize = 6

// ColorClass returns the CSS class for a delimiter at the given depth.
func ColorClass(depth int) string {
	return fmt.Sprintf("qd-%d", depth%PaletteSize)
}
