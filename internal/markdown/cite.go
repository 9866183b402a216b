package markdown

import (
	"bytes"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/quillforge/quill/internal/bib"
)

// citeMacro builds the citation marker component; a variable so tests can
// observe the keys a document produced.
var citeMacro func(keys ...string) templ.Component = bib.Cite

// Citation is an inline [@key] or [@a; @b] citation node.
type Citation struct {
	ast.BaseInline
	Keys []string
}

// KindCitation is the node kind of Citation.
var KindCitation = ast.NewNodeKind("Citation")

// Kind implements ast.Node.
func (n *Citation) Kind() ast.NodeKind { return KindCitation }

// Dump implements ast.Node.
func (n *Citation) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// citeParser parses [@key] and [@a; @b] inline citations.
type citeParser struct{}

func (p *citeParser) Trigger() []byte { return []byte{'['} }

func (p *citeParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 4 || line[0] != '[' || line[1] != '@' {
		return nil
	}
	end := bytes.IndexByte(line, ']')
	if end < 0 {
		return nil
	}

	var keys []string
	for _, part := range bytes.Split(line[1:end], []byte{';'}) {
		part = bytes.TrimSpace(part)
		if len(part) < 2 || part[0] != '@' {
			return nil
		}
		key := string(part[1:])
		if !validKey(key) {
			return nil
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}

	block.Advance(end + 1)
	return &Citation{Keys: keys}
}

func validKey(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '_' || b == '-' || b == ':' || b == '.':
		default:
			return false
		}
	}
	return len(s) > 0
}
