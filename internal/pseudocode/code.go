package pseudocode

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/quillforge/quill/internal/engine"
)

// CodeOption configures a real-language code block.
type CodeOption func(*codeOptions)

type codeOptions struct {
	startAt    int
	highlights map[int]bool
	title      string
}

// WithStart sets the first line number.
func WithStart(n int) CodeOption {
	return func(o *codeOptions) { o.startAt = n }
}

// WithHighlightLines highlights the given (rendered) line numbers.
func WithHighlightLines(lines ...int) CodeOption {
	return func(o *codeOptions) {
		for _, n := range lines {
			o.highlights[n] = true
		}
	}
}

// WithTitle sets a caption above the listing.
func WithTitle(title string) CodeOption {
	return func(o *codeOptions) { o.title = title }
}

// Code renders a real-language source listing with the same gutter and
// highlight chrome as a pseudocode block. Tokenization is delegated to
// chroma; an unknown language falls back to an unstyled listing.
func Code(lang, source string, opts ...CodeOption) templ.Component {
	o := codeOptions{startAt: 1, highlights: make(map[int]bool)}
	for _, opt := range opts {
		opt(&o)
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lexer := lexers.Get(lang)
		if lexer == nil {
			lexer = lexers.Fallback
		}
		lexer = chroma.Coalesce(lexer)
		it, err := lexer.Tokenise(nil, source)
		if err != nil {
			return engine.Failf(ctx, "code", "tokenizing %s source: %v", lang, err)
		}
		tokenLines := chroma.SplitTokensIntoLines(it.Tokens())

		if _, err := fmt.Fprintf(w, `<figure class="pseudocode code" data-lang="%s">`, templ.EscapeString(lang)); err != nil {
			return err
		}
		if o.title != "" {
			if _, err := fmt.Fprintf(w, `<figcaption class="pc-title">%s</figcaption>`, templ.EscapeString(o.title)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<pre class="pc-body">`); err != nil {
			return err
		}

		lineno := o.startAt
		for _, toks := range tokenLines {
			classes := "pc-line"
			if o.highlights[lineno] {
				classes += " pc-hl"
			}
			if _, err := fmt.Fprintf(w, `<span class="%s"><span class="pc-lineno">%s</span><span class="pc-text">`, classes, strconv.Itoa(lineno)); err != nil {
				return err
			}
			for _, tok := range toks {
				if err := writeToken(w, tok); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</span></span>\n"); err != nil {
				return err
			}
			lineno++
		}

		_, err = io.WriteString(w, "</pre></figure>")
		return err
	})
}

// writeToken emits one chroma token, mapping its category to the same
// classes the pseudocode renderer uses.
func writeToken(w io.Writer, tok chroma.Token) error {
	text := templ.EscapeString(strings.TrimSuffix(tok.Value, "\n"))
	if text == "" {
		return nil
	}
	class := tokenClass(tok.Type)
	if class == "" {
		_, err := io.WriteString(w, text)
		return err
	}
	_, err := fmt.Fprintf(w, `<span class="%s">%s</span>`, class, text)
	return err
}

func tokenClass(t chroma.TokenType) string {
	switch {
	case t.InCategory(chroma.Keyword):
		return "pc-kw"
	case t.InCategory(chroma.Comment):
		return "pc-com"
	case t.InCategory(chroma.LiteralString):
		return "pc-str"
	case t.InCategory(chroma.LiteralNumber):
		return "pc-num"
	case t.InCategory(chroma.Operator):
		return "pc-op"
	default:
		return ""
	}
}
