package delim

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/quillforge/quill/internal/engine"
)

// Form renders a block of structured code with rainbow delimiters. With
// reindent set, the source is first re-indented by nesting depth.
func Form(src string, reindent bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if reindent {
			fixed, err := Indent(src)
			if err != nil {
				return engine.Failf(ctx, "structured", "%v", err)
			}
			src = fixed
		}
		if _, err := io.WriteString(w, `<pre class="structured">`); err != nil {
			return err
		}
		if err := writeTokens(ctx, w, src); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</pre>")
		return err
	})
}

// Inline renders a prose-embedded fragment of structured code.
func Inline(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<code class="structured">`); err != nil {
			return err
		}
		if err := writeTokens(ctx, w, src); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</code>")
		return err
	})
}

func writeTokens(ctx context.Context, w io.Writer, src string) error {
	toks, err := Tokenize(src)
	if err != nil {
		return engine.Failf(ctx, "structured", "%v", err)
	}
	for _, t := range toks {
		text := templ.EscapeString(t.Text)
		switch t.Kind {
		case TokOpen, TokClose:
			if _, err := fmt.Fprintf(w, `<span class="%s">%s</span>`, ColorClass(t.Depth), text); err != nil {
				return err
			}
		case TokString:
			if _, err := fmt.Fprintf(w, `<span class="qd-str">%s</span>`, text); err != nil {
				return err
			}
		case TokComment:
			if _, err := fmt.Fprintf(w, `<span class="qd-com">%s</span>`, text); err != nil {
				return err
			}
		default:
			if _, err := io.WriteString(w, text); err != nil {
				return err
			}
		}
	}
	return nil
}
