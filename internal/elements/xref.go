package elements

import (
	"fmt"

	"github.com/a-h/templ"
	"github.com/quillforge/quill/internal/engine"
	"github.com/quillforge/quill/internal/errors"
)

// Xref renders an in-document cross reference. Anchors are registered as
// the tree renders, so the link text is a deferred fragment resolved once
// the pass has seen the whole document, so a reference may point forward.
func Xref(id string) templ.Component {
	return engine.Deferred("xref", func(p *engine.Pass) (string, error) {
		a, ok := p.Anchor(id)
		if !ok {
			return "", errors.Newf("xref", "unknown cross reference %q", id)
		}
		var text string
		switch a.Kind {
		case "line":
			text = fmt.Sprintf("line %d", a.Number)
		case "figure":
			text = fmt.Sprintf("figure %d", a.Number)
		default:
			text = a.Label
			if text == "" {
				text = a.ID
			}
		}
		return fmt.Sprintf(`<a href="#%s" class="xref">%s</a>`,
			templ.EscapeString(a.ID), templ.EscapeString(text)), nil
	})
}
