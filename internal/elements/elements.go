// Package elements provides the HTML element wrapper macros: stateless
// per-call components for headings, prose, links, images, figures, lists,
// tables, and inline spans. The only pass state they touch is the anchor
// table (headings, figures, cross references) and the per-kind ordinal
// counters that number figures and sections.
package elements

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/quillforge/quill/internal/engine"
)

// counter keys live in the pass root scope so numbering is document-wide.
const (
	counterSections = "elements.counter.section"
	counterFigures  = "elements.counter.figure"
)

func nextCounter(p *engine.Pass, key string) int {
	n := 1
	if v, ok := p.Get(key); ok {
		n = v.(int) + 1
	}
	p.SetRoot(key, n)
	return n
}

// Heading renders an <hN> with an anchor id derived from the title unless
// the author supplies one. The anchor is registered with the pass so Xref
// and prose can point at it.
func Heading(level int, title string, attrs templ.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if level < 1 || level > 6 {
			return engine.Failf(ctx, "heading", "level %d out of range 1..6", level)
		}
		id := ""
		if s, ok := attrs["id"].(string); ok {
			id = s
		} else if title != "" {
			id = Slug(title)
		}
		merged := mergeClass(attrs)
		if id != "" {
			merged["id"] = id
			if p := engine.FromContext(ctx); p != nil {
				n := nextCounter(p, counterSections)
				if err := p.RegisterAnchor(engine.Anchor{ID: id, Kind: "section", Label: title, Number: n}); err != nil {
					// Duplicate heading slugs happen in real documents; keep
					// the first anchor and note the collision.
					p.Warnf("heading", "%s", err.Error())
				}
			}
		}
		tag := fmt.Sprintf("h%d", level)
		if err := openTag(ctx, w, tag, merged); err != nil {
			return err
		}
		if err := writeText(w, title); err != nil {
			return err
		}
		return closeTag(w, tag)
	})
}

// P wraps its children in a paragraph.
func P(attrs templ.Attributes) templ.Component {
	return wrap("p", attrs)
}

// Em and Strong wrap their children in the corresponding inline element.
func Em(attrs templ.Attributes) templ.Component     { return wrap("em", attrs) }
func Strong(attrs templ.Attributes) templ.Component { return wrap("strong", attrs) }

// Section wraps its children in a <section> under a nested pass scope, so
// state a subtree binds (e.g. a local citation style) ends with it.
func Section(attrs templ.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		inner := wrap("section", attrs)
		return engine.Hook(nil, nil, inner).Render(ctx, w)
	})
}

func wrap(tag string, attrs templ.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		if err := openTag(ctx, w, tag, attrs); err != nil {
			return err
		}
		if err := children.Render(ctx, w); err != nil {
			return err
		}
		return closeTag(w, tag)
	})
}

// CodeInline renders inline code; the text is escaped, never interpreted.
func CodeInline(text string) templ.Component {
	return textSpan("code", "", text)
}

// Mono renders text in the document's monospace face without code styling.
func Mono(text string) templ.Component {
	return textSpan("span", "mono", text)
}

// Caps renders text in small caps.
func Caps(text string) templ.Component {
	return textSpan("span", "caps", text)
}

func textSpan(tag, class, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		attrs := templ.Attributes{}
		if class != "" {
			attrs["class"] = class
		}
		if err := openTag(ctx, w, tag, attrs); err != nil {
			return err
		}
		if err := writeText(w, text); err != nil {
			return err
		}
		return closeTag(w, tag)
	})
}

// Link renders an anchor around its children; with no children the href
// itself becomes the link text.
func Link(href string, attrs templ.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if href == "" {
			return engine.Failf(ctx, "link", "empty href")
		}
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		merged := mergeClass(attrs)
		merged["href"] = string(templ.URL(href))
		if err := openTag(ctx, w, "a", merged); err != nil {
			return err
		}
		var probe lengthWriter
		if err := children.Render(ctx, io.MultiWriter(w, &probe)); err != nil {
			return err
		}
		if probe.n == 0 {
			if err := writeText(w, href); err != nil {
				return err
			}
		}
		return closeTag(w, "a")
	})
}

type lengthWriter struct{ n int }

func (l *lengthWriter) Write(p []byte) (int, error) {
	l.n += len(p)
	return len(p), nil
}

// Image renders an <img>. Alt text is mandatory: an image a reader cannot
// perceive is an authoring error, so its absence halts the pass.
func Image(src, alt string, attrs templ.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if src == "" {
			return engine.Failf(ctx, "image", "empty src")
		}
		if alt == "" {
			return engine.Failf(ctx, "image", "missing alt text for %q", src)
		}
		merged := mergeClass(attrs)
		merged["src"] = string(templ.URL(src))
		merged["alt"] = alt
		if _, err := io.WriteString(w, "<img"); err != nil {
			return err
		}
		if err := templ.RenderAttributes(ctx, w, merged); err != nil {
			return err
		}
		_, err := io.WriteString(w, "/>")
		return err
	})
}

// Figure wraps its children in a numbered <figure> with a caption. When the
// author supplies an id the figure is registered as a cross-reference
// target.
func Figure(caption string, attrs templ.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		number := 0
		if p := engine.FromContext(ctx); p != nil {
			number = nextCounter(p, counterFigures)
			if id, ok := attrs["id"].(string); ok && id != "" {
				if err := p.RegisterAnchor(engine.Anchor{ID: id, Kind: "figure", Label: caption, Number: number}); err != nil {
					return err
				}
			}
		}
		if err := openTag(ctx, w, "figure", attrs); err != nil {
			return err
		}
		if err := children.Render(ctx, w); err != nil {
			return err
		}
		if caption != "" {
			if err := openTag(ctx, w, "figcaption", nil); err != nil {
				return err
			}
			label := caption
			if number > 0 {
				label = fmt.Sprintf("Figure %d. %s", number, caption)
			}
			if err := writeText(w, label); err != nil {
				return err
			}
			if err := closeTag(w, "figcaption"); err != nil {
				return err
			}
		}
		return closeTag(w, "figure")
	})
}

// Blockquote wraps its children in a quotation, with an optional
// attribution line.
func Blockquote(attribution string, attrs templ.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		if err := openTag(ctx, w, "blockquote", attrs); err != nil {
			return err
		}
		if err := children.Render(ctx, w); err != nil {
			return err
		}
		if attribution != "" {
			if err := openTag(ctx, w, "footer", templ.Attributes{"class": "attribution"}); err != nil {
				return err
			}
			if err := writeText(w, attribution); err != nil {
				return err
			}
			if err := closeTag(w, "footer"); err != nil {
				return err
			}
		}
		return closeTag(w, "blockquote")
	})
}

// UnorderedList and OrderedList wrap each item component in an <li>.
func UnorderedList(items ...templ.Component) templ.Component { return list("ul", items) }
func OrderedList(items ...templ.Component) templ.Component   { return list("ol", items) }

func list(tag string, items []templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := openTag(ctx, w, tag, nil); err != nil {
			return err
		}
		for _, item := range items {
			if err := openTag(ctx, w, "li", nil); err != nil {
				return err
			}
			if err := item.Render(ctx, w); err != nil {
				return err
			}
			if err := closeTag(w, "li"); err != nil {
				return err
			}
		}
		return closeTag(w, tag)
	})
}

// Table renders a simple table from a head row and string cells. Ragged
// rows are permitted; short rows simply get fewer cells.
func Table(head []string, rows [][]string, attrs templ.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := openTag(ctx, w, "table", attrs); err != nil {
			return err
		}
		if len(head) > 0 {
			if _, err := io.WriteString(w, "<thead><tr>"); err != nil {
				return err
			}
			for _, h := range head {
				if err := cell(w, "th", h); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</tr></thead>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<tbody>"); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := io.WriteString(w, "<tr>"); err != nil {
				return err
			}
			for _, c := range row {
				if err := cell(w, "td", c); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</tr>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tbody>"); err != nil {
			return err
		}
		return closeTag(w, "table")
	})
}

func cell(w io.Writer, tag, text string) error {
	if _, err := io.WriteString(w, "<"+tag+">"); err != nil {
		return err
	}
	if err := writeText(w, text); err != nil {
		return err
	}
	return closeTag(w, tag)
}
