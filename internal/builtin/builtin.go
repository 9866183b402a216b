// Package builtin registers the built-in document-authoring macros:
// the HTML element wrappers, the pseudocode and code-listing renderers,
// the structured-code rainbow delimiters, and the citation macros.
package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/quillforge/quill/internal/bib"
	"github.com/quillforge/quill/internal/delim"
	"github.com/quillforge/quill/internal/elements"
	"github.com/quillforge/quill/internal/markdown"
	"github.com/quillforge/quill/internal/pseudocode"
	"github.com/quillforge/quill/internal/registry"
	"github.com/quillforge/quill/internal/types"
)

// Registry returns a fresh registry with every built-in macro registered.
func Registry() (*registry.Registry, error) {
	r := registry.New()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds all built-in macros to r.
func Register(r *registry.Registry) error {
	for _, m := range builtins {
		if err := r.Register(m.info, m.ctor); err != nil {
			return err
		}
	}
	return nil
}

type macro struct {
	info types.MacroInfo
	ctor types.Constructor
}

var builtins = []macro{
	{
		info: types.MacroInfo{
			Name: "heading", Kind: types.KindBlock,
			Summary: "Section heading with an anchor derived from the title",
			Attrs: []types.AttrInfo{
				{Name: "title", Type: "string", Required: true, Description: "heading text"},
				{Name: "level", Type: "int", Description: "heading level 1..6 (default 2)"},
				{Name: "id", Type: "string", Description: "explicit anchor id"},
			},
		},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			title, ok := n.StringAttr("title")
			if !ok {
				title = n.Text
			}
			if title == "" {
				return nil, fmt.Errorf("heading requires a title")
			}
			level := 2
			if l, ok := n.IntAttr("level"); ok {
				level = l
			}
			return elements.Heading(level, title, htmlAttrs(n, "title", "level")), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "p", Kind: types.KindBlock,
			Summary: "Paragraph",
		},
		ctor: wrapCtor(func(attrs templ.Attributes) templ.Component { return elements.P(attrs) }),
	},
	{
		info: types.MacroInfo{Name: "em", Kind: types.KindInline, Summary: "Emphasis"},
		ctor: wrapCtor(func(attrs templ.Attributes) templ.Component { return elements.Em(attrs) }),
	},
	{
		info: types.MacroInfo{Name: "strong", Kind: types.KindInline, Summary: "Strong emphasis"},
		ctor: wrapCtor(func(attrs templ.Attributes) templ.Component { return elements.Strong(attrs) }),
	},
	{
		info: types.MacroInfo{Name: "section", Kind: types.KindBlock, Summary: "Section grouping with a nested state scope"},
		ctor: wrapCtor(func(attrs templ.Attributes) templ.Component { return elements.Section(attrs) }),
	},
	{
		info: types.MacroInfo{
			Name: "quote", Kind: types.KindBlock,
			Summary: "Block quotation",
			Attrs:   []types.AttrInfo{{Name: "by", Type: "string", Description: "attribution line"}},
		},
		ctor: func(n types.Node, children []templ.Component) (templ.Component, error) {
			by, _ := n.StringAttr("by")
			return withChildren(elements.Blockquote(by, htmlAttrs(n, "by")), children), nil
		},
	},
	{
		info: types.MacroInfo{Name: "code", Kind: types.KindInline, Summary: "Inline code"},
		ctor: textCtor(elements.CodeInline),
	},
	{
		info: types.MacroInfo{Name: "mono", Kind: types.KindInline, Summary: "Monospace text"},
		ctor: textCtor(elements.Mono),
	},
	{
		info: types.MacroInfo{Name: "caps", Kind: types.KindInline, Summary: "Small-caps text"},
		ctor: textCtor(elements.Caps),
	},
	{
		info: types.MacroInfo{
			Name: "link", Kind: types.KindInline,
			Summary: "Hyperlink; with no content the href doubles as text",
			Attrs:   []types.AttrInfo{{Name: "href", Type: "string", Required: true, Description: "link target"}},
		},
		ctor: func(n types.Node, children []templ.Component) (templ.Component, error) {
			href, ok := n.StringAttr("href")
			if !ok {
				return nil, fmt.Errorf("link requires an href")
			}
			return withChildren(elements.Link(href, htmlAttrs(n, "href")), children), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "image", Kind: types.KindBlock,
			Summary: "Image; alt text is mandatory",
			Attrs: []types.AttrInfo{
				{Name: "src", Type: "string", Required: true, Description: "image source"},
				{Name: "alt", Type: "string", Required: true, Description: "alternative text"},
			},
		},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			src, _ := n.StringAttr("src")
			alt, _ := n.StringAttr("alt")
			return elements.Image(src, alt, htmlAttrs(n, "src", "alt")), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "figure", Kind: types.KindBlock,
			Summary: "Numbered figure with caption",
			Attrs: []types.AttrInfo{
				{Name: "caption", Type: "string", Description: "figure caption"},
				{Name: "id", Type: "string", Description: "cross-reference id"},
			},
		},
		ctor: func(n types.Node, children []templ.Component) (templ.Component, error) {
			caption, _ := n.StringAttr("caption")
			return withChildren(elements.Figure(caption, htmlAttrs(n, "caption")), children), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "list", Kind: types.KindBlock,
			Summary: "Ordered or unordered list of its children",
			Attrs:   []types.AttrInfo{{Name: "ordered", Type: "bool", Description: "numbered list"}},
		},
		ctor: listCtor,
	},
	{
		info: types.MacroInfo{
			Name: "table", Kind: types.KindBlock,
			Summary: "Table from head and rows attributes",
			Attrs: []types.AttrInfo{
				{Name: "head", Type: "list", Description: "header cells"},
				{Name: "rows", Type: "list", Required: true, Description: "list of cell lists"},
			},
		},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			rows, err := rowsAttr(n, "rows")
			if err != nil {
				return nil, err
			}
			return elements.Table(n.StringsAttr("head"), rows, htmlAttrs(n, "head", "rows")), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "xref", Kind: types.KindInline,
			Summary: "Cross reference to a heading, figure, or labeled line",
			Attrs:   []types.AttrInfo{{Name: "target", Type: "string", Required: true, Description: "anchor id"}},
		},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			target, ok := n.StringAttr("target")
			if !ok || target == "" {
				return nil, fmt.Errorf("xref requires a target")
			}
			return elements.Xref(target), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "pseudocode", Kind: types.KindCode,
			Summary: "Pseudocode listing with line numbers and highlights",
			Attrs: []types.AttrInfo{
				{Name: "title", Type: "string", Description: "listing caption"},
				{Name: "start", Type: "int", Description: "first line number"},
			},
		},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			block, err := pseudocode.ParseBlock(n.Text)
			if err != nil {
				return nil, err
			}
			block.Title, _ = n.StringAttr("title")
			if s, ok := n.IntAttr("start"); ok {
				block.StartAt = s
			}
			return pseudocode.Pseudocode(block), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "listing", Kind: types.KindCode,
			Summary: "Source listing tokenized by language",
			Attrs: []types.AttrInfo{
				{Name: "lang", Type: "string", Required: true, Description: "source language"},
				{Name: "title", Type: "string", Description: "listing caption"},
				{Name: "start", Type: "int", Description: "first line number"},
				{Name: "highlight", Type: "list", Description: "line numbers to highlight"},
			},
		},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			lang, ok := n.StringAttr("lang")
			if !ok {
				return nil, fmt.Errorf("listing requires a lang")
			}
			opts := []pseudocode.CodeOption{}
			if title, ok := n.StringAttr("title"); ok {
				opts = append(opts, pseudocode.WithTitle(title))
			}
			if s, ok := n.IntAttr("start"); ok {
				opts = append(opts, pseudocode.WithStart(s))
			}
			if hl, err := intsAttr(n, "highlight"); err != nil {
				return nil, err
			} else if len(hl) > 0 {
				opts = append(opts, pseudocode.WithHighlightLines(hl...))
			}
			return pseudocode.Code(lang, n.Text, opts...), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "structured", Kind: types.KindCode,
			Summary: "Structured code with rainbow delimiters",
			Attrs:   []types.AttrInfo{{Name: "reindent", Type: "bool", Description: "re-indent by nesting depth"}},
		},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			return delim.Form(n.Text, n.BoolAttr("reindent", false)), nil
		},
	},
	{
		info: types.MacroInfo{Name: "structured-inline", Kind: types.KindInline, Summary: "Inline structured code with rainbow delimiters"},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			return delim.Inline(n.Text), nil
		},
	},
	{
		info: types.MacroInfo{
			Name: "cite", Kind: types.KindCitation,
			Summary: "Citation marker resolved against the bibliography scope",
			Attrs:   []types.AttrInfo{{Name: "keys", Type: "list", Required: true, Description: "citation keys"}},
		},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			keys := n.StringsAttr("keys")
			if len(keys) == 0 {
				return nil, fmt.Errorf("cite requires keys")
			}
			return bib.Cite(keys...), nil
		},
	},
	{
		info: types.MacroInfo{Name: "bibliography", Kind: types.KindCitation, Summary: "Reference list for everything cited"},
		ctor: func(types.Node, []templ.Component) (templ.Component, error) {
			return bib.Bibliography(), nil
		},
	},
	{
		info: types.MacroInfo{Name: "markdown", Kind: types.KindBlock, Summary: "Markdown prose rendered through the macro layer"},
		ctor: func(n types.Node, _ []templ.Component) (templ.Component, error) {
			return markdown.Component([]byte(n.Text)), nil
		},
	},
}

// listCtor keeps the expanded children separate so every child becomes its
// own <li>.
func listCtor(n types.Node, children []templ.Component) (templ.Component, error) {
	if n.BoolAttr("ordered", false) {
		return elements.OrderedList(children...), nil
	}
	return elements.UnorderedList(children...), nil
}

// withChildren attaches expanded children to a children-consuming wrapper.
func withChildren(comp templ.Component, children []templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(children) > 0 {
			ctx = templ.WithChildren(ctx, templ.Join(children...))
		}
		return comp.Render(ctx, w)
	})
}

// wrapCtor builds a constructor for plain children-wrapping elements.
func wrapCtor(build func(templ.Attributes) templ.Component) types.Constructor {
	return func(n types.Node, children []templ.Component) (templ.Component, error) {
		return withChildren(build(htmlAttrs(n)), children), nil
	}
}

// textCtor builds a constructor for macros that consume their node text.
func textCtor(build func(string) templ.Component) types.Constructor {
	return func(n types.Node, _ []templ.Component) (templ.Component, error) {
		return build(n.Text), nil
	}
}

// htmlAttrs converts node attributes into templ attributes, dropping the
// keys the macro itself consumed.
func htmlAttrs(n types.Node, consumed ...string) templ.Attributes {
	skip := make(map[string]bool, len(consumed))
	for _, c := range consumed {
		skip[c] = true
	}
	attrs := make(templ.Attributes)
	for k, v := range n.Attrs {
		if skip[k] {
			continue
		}
		switch val := v.(type) {
		case string:
			attrs[k] = val
		case bool:
			attrs[k] = val
		case int:
			attrs[k] = fmt.Sprintf("%d", val)
		}
	}
	return attrs
}

func rowsAttr(n types.Node, name string) ([][]string, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return nil, fmt.Errorf("table requires %s", name)
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list of lists", name)
	}
	rows := make([][]string, 0, len(raw))
	for _, rv := range raw {
		cells, ok := rv.([]any)
		if !ok {
			return nil, fmt.Errorf("%s must be a list of lists", name)
		}
		row := make([]string, 0, len(cells))
		for _, cv := range cells {
			row = append(row, fmt.Sprintf("%v", cv))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func intsAttr(n types.Node, name string) ([]int, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		if single, ok := v.(int); ok {
			return []int{single}, nil
		}
		return nil, fmt.Errorf("%s must be a list of line numbers", name)
	}
	out := make([]int, 0, len(raw))
	for _, e := range raw {
		i, ok := e.(int)
		if !ok {
			return nil, fmt.Errorf("%s must be a list of line numbers", name)
		}
		out = append(out, i)
	}
	return out, nil
}
