// Package markdown bridges markdown prose into the macro layer. Fenced code
// blocks render through the pseudocode and structured-code macros instead
// of goldmark's stock <pre><code>, and [@key] citations become deferred
// markers on the current pass.
//
// goldmark node renderers do not receive a context, so the bridge threads
// the rendering pass context through the renderer instance; a fresh
// goldmark.Markdown is built per conversion.
package markdown

import (
	"bytes"
	"context"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/a-h/templ"
	"github.com/quillforge/quill/internal/delim"
	"github.com/quillforge/quill/internal/engine"
	"github.com/quillforge/quill/internal/pseudocode"
)

// Convert renders markdown to HTML inside the rendering pass carried by
// ctx.
func Convert(ctx context.Context, src []byte, w io.Writer) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, &macroExtension{ctx: ctx}),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	return md.Convert(src, w)
}

// Component wraps a markdown body as a templ component.
func Component(src []byte) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Convert(ctx, src, w)
	})
}

type macroExtension struct {
	ctx context.Context
}

func (e *macroExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&citeParser{}, 150),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&macroRenderer{ctx: e.ctx}, 100),
	))
}

// macroRenderer overrides fenced code blocks and renders citation nodes.
type macroRenderer struct {
	ctx context.Context
}

func (r *macroRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFence)
	reg.Register(KindCitation, r.renderCitation)
}

// structuredLangs route through the rainbow delimiter renderer.
var structuredLangs = map[string]bool{
	"scheme": true, "lisp": true, "racket": true, "clojure": true,
}

func (r *macroRenderer) renderFence(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var src bytes.Buffer
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		src.Write(seg.Value(source))
	}

	lang, flags := fenceInfo(n, source)
	comp, err := componentForFence(lang, flags, src.String())
	if err != nil {
		return ast.WalkStop, err
	}
	if err := comp.Render(r.ctx, w); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkContinue, nil
}

// fenceInfo splits the fence info string into the language word and flags.
func fenceInfo(n *ast.FencedCodeBlock, source []byte) (string, map[string]bool) {
	flags := make(map[string]bool)
	if n.Info == nil {
		return "", flags
	}
	words := bytes.Fields(n.Info.Segment.Value(source))
	if len(words) == 0 {
		return "", flags
	}
	for _, f := range words[1:] {
		flags[string(f)] = true
	}
	return string(words[0]), flags
}

func componentForFence(lang string, flags map[string]bool, src string) (templ.Component, error) {
	switch {
	case lang == "pseudocode":
		block, err := pseudocode.ParseBlock(src)
		if err != nil {
			return nil, err
		}
		return pseudocode.Pseudocode(block), nil
	case structuredLangs[lang]:
		return delim.Form(src, flags["reindent"]), nil
	default:
		return pseudocode.Code(lang, src), nil
	}
}

func (r *macroRenderer) renderCitation(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Citation)
	comp := citeComponent(r.ctx, n.Keys)
	if err := comp.Render(r.ctx, w); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkContinue, nil
}

// citeComponent is indirected for tests that render markdown outside a
// bibliography scope.
func citeComponent(ctx context.Context, keys []string) templ.Component {
	if engine.FromContext(ctx) == nil {
		// Outside a pass the marker renders inert as plain text.
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, templ.EscapeString("[@"+joinKeys(keys)+"]"))
			return err
		})
	}
	return citeMacro(keys...)
}

func joinKeys(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "; @"
		}
		out += k
	}
	return out
}
