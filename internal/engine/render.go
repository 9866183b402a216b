package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/quillforge/quill/internal/errors"
)

// Failf halts the current render with a positioned diagnostic. The
// diagnostic is recorded on the pass collector (when a pass is active) and
// returned so the component can propagate it up through Render.
func Failf(ctx context.Context, macro, format string, args ...any) error {
	d := errors.Newf(macro, format, args...)
	if p := FromContext(ctx); p != nil {
		d.Doc = p.doc
		p.collector.Add(*d)
	}
	return d
}

// Hook wraps inner with pre/post lifecycle callbacks and a nested scope.
// pre runs before inner renders; post runs after, even when inner fails,
// so cleanup hooks always observe the subtree's end.
func Hook(pre, post func(ctx context.Context) error, inner templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := FromContext(ctx)
		if p != nil {
			p.PushScope()
			defer func() {
				_ = p.PopScope()
			}()
		}
		if pre != nil {
			if err := pre(ctx); err != nil {
				return err
			}
		}
		renderErr := inner.Render(ctx, w)
		if post != nil {
			if err := post(ctx); err != nil && renderErr == nil {
				renderErr = err
			}
		}
		return renderErr
	})
}

type deferredEntry struct {
	id      int
	macro   string
	resolve func(p *Pass) (string, error)
}

// deferOpen/deferClose bracket a deferred-fragment marker in the first-pass
// output. HTML comments survive any element context the macros emit into.
const (
	deferOpen  = "<!--quill:defer:"
	deferClose = "-->"
)

func deferMarker(id int) string {
	return fmt.Sprintf("%s%d%s", deferOpen, id, deferClose)
}

// Deferred returns a component whose content is computed by resolve after
// the whole tree has rendered, when pass state (citation numbers, anchors)
// is complete. During the first pass it emits a placeholder marker that
// RenderDocument substitutes. The resolved string is written verbatim, so
// resolvers escape their own dynamic text.
func Deferred(macro string, resolve func(p *Pass) (string, error)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := FromContext(ctx)
		if p == nil {
			return errors.Newf(macro, "deferred fragment rendered outside a pass")
		}
		id := p.nextDefer
		p.nextDefer++
		p.deferred = append(p.deferred, deferredEntry{id: id, macro: macro, resolve: resolve})
		_, err := io.WriteString(w, deferMarker(id))
		return err
	})
}

// RenderDocument renders c under the pass carried by ctx (creating one if
// absent), resolves all deferred fragments, and writes the final HTML to w.
// The first failure, whether during the tree render or while resolving,
// halts the render; every diagnostic raised along the way stays on the
// collector.
func RenderDocument(ctx context.Context, c templ.Component, w io.Writer) error {
	p := FromContext(ctx)
	if p == nil {
		ctx, p = NewPass(ctx)
	}

	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		p.collector.AddError(err)
		return err
	}

	html := buf.String()
	var firstErr error
	for _, entry := range p.deferred {
		fragment, err := entry.resolve(p)
		if err != nil {
			if d, ok := err.(*errors.Diag); ok && d.Doc == "" {
				d.Doc = p.doc
			}
			p.collector.AddError(err)
			if firstErr == nil {
				firstErr = err
			}
			fragment = fmt.Sprintf(`<span class="quill-diag">%s</span>`, templ.EscapeString(err.Error()))
		}
		html = strings.Replace(html, deferMarker(entry.id), fragment, 1)
	}
	// Resolution is one-shot: a second RenderDocument on the same pass would
	// otherwise re-run resolvers against stale markers.
	p.deferred = nil

	if firstErr != nil {
		return firstErr
	}
	_, err := io.WriteString(w, html)
	return err
}
