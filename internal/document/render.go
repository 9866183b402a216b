package document

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"github.com/quillforge/quill/internal/bib"
	"github.com/quillforge/quill/internal/engine"
	"github.com/quillforge/quill/internal/errors"
	"github.com/quillforge/quill/internal/markdown"
	"github.com/quillforge/quill/internal/registry"
)

// RenderOptions carries configuration-level rendering choices; document
// metadata overrides them where both speak.
type RenderOptions struct {
	// Collector receives every diagnostic the pass raises. Optional.
	Collector *errors.Collector
	// CiteStyle is the default citation style ("numeric", "author-year").
	CiteStyle string
	// SortRefsByAuthor orders the reference list by collated author names.
	SortRefsByAuthor bool
	// Lang is the collation language for sorted references (BCP 47);
	// empty falls back to the document language, then English.
	Lang string
	// Stylesheet overrides the default embedded stylesheet.
	Stylesheet string
	// Bibliography names database files added to the document's own.
	Bibliography []string
}

// Render expands the document against the registry and renders the
// complete HTML page to w under a fresh rendering pass.
func (d *Document) Render(ctx context.Context, reg *registry.Registry, w io.Writer, opts RenderOptions) error {
	ctx, pass := engine.NewPass(ctx,
		engine.WithDocument(d.Path),
		engine.WithCollector(collectorOrNew(opts.Collector)),
	)

	scope, err := d.citationScope(opts)
	if err != nil {
		pass.Collector().AddError(err)
		return err
	}
	bib.Install(pass, scope)

	body, err := d.bodyComponent(reg)
	if err != nil {
		pass.Collector().AddError(err)
		return err
	}

	if d.autoBibliography() {
		body = templ.Join(body, autoBibliography())
	}

	stylesheet := d.Meta.Stylesheet
	if stylesheet == "" {
		stylesheet = opts.Stylesheet
	}
	page := Page(d.Meta, body, stylesheet)
	return engine.RenderDocument(ctx, page, w)
}

func collectorOrNew(c *errors.Collector) *errors.Collector {
	if c == nil {
		return errors.NewCollector()
	}
	return c
}

func (d *Document) bodyComponent(reg *registry.Registry) (templ.Component, error) {
	if len(d.Body) > 0 {
		return Expand(reg, d.Body)
	}
	return markdown.Component(d.Markdown), nil
}

func (d *Document) autoBibliography() bool {
	if d.Meta.AutoBibliography != nil {
		return *d.Meta.AutoBibliography
	}
	return true
}

// autoBibliography appends the reference list only when the document cited
// something and did not already place one explicitly.
func autoBibliography() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := engine.FromContext(ctx)
		if p == nil || bib.Placed(p) {
			return nil
		}
		return bib.Bibliography().Render(ctx, w)
	})
}

func (d *Document) citationScope(opts RenderOptions) (*bib.Scope, error) {
	paths := append([]string{}, d.Meta.Bibliography...)
	paths = append(paths, opts.Bibliography...)
	db, err := bib.LoadFiles(d.Dir(), paths)
	if err != nil {
		return nil, err
	}

	styleName := d.Meta.CiteStyle
	if styleName == "" {
		styleName = opts.CiteStyle
	}
	style, err := bib.ParseStyle(styleName)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", d.Path, err)
	}

	scopeOpts := []bib.ScopeOption{bib.WithStyle(style)}
	if opts.SortRefsByAuthor {
		scopeOpts = append(scopeOpts, bib.SortByAuthor(collationTag(opts.Lang, d.Meta.Lang)))
	}
	return bib.NewScope(db, scopeOpts...), nil
}

func collationTag(configured, document string) language.Tag {
	for _, candidate := range []string{configured, document} {
		if candidate == "" {
			continue
		}
		if tag, err := language.Parse(candidate); err == nil {
			return tag
		}
	}
	return language.English
}
