// Package engine adapts the templ rendering runtime for quill's
// document-authoring macros. The runtime already provides composition and
// HTML escaping; this package layers on the services the macros share:
//
//   - a Pass: mutable state scoped to a single rendering pass, carried in
//     the context (scoped key/value store, anchor table, diagnostics),
//   - lifecycle hooks that run before and after a subtree renders,
//   - deferred fragments whose content is computed after the whole tree has
//     rendered (citation markers, cross references),
//   - halting a render with a positioned diagnostic.
//
// A Pass is never shared between concurrent renders; the preview server
// creates a fresh one per request.
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/quillforge/quill/internal/errors"
)

type passKey struct{}

// Pass is the mutable state for one rendering pass over a document tree.
type Pass struct {
	// ID uniquely identifies the pass, primarily for logging.
	ID string

	doc         string
	scopes      []map[string]any
	anchors     map[string]Anchor
	anchorOrder []string
	deferred    []deferredEntry
	nextDefer   int
	collector   *errors.Collector
}

// Anchor is a referenceable location registered during a pass: a heading,
// a figure, or a labeled pseudocode line.
type Anchor struct {
	// ID is the fragment identifier used in hrefs.
	ID string
	// Kind describes what the anchor points at ("section", "figure", "line").
	Kind string
	// Label is the human-readable text a cross reference falls back to.
	Label string
	// Number is the kind-relative ordinal (section number, line number).
	Number int
}

// Option configures a new pass.
type Option func(*Pass)

// WithDocument records the document path used in diagnostics.
func WithDocument(path string) Option {
	return func(p *Pass) { p.doc = path }
}

// WithCollector attaches an existing diagnostic collector, letting callers
// aggregate diagnostics across several passes.
func WithCollector(c *errors.Collector) Option {
	return func(p *Pass) { p.collector = c }
}

// NewPass creates a pass and returns a context carrying it. The returned
// context must be used for the whole render.
func NewPass(ctx context.Context, opts ...Option) (context.Context, *Pass) {
	p := &Pass{
		ID:      uuid.NewString(),
		scopes:  []map[string]any{make(map[string]any)},
		anchors: make(map[string]Anchor),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.collector == nil {
		p.collector = errors.NewCollector()
	}
	return context.WithValue(ctx, passKey{}, p), p
}

// FromContext returns the pass carried by ctx, or nil when rendering
// outside a pass (as unit tests of individual components do).
func FromContext(ctx context.Context) *Pass {
	p, _ := ctx.Value(passKey{}).(*Pass)
	return p
}

// Document returns the document path the pass renders, if known.
func (p *Pass) Document() string { return p.doc }

// Collector returns the diagnostic collector for this pass.
func (p *Pass) Collector() *errors.Collector { return p.collector }

// PushScope opens a nested key/value scope. Hook pairs every push with a
// pop, so macros normally never call this directly.
func (p *Pass) PushScope() {
	p.scopes = append(p.scopes, make(map[string]any))
}

// PopScope closes the innermost scope. Popping the root scope is a
// programming error and is reported as such.
func (p *Pass) PopScope() error {
	if len(p.scopes) <= 1 {
		return errors.Newf("engine", "scope underflow: pop without matching push")
	}
	p.scopes = p.scopes[:len(p.scopes)-1]
	return nil
}

// Depth returns the current scope nesting depth; the root scope is depth 1.
func (p *Pass) Depth() int { return len(p.scopes) }

// Set binds key in the innermost scope, shadowing outer bindings until the
// scope closes.
func (p *Pass) Set(key string, v any) {
	p.scopes[len(p.scopes)-1][key] = v
}

// SetRoot binds key in the root scope so the binding survives subtree
// scopes. Pass-wide state such as the citation scope lives here.
func (p *Pass) SetRoot(key string, v any) {
	p.scopes[0][key] = v
}

// Get looks key up from the innermost scope outward.
func (p *Pass) Get(key string) (any, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, ok := p.scopes[i][key]; ok {
			return v, true
		}
	}
	return nil, false
}

// RegisterAnchor records a referenceable location. Duplicate IDs are a
// diagnostic: silently keeping either side would make cross references
// ambiguous.
func (p *Pass) RegisterAnchor(a Anchor) error {
	if a.ID == "" {
		return errors.Newf("engine", "anchor with empty id (kind %q)", a.Kind)
	}
	if prev, ok := p.anchors[a.ID]; ok {
		return errors.Newf("engine", "duplicate anchor %q (%s and %s)", a.ID, prev.Kind, a.Kind)
	}
	p.anchors[a.ID] = a
	p.anchorOrder = append(p.anchorOrder, a.ID)
	return nil
}

// Anchor returns a registered anchor by ID.
func (p *Pass) Anchor(id string) (Anchor, bool) {
	a, ok := p.anchors[id]
	return a, ok
}

// Anchors returns all registered anchors in registration order.
func (p *Pass) Anchors() []Anchor {
	out := make([]Anchor, 0, len(p.anchorOrder))
	for _, id := range p.anchorOrder {
		out = append(out, p.anchors[id])
	}
	return out
}

// Warnf records a non-fatal diagnostic and lets the render continue.
func (p *Pass) Warnf(macro, format string, args ...any) {
	d := errors.Warnf(macro, format, args...)
	d.Doc = p.doc
	p.collector.Add(*d)
}
