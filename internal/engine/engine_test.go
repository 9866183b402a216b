package engine

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillforge/quill/internal/errors"
)

func TestNewPass(t *testing.T) {
	ctx, p := NewPass(context.Background())

	require.NotNil(t, p)
	assert.NotEmpty(t, p.ID)
	assert.Same(t, p, FromContext(ctx))
	assert.Equal(t, 1, p.Depth())
}

func TestFromContext_NoPass(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestPass_ScopeShadowing(t *testing.T) {
	_, p := NewPass(context.Background())

	p.Set("style", "numeric")
	p.PushScope()
	p.Set("style", "author-year")

	v, ok := p.Get("style")
	require.True(t, ok)
	assert.Equal(t, "author-year", v)

	require.NoError(t, p.PopScope())
	v, ok = p.Get("style")
	require.True(t, ok)
	assert.Equal(t, "numeric", v)
}

func TestPass_PopScopeUnderflow(t *testing.T) {
	_, p := NewPass(context.Background())
	err := p.PopScope()
	assert.Error(t, err)
}

func TestPass_SetRootVisibleFromInnerScope(t *testing.T) {
	_, p := NewPass(context.Background())
	p.PushScope()
	p.SetRoot("bib", "scope")
	require.NoError(t, p.PopScope())

	v, ok := p.Get("bib")
	require.True(t, ok)
	assert.Equal(t, "scope", v)
}

func TestPass_RegisterAnchor(t *testing.T) {
	_, p := NewPass(context.Background())

	require.NoError(t, p.RegisterAnchor(Anchor{ID: "intro", Kind: "section", Label: "Introduction", Number: 1}))

	a, ok := p.Anchor("intro")
	require.True(t, ok)
	assert.Equal(t, "Introduction", a.Label)

	err := p.RegisterAnchor(Anchor{ID: "intro", Kind: "figure"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate anchor")

	err = p.RegisterAnchor(Anchor{Kind: "section"})
	assert.Error(t, err)
}

func TestFailf_RecordsDiagnostic(t *testing.T) {
	ctx, p := NewPass(context.Background(), WithDocument("paper.md"))

	err := Failf(ctx, "image", "missing alt text for %q", "fig.png")
	require.Error(t, err)

	d, ok := err.(*errors.Diag)
	require.True(t, ok)
	assert.Equal(t, "image", d.Macro)
	assert.Equal(t, "paper.md", d.Doc)
	assert.Equal(t, 1, p.Collector().Len())
	assert.True(t, p.Collector().HasErrors())
}

func TestHook_PrePostOrdering(t *testing.T) {
	ctx, _ := NewPass(context.Background())
	var order []string

	inner := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		order = append(order, "render")
		_, err := io.WriteString(w, "body")
		return err
	})
	comp := Hook(
		func(context.Context) error { order = append(order, "pre"); return nil },
		func(context.Context) error { order = append(order, "post"); return nil },
		inner,
	)

	var sb strings.Builder
	require.NoError(t, comp.Render(ctx, &sb))
	assert.Equal(t, []string{"pre", "render", "post"}, order)
	assert.Equal(t, "body", sb.String())
}

func TestHook_PostRunsOnRenderFailure(t *testing.T) {
	ctx, _ := NewPass(context.Background())
	postRan := false

	inner := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return errors.Newf("boom", "render failed")
	})
	comp := Hook(nil, func(context.Context) error { postRan = true; return nil }, inner)

	err := comp.Render(ctx, io.Discard)
	assert.Error(t, err)
	assert.True(t, postRan)
}

func TestHook_BalancesScopes(t *testing.T) {
	ctx, p := NewPass(context.Background())
	inner := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		assert.Equal(t, 2, p.Depth())
		return nil
	})
	require.NoError(t, Hook(nil, nil, inner).Render(ctx, io.Discard))
	assert.Equal(t, 1, p.Depth())
}

func TestDeferred_ResolvesAfterPass(t *testing.T) {
	ctx, p := NewPass(context.Background())

	// The fragment depends on state bound after the deferred component
	// renders, as citation numbers do.
	tree := templ.Join(
		Deferred("marker", func(p *Pass) (string, error) {
			v, _ := p.Get("n")
			return v.(string), nil
		}),
		templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			p.SetRoot("n", "[42]")
			_, err := io.WriteString(w, " text")
			return err
		}),
	)

	var sb strings.Builder
	require.NoError(t, RenderDocument(ctx, tree, &sb))
	assert.Equal(t, "[42] text", sb.String())
}

func TestDeferred_OutsidePassFails(t *testing.T) {
	comp := Deferred("marker", func(*Pass) (string, error) { return "", nil })
	err := comp.Render(context.Background(), io.Discard)
	assert.Error(t, err)
}

func TestRenderDocument_ResolveFailure(t *testing.T) {
	ctx, p := NewPass(context.Background())
	tree := Deferred("xref", func(*Pass) (string, error) {
		return "", errors.Newf("xref", "unknown cross reference %q", "nowhere")
	})

	var sb strings.Builder
	err := RenderDocument(ctx, tree, &sb)
	require.Error(t, err)
	assert.True(t, p.Collector().HasErrors())
	assert.Empty(t, sb.String())
}

func TestRenderDocument_CreatesPassWhenAbsent(t *testing.T) {
	comp := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		require.NotNil(t, FromContext(ctx))
		_, err := io.WriteString(w, "ok")
		return err
	})
	var sb strings.Builder
	require.NoError(t, RenderDocument(context.Background(), comp, &sb))
	assert.Equal(t, "ok", sb.String())
}
