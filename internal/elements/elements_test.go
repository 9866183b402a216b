package elements

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillforge/quill/internal/engine"
)

func renderComponent(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(ctx, &sb))
	return sb.String()
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Quick Sort", "quick-sort"},
		{"Amortized O(1) Analysis", "amortized-o-1-analysis"},
		{"  spaced  out  ", "spaced-out"},
		{"ALLCAPS", "allcaps"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "Slug(%q)", tt.in)
	}
}

func TestHeading_AnchorFromTitle(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	html := renderComponent(t, ctx, Heading(2, "Quick Sort", nil))

	assert.Contains(t, html, `<h2`)
	assert.Contains(t, html, `id="quick-sort"`)
	assert.Contains(t, html, `>Quick Sort</h2>`)

	a, ok := p.Anchor("quick-sort")
	require.True(t, ok)
	assert.Equal(t, "section", a.Kind)
	assert.Equal(t, "Quick Sort", a.Label)
	assert.Equal(t, 1, a.Number)
}

func TestHeading_ExplicitIDWins(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	html := renderComponent(t, ctx, Heading(1, "Intro", templ.Attributes{"id": "overview"}))

	assert.Contains(t, html, `id="overview"`)
	_, ok := p.Anchor("overview")
	assert.True(t, ok)
}

func TestHeading_DuplicateSlugIsWarned(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	renderComponent(t, ctx, Heading(2, "Setup", nil))
	renderComponent(t, ctx, Heading(2, "Setup", nil))

	assert.Equal(t, 1, p.Collector().Len())
	assert.False(t, p.Collector().HasErrors())
	a, _ := p.Anchor("setup")
	assert.Equal(t, 1, a.Number)
}

func TestHeading_SectionsNumberSequentially(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	renderComponent(t, ctx, Heading(2, "One", nil))
	renderComponent(t, ctx, Heading(2, "Two", nil))

	a, _ := p.Anchor("two")
	assert.Equal(t, 2, a.Number)
}

func TestHeading_LevelOutOfRange(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	err := Heading(7, "Deep", nil).Render(ctx, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestHeading_EscapesTitle(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	html := renderComponent(t, ctx, Heading(3, "a < b", nil))
	assert.Contains(t, html, "a &lt; b")
}

func TestWrappers(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	ctx = templ.WithChildren(ctx, text("hello"))

	assert.Equal(t, "<p>hello</p>", renderComponent(t, ctx, P(nil)))
	assert.Equal(t, "<em>hello</em>", renderComponent(t, ctx, Em(nil)))
	assert.Equal(t, "<strong>hello</strong>", renderComponent(t, ctx, Strong(nil)))
}

func TestSection_ScopesPassState(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	p.Set("k", "outer")

	probe := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p.Set("k", "inner")
		return nil
	})
	renderComponent(t, templ.WithChildren(ctx, probe), Section(nil))

	v, _ := p.Get("k")
	assert.Equal(t, "outer", v)
}

func TestTextSpans(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "<code>x &lt; 1</code>", renderComponent(t, ctx, CodeInline("x < 1")))
	assert.Equal(t, `<span class="mono">PATH</span>`, renderComponent(t, ctx, Mono("PATH")))
	assert.Equal(t, `<span class="caps">nasa</span>`, renderComponent(t, ctx, Caps("nasa")))
}

func TestLink_ChildrenAsText(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	ctx = templ.WithChildren(ctx, text("the paper"))
	html := renderComponent(t, ctx, Link("https://example.org/p", nil))

	assert.Contains(t, html, `href="https://example.org/p"`)
	assert.Contains(t, html, ">the paper</a>")
}

func TestLink_FallsBackToHref(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	html := renderComponent(t, ctx, Link("https://example.org", nil))
	assert.Contains(t, html, ">https://example.org</a>")
}

func TestLink_EmptyHref(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	err := Link("", nil).Render(ctx, io.Discard)
	assert.Error(t, err)
}

func TestImage(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	html := renderComponent(t, ctx, Image("fig.png", "a sorted array", nil))
	assert.Contains(t, html, `src="fig.png"`)
	assert.Contains(t, html, `alt="a sorted array"`)
	assert.True(t, strings.HasSuffix(html, "/>"))
}

func TestImage_MissingAltHaltsPass(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	err := Image("fig.png", "", nil).Render(ctx, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing alt text")
	assert.True(t, p.Collector().HasErrors())
}

func TestImage_EmptySrc(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	err := Image("", "alt", nil).Render(ctx, io.Discard)
	assert.Error(t, err)
}

func TestFigure_NumbersAndRegisters(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	ctx1 := templ.WithChildren(ctx, text("img"))
	html := renderComponent(t, ctx1, Figure("Heap layout", templ.Attributes{"id": "heap"}))

	assert.Contains(t, html, "<figure")
	assert.Contains(t, html, "Figure 1. Heap layout")

	ctx2 := templ.WithChildren(ctx, text("img"))
	html = renderComponent(t, ctx2, Figure("Tree rotation", nil))
	assert.Contains(t, html, "Figure 2. Tree rotation")

	a, ok := p.Anchor("heap")
	require.True(t, ok)
	assert.Equal(t, "figure", a.Kind)
	assert.Equal(t, 1, a.Number)
}

func TestBlockquote_Attribution(t *testing.T) {
	ctx, _ := engine.NewPass(context.Background())
	ctx = templ.WithChildren(ctx, text("Premature optimization"))
	html := renderComponent(t, ctx, Blockquote("Knuth", nil))

	assert.Contains(t, html, "<blockquote>")
	assert.Contains(t, html, `<footer class="attribution">Knuth</footer>`)
}

func TestLists(t *testing.T) {
	ctx := context.Background()
	html := renderComponent(t, ctx, UnorderedList(text("a"), text("b")))
	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>", html)

	html = renderComponent(t, ctx, OrderedList(text("one")))
	assert.Equal(t, "<ol><li>one</li></ol>", html)
}

func TestTable(t *testing.T) {
	ctx := context.Background()
	html := renderComponent(t, ctx, Table(
		[]string{"Name", "Cost"},
		[][]string{{"insert", "O(log n)"}, {"peek"}},
		nil,
	))

	assert.Contains(t, html, "<thead><tr><th>Name</th><th>Cost</th></tr></thead>")
	assert.Contains(t, html, "<td>insert</td><td>O(log n)</td>")
	assert.Contains(t, html, "<tr><td>peek</td></tr>")
}

func TestTable_NoHead(t *testing.T) {
	ctx := context.Background()
	html := renderComponent(t, ctx, Table(nil, [][]string{{"x"}}, nil))
	assert.NotContains(t, html, "<thead>")
	assert.Contains(t, html, "<td>x</td>")
}

func TestMergeClass(t *testing.T) {
	out := mergeClass(templ.Attributes{"class": "wide", "id": "t"}, "table")
	assert.Equal(t, "table wide", out["class"])
	assert.Equal(t, "t", out["id"])

	out = mergeClass(nil)
	_, ok := out["class"]
	assert.False(t, ok)
}

func TestXref_ResolvesAfterRender(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())

	tree := templ.Join(
		Xref("results"),
		// The heading registers its anchor after the reference renders.
		Heading(2, "Results", nil),
	)
	var sb strings.Builder
	require.NoError(t, engine.RenderDocument(ctx, tree, &sb))

	assert.Contains(t, sb.String(), `<a href="#results" class="xref">Results</a>`)
	assert.False(t, p.Collector().HasErrors())
}

func TestXref_LineAndFigureText(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	require.NoError(t, p.RegisterAnchor(engine.Anchor{ID: "loop", Kind: "line", Number: 7}))
	require.NoError(t, p.RegisterAnchor(engine.Anchor{ID: "heap", Kind: "figure", Number: 2}))

	var sb strings.Builder
	require.NoError(t, engine.RenderDocument(ctx, templ.Join(Xref("loop"), Xref("heap")), &sb))
	assert.Contains(t, sb.String(), ">line 7</a>")
	assert.Contains(t, sb.String(), ">figure 2</a>")
}

func TestXref_UnknownTarget(t *testing.T) {
	ctx, p := engine.NewPass(context.Background())
	var sb strings.Builder
	err := engine.RenderDocument(ctx, Xref("nowhere"), &sb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown cross reference "nowhere"`)
	assert.True(t, p.Collector().HasErrors())
}
