package registry

import (
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillforge/quill/internal/types"
)

func nopCtor(n types.Node, children []templ.Component) (templ.Component, error) {
	return templ.NopComponent, nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(types.MacroInfo{Name: "p", Kind: types.KindBlock}, nopCtor))

	ctor, ok := r.Lookup("p")
	require.True(t, ok)
	assert.NotNil(t, ctor)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r := New()
	assert.Error(t, r.Register(types.MacroInfo{}, nopCtor))
	assert.Error(t, r.Register(types.MacroInfo{Name: "p"}, nil))

	require.NoError(t, r.Register(types.MacroInfo{Name: "p"}, nopCtor))
	err := r.Register(types.MacroInfo{Name: "p"}, nopCtor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Info(t *testing.T) {
	r := New()
	info := types.MacroInfo{Name: "cite", Kind: types.KindCitation, Summary: "inline citation"}
	require.NoError(t, r.Register(info, nopCtor))

	got, ok := r.Info("cite")
	require.True(t, ok)
	assert.Equal(t, info, got)

	_, ok = r.Info("missing")
	assert.False(t, ok)
}

func TestRegistry_ListSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"xref", "cite", "heading"} {
		require.NoError(t, r.Register(types.MacroInfo{Name: name}, nopCtor))
	}
	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "cite", list[0].Name)
	assert.Equal(t, "heading", list[1].Name)
	assert.Equal(t, "xref", list[2].Name)
}
