package document

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/quillforge/quill/internal/registry"
	"github.com/quillforge/quill/internal/types"
)

// Expand resolves a node tree against the registry, bottom-up: children
// first, then the node's own macro constructor.
func Expand(reg *registry.Registry, nodes []types.Node) (templ.Component, error) {
	comps, err := expandAll(reg, nodes)
	if err != nil {
		return nil, err
	}
	return templ.Join(comps...), nil
}

func expandAll(reg *registry.Registry, nodes []types.Node) ([]templ.Component, error) {
	comps := make([]templ.Component, 0, len(nodes))
	for _, n := range nodes {
		c, err := expandNode(reg, n)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, nil
}

func expandNode(reg *registry.Registry, n types.Node) (templ.Component, error) {
	ctor, ok := reg.Lookup(n.Macro)
	if !ok {
		return nil, fmt.Errorf("%s: unknown macro %q", n.Path, n.Macro)
	}

	children, err := expandAll(reg, n.Children)
	if err != nil {
		return nil, err
	}
	// A text leaf with a children-consuming macro: the text becomes the
	// sole child, escaped.
	if len(children) == 0 && n.Text != "" && !consumesText(n.Macro) {
		children = []templ.Component{textComponent(n.Text)}
	}

	comp, err := ctor(n, children)
	if err != nil {
		return nil, fmt.Errorf("%s: macro %q: %w", n.Path, n.Macro, err)
	}
	return comp, nil
}

// consumesText lists macros whose constructor reads Node.Text itself, so
// expansion must not also turn the text into a child.
func consumesText(macro string) bool {
	switch macro {
	case "code", "mono", "caps", "pseudocode", "listing",
		"structured", "structured-inline", "markdown", "heading":
		return true
	}
	return false
}

func textComponent(text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(text))
		return err
	})
}
