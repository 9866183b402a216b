// Package types provides common type definitions shared by the macro
// registry, the document loader, and the command layer. Keeping them here
// avoids circular dependencies between those packages.
package types

import "github.com/a-h/templ"

// Node is one element of a document body tree. A node names the macro that
// renders it, carries its attributes, optional literal text, and children.
type Node struct {
	// Macro is the registered macro name (e.g. "heading", "pseudocode").
	Macro string `yaml:"macro"`
	// Attrs holds macro attributes as parsed from the document.
	Attrs map[string]any `yaml:"attrs"`
	// Text is literal content for leaf macros (paragraph prose, code source).
	Text string `yaml:"text"`
	// Children are nested nodes, expanded before this node renders.
	Children []Node `yaml:"children"`
	// Path locates the node in the document for diagnostics (e.g. "body[2].children[0]").
	Path string `yaml:"-"`
}

// StringAttr returns a string attribute, with ok reporting presence.
func (n Node) StringAttr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntAttr returns an integer attribute, with ok reporting presence. YAML
// decodes numbers as int, so no float handling is needed here.
func (n Node) IntAttr(name string) (int, bool) {
	v, ok := n.Attrs[name]
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// BoolAttr returns a boolean attribute, defaulting to def when absent.
func (n Node) BoolAttr(name string, def bool) bool {
	v, ok := n.Attrs[name]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// StringsAttr returns a string-list attribute. A bare string is treated as a
// single-element list so authors can write `keys: knuth74` or a full list.
func (n Node) StringsAttr(name string) []string {
	switch v := n.Attrs[name].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}

// Meta is the document metadata block (YAML front matter or the `meta`
// section of a structured document).
type Meta struct {
	Title        string   `yaml:"title"`
	Authors      []string `yaml:"authors"`
	Lang         string   `yaml:"lang"`
	Stylesheet   string   `yaml:"stylesheet"`
	Bibliography []string `yaml:"bibliography"`
	CiteStyle    string   `yaml:"cite-style"`
	// AutoBibliography appends a reference list after the body whenever the
	// document cites anything. Enabled unless explicitly turned off.
	AutoBibliography *bool `yaml:"auto-bibliography"`
}

// MacroKind classifies a macro for listing and validation.
type MacroKind string

const (
	KindBlock    MacroKind = "block"
	KindInline   MacroKind = "inline"
	KindCode     MacroKind = "code"
	KindCitation MacroKind = "citation"
)

// AttrInfo documents one attribute a macro accepts.
type AttrInfo struct {
	// Name is the attribute key as written in documents.
	Name string
	// Type is a human-readable type hint ("string", "int", "bool", "list").
	Type string
	// Required marks attributes the macro cannot render without.
	Required bool
	// Description explains the attribute for `quill list`.
	Description string
}

// MacroInfo describes a registered macro.
type MacroInfo struct {
	// Name is the macro identifier used in documents.
	Name string
	// Kind classifies the macro (block, inline, code, citation).
	Kind MacroKind
	// Summary is a one-line description for `quill list`.
	Summary string
	// Attrs documents the accepted attributes.
	Attrs []AttrInfo
}

// Constructor builds a component for a document node. children holds the
// already-expanded child components in document order; macros that wrap a
// single subtree join them, the list macro keeps them separate.
type Constructor func(n Node, children []templ.Component) (templ.Component, error)
