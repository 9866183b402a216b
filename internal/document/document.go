// Package document loads authored documents and renders them to HTML.
//
// Two source forms are supported: a structured YAML document (a metadata
// block plus a body tree of macro nodes) and markdown with YAML front
// matter, whose prose flows through the goldmark bridge. Both render
// through the same pass: install the bibliography scope, expand the body,
// render the page shell, resolve deferred fragments.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quillforge/quill/internal/types"
)

// Document is a loaded, not-yet-rendered document.
type Document struct {
	Meta types.Meta
	// Body is the macro tree of a structured document.
	Body []types.Node
	// Markdown is the prose body of a markdown document; Body is empty.
	Markdown []byte
	// Path is the source path, used for diagnostics and resolving
	// bibliography references.
	Path string
}

type yamlDocument struct {
	Meta types.Meta   `yaml:"meta"`
	Body []types.Node `yaml:"body"`
}

// Load reads a document, dispatching on the file extension: .yaml/.yml is
// a structured document, .md/.markdown is markdown with front matter.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return loadYAML(path, data)
	case ".md", ".markdown":
		return loadMarkdown(path, data)
	default:
		return nil, fmt.Errorf("document %s: unsupported extension %q", path, ext)
	}
}

func loadYAML(path string, data []byte) (*Document, error) {
	var yd yamlDocument
	if err := yaml.Unmarshal(data, &yd); err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", path, err)
	}
	if len(yd.Body) == 0 {
		return nil, fmt.Errorf("document %s has an empty body", path)
	}
	for i := range yd.Body {
		assignPaths(&yd.Body[i], fmt.Sprintf("body[%d]", i))
	}
	return &Document{Meta: yd.Meta, Body: yd.Body, Path: path}, nil
}

func assignPaths(n *types.Node, path string) {
	n.Path = path
	for i := range n.Children {
		assignPaths(&n.Children[i], fmt.Sprintf("%s.children[%d]", path, i))
	}
}

const frontMatterDelim = "---"

func loadMarkdown(path string, data []byte) (*Document, error) {
	meta, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return &Document{Meta: meta, Markdown: body, Path: path}, nil
}

// splitFrontMatter parses an optional leading "---" YAML block.
func splitFrontMatter(data []byte) (types.Meta, []byte, error) {
	var meta types.Meta
	text := string(data)
	if !strings.HasPrefix(text, frontMatterDelim+"\n") {
		return meta, data, nil
	}
	rest := text[len(frontMatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end < 0 {
		return meta, nil, fmt.Errorf("unterminated front matter")
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return meta, nil, fmt.Errorf("parsing front matter: %w", err)
	}
	body := rest[end+1+len(frontMatterDelim):]
	body = strings.TrimPrefix(body, "\n")
	return meta, []byte(body), nil
}

// Dir returns the directory the document lives in, for resolving relative
// bibliography paths.
func (d *Document) Dir() string {
	return filepath.Dir(d.Path)
}
