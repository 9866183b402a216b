package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/quillforge/quill/internal/builtin"
	"github.com/quillforge/quill/internal/config"
	"github.com/quillforge/quill/internal/document"
	qerrors "github.com/quillforge/quill/internal/errors"
	"github.com/quillforge/quill/internal/registry"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document>...",
	Short: "Check documents without writing output",
	Long: `Expand and render each document in memory, reporting every diagnostic:
unknown macros, unbalanced delimiters, unknown citation keys, missing alt
text, indentation underflow, and internal links that point nowhere.

Exit status is non-zero when any document has errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	reg, err := builtin.Registry()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		collector := qerrors.NewCollector()
		ok := validateOne(cmd, cfg, reg, path, collector)

		diags := collector.Diags()
		for _, d := range diags {
			fmt.Fprintln(out, d.Error())
		}
		if !ok || collector.HasErrors() {
			failed++
			fmt.Fprintf(out, "%s: FAIL (%d diagnostics)\n", path, len(diags))
		} else {
			fmt.Fprintf(out, "%s: ok\n", path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed validation", failed, len(args))
	}
	return nil
}

func validateOne(cmd *cobra.Command, cfg *config.Config, reg *registry.Registry, path string, collector *qerrors.Collector) bool {
	doc, err := document.Load(path)
	if err != nil {
		collector.AddError(err)
		return false
	}

	defaults := cfg.RenderOptions()
	var buf bytes.Buffer
	renderErr := doc.Render(cmd.Context(), reg, &buf, document.RenderOptions{
		Collector:        collector,
		CiteStyle:        defaults.CiteStyle,
		SortRefsByAuthor: defaults.SortRefsByAuthor,
		Lang:             defaults.Lang,
		Bibliography:     defaults.Bibliography,
	})
	if renderErr != nil {
		return false
	}

	checkInternalLinks(path, buf.Bytes(), collector)
	return true
}

// checkInternalLinks parses the rendered HTML and reports fragment links
// with no matching id. Deferred resolution already catches xref macros;
// this also covers hand-written markdown links.
func checkInternalLinks(docPath string, rendered []byte, collector *qerrors.Collector) {
	root, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		collector.AddError(fmt.Errorf("parsing rendered HTML of %s: %w", docPath, err))
		return
	}

	ids := make(map[string]bool)
	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				switch attr.Key {
				case "id":
					ids[attr.Val] = true
				case "href":
					if strings.HasPrefix(attr.Val, "#") && len(attr.Val) > 1 {
						hrefs = append(hrefs, attr.Val[1:])
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	for _, target := range hrefs {
		if !ids[target] {
			d := qerrors.Warnf("validate", "internal link #%s has no target", target)
			d.Doc = docPath
			collector.Add(*d)
		}
	}
}
