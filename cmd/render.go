package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillforge/quill/internal/builtin"
	"github.com/quillforge/quill/internal/config"
	"github.com/quillforge/quill/internal/document"
	"github.com/quillforge/quill/internal/errors"
)

var renderCmd = &cobra.Command{
	Use:   "render <document>",
	Short: "Render a document to HTML",
	Long: `Render a document (YAML macro tree or markdown with front matter) to a
complete HTML page.

Examples:
  quill render paper.md                 Write HTML to stdout
  quill render paper.md -o paper.html   Write to a file
  quill render notes.yaml --cite-style author-year`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	renderCmd.Flags().String("cite-style", "numeric", "citation style (numeric, author-year)")
	renderCmd.Flags().Bool("sort-refs", false, "sort references by author instead of cite order")
	renderCmd.Flags().String("stylesheet", "", "link an external stylesheet")
	bindFlags(renderCmd.Flags(), map[string]string{
		"output":     "render.output",
		"cite-style": "render.cite-style",
		"sort-refs":  "render.sort-refs-by-author",
		"stylesheet": "render.stylesheet",
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	log := newLogger()

	reg, err := builtin.Registry()
	if err != nil {
		return err
	}

	doc, err := document.Load(args[0])
	if err != nil {
		return err
	}

	collector := errors.NewCollector()
	defaults := cfg.RenderOptions()
	var buf bytes.Buffer
	renderErr := doc.Render(cmd.Context(), reg, &buf, document.RenderOptions{
		Collector:        collector,
		CiteStyle:        defaults.CiteStyle,
		SortRefsByAuthor: defaults.SortRefsByAuthor,
		Lang:             defaults.Lang,
		Stylesheet:       defaults.Stylesheet,
		Bibliography:     defaults.Bibliography,
	})

	for _, d := range collector.Diags() {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if renderErr != nil {
		return fmt.Errorf("rendering %s failed", args[0])
	}

	output := viper.GetString("render.output")
	if output == "" || output == "-" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	log.Info(cmd.Context(), "document rendered", "input", args[0], "output", output, "bytes", buf.Len())
	return nil
}
