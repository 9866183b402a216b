package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quillforge/quill/internal/builtin"
	"github.com/quillforge/quill/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available macros",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("attrs", false, "show macro attributes")
}

var (
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Width(20)
	kindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
	attrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	requiredMark = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("*")
)

func runList(cmd *cobra.Command, _ []string) error {
	reg, err := builtin.Registry()
	if err != nil {
		return err
	}
	showAttrs, _ := cmd.Flags().GetBool("attrs")

	out := cmd.OutOrStdout()
	for _, info := range reg.List() {
		fmt.Fprintf(out, "%s%s%s\n",
			nameStyle.Render(info.Name),
			kindStyle.Render(string(info.Kind)),
			info.Summary,
		)
		if showAttrs {
			for _, attr := range info.Attrs {
				fmt.Fprintf(out, "    %s\n", formatAttr(attr))
			}
		}
	}
	fmt.Fprintf(out, "\n%d macros\n", reg.Count())
	return nil
}

func formatAttr(attr types.AttrInfo) string {
	var b strings.Builder
	b.WriteString(attrStyle.Render(attr.Name))
	if attr.Required {
		b.WriteString(requiredMark)
	}
	fmt.Fprintf(&b, " (%s)", attr.Type)
	if attr.Description != "" {
		b.WriteString(": " + attr.Description)
	}
	return b.String()
}
