package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bnema/entertainbot/internal/domain"
)

var (
	toolNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	toolDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	toolArgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newToolsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog exposed to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := domain.Catalog()

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(catalog)
			}

			out := cmd.OutOrStdout()
			for _, tool := range catalog {
				fmt.Fprintln(out, toolNameStyle.Render(string(tool.Name)))
				fmt.Fprintln(out, toolDescStyle.Render("  "+tool.Description))

				names := make([]string, 0, len(tool.Parameters.Properties))
				for name := range tool.Parameters.Properties {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					property := tool.Parameters.Properties[name]
					marker := ""
					if contains(tool.Parameters.Required, name) {
						marker = " (required)"
					}
					fmt.Fprintln(out, toolArgStyle.Render(fmt.Sprintf("    %s: %s%s", name, property.Type, marker)))
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%d tools\n", len(catalog))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}
