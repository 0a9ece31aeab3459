package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func newHealthCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check reachability of the entertainment data sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checks := map[string]func(context.Context) bool{
				"jikan":       app.anime.Health,
				"tvmaze":      app.tv.Health,
				"openlibrary": app.books.Health,
			}

			results := make(map[string]bool, len(checks))
			var mu sync.Mutex
			var wg sync.WaitGroup
			for name, check := range checks {
				wg.Add(1)
				go func(name string, check func(context.Context) bool) {
					defer wg.Done()
					healthy := check(cmd.Context())
					mu.Lock()
					results[name] = healthy
					mu.Unlock()
				}(name, check)
			}
			wg.Wait()

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(results)
			}

			allHealthy := true
			for _, name := range []string{"jikan", "tvmaze", "openlibrary"} {
				state := upStyle.Render("up")
				if !results[name] {
					state = downStyle.Render("down")
					allHealthy = false
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, state)
			}
			if !allHealthy {
				return fmt.Errorf("one or more sources are unreachable")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
