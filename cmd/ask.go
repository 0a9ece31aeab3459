package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(app *app) *cobra.Command {
	var sessionKey string
	var plain bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a single question",
		Long:  "Ask sends one question through the conversation pipeline and prints the answer. Pass --session to continue an earlier conversation.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := app.newOrchestrator()
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			turn := func(ctx context.Context) (string, string, error) {
				return orchestrator.HandleTurn(ctx, sessionKey, question)
			}

			var reply, key string
			if plain || asJSON {
				reply, key, err = turn(cmd.Context())
			} else {
				reply, key, err = runThinkingSpinner(cmd.Context(), cmd.ErrOrStderr(), turn)
			}
			if err != nil {
				return err
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				return encoder.Encode(map[string]string{
					"reply":   reply,
					"session": key,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), reply)
			fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionKey, "session", "", "Session key to continue a conversation")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the progress spinner")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the reply and session key as JSON")

	return cmd
}
