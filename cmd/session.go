package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage conversation sessions",
	}

	cmd.AddCommand(newSessionClearCmd(app), newSessionListCmd(app))
	return cmd
}

func newSessionClearCmd(app *app) *cobra.Command {
	var sessionKey string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear a session's conversation state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.store.Clear(sessionKey)
			if err := app.memory.Clear(cmd.Context(), sessionKey); err != nil {
				app.logger.Warn("clearing remembered context failed", "session", sessionKey, "error", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s cleared\n", sessionKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionKey, "id", "", "Session key to clear")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newSessionListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions with a recorded conversation log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lister, ok := app.recorder.(interface{ Sessions() ([]string, error) })
			if !ok {
				return fmt.Errorf("the configured recorder cannot list sessions")
			}
			keys, err := lister.Sessions()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recorded sessions")
				return nil
			}
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}
