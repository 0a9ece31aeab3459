package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	replyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

func newChatCmd(app *app) *cobra.Command {
	var sessionKey string
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long:  "Chat reads messages from stdin and answers each one in the same session. Type /clear to reset the conversation, /quit or Ctrl-D to leave.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orchestrator, err := app.newOrchestrator()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, noticeStyle.Render("EntertainBot. Ask about anime, manga, TV shows, or books."))

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, promptStyle.Render("you> "))
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/clear":
					if sessionKey != "" {
						orchestrator.ClearSession(cmd.Context(), sessionKey)
						sessionKey = ""
					}
					fmt.Fprintln(out, noticeStyle.Render("conversation cleared"))
					continue
				}

				turn := func(ctx context.Context) (string, string, error) {
					return orchestrator.HandleTurn(ctx, sessionKey, line)
				}

				var reply string
				if plain {
					reply, sessionKey, err = turn(cmd.Context())
				} else {
					reply, sessionKey, err = runThinkingSpinner(cmd.Context(), cmd.ErrOrStderr(), turn)
				}
				if err != nil {
					fmt.Fprintln(out, noticeStyle.Render("that didn't work: "+err.Error()))
					continue
				}

				fmt.Fprintln(out, replyStyle.Render(reply))
			}
		},
	}

	cmd.Flags().StringVar(&sessionKey, "session", "", "Session key to continue a conversation")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the progress spinner")

	return cmd
}
