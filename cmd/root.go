package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "eb",
		Short:         "EntertainBot (eb): chat about anime, manga, TV shows, and books",
		Long:          "eb is a conversational assistant for entertainment. It answers questions about anime, manga, TV shows, and books by querying Jikan, TV Maze, and Open Library, and keeps per-session conversation context.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAskCmd(app),
		newChatCmd(app),
		newSessionCmd(app),
		newToolsCmd(),
		newHealthCmd(app),
	)

	return rootCmd
}
