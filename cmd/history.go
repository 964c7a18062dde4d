package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/chat"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation so far",
	Long:  `Print the checkpointed conversation for a thread without running the coach.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		threadID, _ := cmd.Flags().GetString("thread")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		thread, err := a.orchestrator.GetMessages(ctx, user, chat.Options{ThreadID: threadID})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "thread: %s  context: %s\n\n", thread.ThreadID, thread.UserContext)
		if len(thread.Messages) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no messages yet)")
			return nil
		}
		for _, m := range thread.Messages {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", m.Role, m.Content)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("thread", "", "thread id (defaults to the user id)")
	rootCmd.AddCommand(historyCmd)
}
