package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/chat"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to your coach",
	Long: `Send one message to the coach, or start an interactive session when no
message is given. Conversation state is checkpointed per thread, so follow-up
messages continue where you left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		threadID, _ := cmd.Flags().GetString("thread")
		stream, _ := cmd.Flags().GetBool("stream")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		opts := chat.Options{ThreadID: threadID}

		if len(args) > 0 {
			return runTurn(cmd, a, user, strings.Join(args, " "), opts, stream)
		}

		// Interactive session: one turn per line until EOF or "exit".
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Fprintln(cmd.OutOrStdout(), "Chatting with your coach. Type 'exit' to quit.")
		for {
			fmt.Fprint(cmd.OutOrStdout(), "> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}
			if err := runTurn(cmd, a, user, line, opts, stream); err != nil {
				return err
			}
		}
	},
}

func runTurn(cmd *cobra.Command, a *app, user, message string, opts chat.Options, stream bool) error {
	turns := []types.ConversationTurn{{Role: types.RoleUser, Content: message}}

	if stream {
		for update := range a.orchestrator.Stream(cmd.Context(), user, turns, opts) {
			if update.Err != nil {
				return update.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", update.Node)
			if update.Node == chat.NodeChatAgent {
				printLastAssistant(cmd, update.State)
			}
		}
		return nil
	}

	state, err := a.orchestrator.Invoke(cmd.Context(), user, turns, opts)
	if err != nil {
		return err
	}
	printLastAssistant(cmd, state)
	return nil
}

func printLastAssistant(cmd *cobra.Command, state *types.ConversationState) {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == types.RoleAssistant {
			fmt.Fprintln(cmd.OutOrStdout(), state.Messages[i].Content)
			return
		}
	}
}

func init() {
	chatCmd.Flags().String("thread", "", "thread id (defaults to the user id)")
	chatCmd.Flags().Bool("stream", false, "print per-step updates while the turn runs")
	rootCmd.AddCommand(chatCmd)
}
