package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// taskCommand builds one cobra command that executes a pipeline directly,
// bypassing the conversation graph. Useful for cron jobs and debugging.
func taskCommand(use, short string, taskType types.TaskType) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			exec := a.router.Execute(ctx, user, taskType, types.ContextActiveUser)
			if exec.Metadata.Status == types.StatusFailure {
				return fmt.Errorf("task %s failed: %s", taskType, exec.Metadata.ErrorMessage)
			}

			if asJSON {
				out, err := json.MarshalIndent(exec.Result, "", "  ")
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), exec.Result.Content)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the full typed payload as JSON")
	return cmd
}

func init() {
	rootCmd.AddCommand(
		taskCommand("report", "Generate a daily practice report", types.TaskDailyReport),
		taskCommand("analyze", "Analyze the last week of scores", types.TaskScoreAnalysis),
		taskCommand("playlist", "Build a training playlist from your weaknesses", types.TaskPlaylistBuilding),
		taskCommand("review", "Review long-term progress after a break", types.TaskProgressReview),
	)
}
