/*
Package cmd implements the aimcoach command line interface.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/logger"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "aimcoach",
	Short: "aimcoach analyzes your aim-training scores and coaches you through chat.",
	Long: `aimcoach is an AI coach for FPS aim training. It stores your practice
scores, tracks your engagement, chats with you about your results, and runs
structured coaching tasks: daily reports, score analysis, playlist building,
and progress reviews.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetCrashCommand(cmd.Name())
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	defer logger.HandlePanic()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.aimcoach.yaml or $HOME/.aimcoach.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("user", "", "user id the command acts for")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
