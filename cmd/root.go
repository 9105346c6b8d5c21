package cmd

import (
	"github.com/abhisek/stepwise/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stepwise",
	Short: "Adaptive quizzes that dig into wrong answers",
	Long: "Stepwise runs question-and-answer quizzes graded by a language model. " +
		"Unsatisfactory answers grow follow-up questions that walk the learner back to the core question.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STEPWISE_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then STEPWISE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
