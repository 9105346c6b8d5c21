package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/stepwise/internal/app"
	"github.com/abhisek/stepwise/internal/ranking"
	"github.com/abhisek/stepwise/internal/screens/quiz"
	"github.com/abhisek/stepwise/internal/session"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <file>...",
	Short: "Take a quiz in the terminal",
	Long: "Take a quiz in the terminal. Pass documents (pdf, docx, md, html, txt) to generate " +
		"questions from them, or a single .json file holding a seed question list.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			return fmt.Errorf("--count must be positive")
		}
		logFile, _ := cmd.Flags().GetString("log-file")
		rewrite, _ := cmd.Flags().GetBool("rewrite")
		owner := ranking.Owner{}
		owner.CourseID, _ = cmd.Flags().GetString("course")
		owner.UserID, _ = cmd.Flags().GetString("user")
		owner.UserName, _ = cmd.Flags().GetString("name")

		// The TUI owns the terminal, so logs go to a file or nowhere.
		var out io.Writer = io.Discard
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			out = f
		}
		log := slog.New(slog.NewTextHandler(out, nil))

		ctx := cmd.Context()
		eng, err := openEngine(ctx, cmd, log)
		if err != nil {
			return err
		}
		defer eng.Close()

		fmt.Fprintln(os.Stderr, "Preparing questions...")
		seeds, err := seedsFromFiles(ctx, eng.seeds, args, count)
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			return fmt.Errorf("no questions could be generated from %v", args)
		}

		var reporter ranking.Reporter
		if owner.Valid() {
			reporter = ranking.NewLedger(eng.store.EventRepo())
		}
		orch := eng.orchestrator(session.NewMemoryStore(0), reporter, rewrite, log)

		id, _, err := orch.Start(ctx, seeds, owner)
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		return app.Run(quiz.New(orch, id))
	},
}

func init() {
	quizCmd.Flags().IntP("count", "n", 3, "Number of core questions to generate from documents")
	quizCmd.Flags().String("log-file", "", "Write logs to this file")
	quizCmd.Flags().Bool("rewrite", false, "Clean up answers with the model before grading")
	quizCmd.Flags().String("course", "", "Course ID to record points under")
	quizCmd.Flags().String("user", "", "User ID to record points under")
	quizCmd.Flags().String("name", "", "Display name for the leaderboard")
}
