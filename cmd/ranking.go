package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/stepwise/internal/ranking"
)

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Show a course leaderboard from the local points ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		course, _ := cmd.Flags().GetString("course")
		limit, _ := cmd.Flags().GetInt("limit")
		if course == "" {
			return fmt.Errorf("--course is required")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		standings, err := ranking.NewLedger(s.EventRepo()).Top(cmd.Context(), course, limit)
		if err != nil {
			return fmt.Errorf("query standings: %w", err)
		}
		if len(standings) == 0 {
			fmt.Printf("No points recorded for course %q.\n", course)
			return nil
		}

		fmt.Printf("%-5s  %-24s  %-24s  %8s\n", "Rank", "User", "Name", "Points")
		fmt.Println(strings.Repeat("─", 68))
		for _, st := range standings {
			fmt.Printf("%-5d  %-24s  %-24s  %8d\n",
				st.Rank, truncate(st.UserID, 24), truncate(st.UserName, 24), st.Points)
		}
		return nil
	},
}

func init() {
	rankingCmd.Flags().StringP("course", "c", "", "Course ID")
	rankingCmd.Flags().IntP("limit", "n", 10, "Number of users to show")
}
