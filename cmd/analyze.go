package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizlab/internal/quiz"
	"github.com/abhisek/quizlab/internal/render"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <user-id>",
	Short: "Show a learner's progress report",
	Long: "Shows the learner's latest analysis report, recomputing it when newer\n" +
		"results exist. --refresh always recomputes.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetBool("refresh")
		history, _ := cmd.Flags().GetInt("history")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		svc := a.analytics()
		ctx := cmd.Context()

		if history > 0 {
			reports, err := svc.History(ctx, args[0], history)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(reports)
			}
			if len(reports) == 0 {
				fmt.Println("No stored reports.")
			}
			for _, r := range reports {
				fmt.Println(r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Print(render.Report(r))
				fmt.Println()
			}
			return nil
		}

		var report *quiz.AnalysisReport
		if refresh {
			report, err = svc.Analyze(ctx, args[0])
		} else {
			report, err = svc.Latest(ctx, args[0])
		}
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(report)
		}
		fmt.Print(render.Report(report))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("refresh", false, "Recompute the report even if it is current")
	analyzeCmd.Flags().Int("history", 0, "List the N most recent stored reports instead")
	analyzeCmd.Flags().Bool("json", false, "Print as JSON")
}
