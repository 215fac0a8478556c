package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizlab/internal/pipeline"
	"github.com/abhisek/quizlab/internal/quiz"
	"github.com/abhisek/quizlab/internal/render"
)

// evaluateInput is the file read by `evaluate`.
type evaluateInput struct {
	Questions   []quiz.Question  `json:"questions"`
	Submissions quiz.Submissions `json:"submissions"`
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Grade answers against a question set without storing anything",
	Long: "Reads {\"questions\": [...], \"submissions\": {...}} from --file (or stdin)\n" +
		"and prints the per-question grading.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		asJSON, _ := cmd.Flags().GetBool("json")

		var in evaluateInput
		if err := readJSON(path, &in); err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		eval, err := a.evaluator().Evaluate(cmd.Context(), in.Questions, in.Submissions)
		if err != nil {
			return err
		}
		return printEvaluation(eval, asJSON)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <quiz-id>",
	Short: "Grade and record a learner's answers to a stored quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		path, _ := cmd.Flags().GetString("file")
		timeSpent, _ := cmd.Flags().GetInt("time-spent")
		asJSON, _ := cmd.Flags().GetBool("json")

		var subs quiz.Submissions
		if err := readJSON(path, &subs); err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		pub, err := a.publisher()
		if err != nil {
			return err
		}
		defer pub.Close()

		// Close drains the in-process refresh, so the report is stored
		// before the command returns.
		p := a.pipeline(a.analytics(), pub, a.cfg.Pipeline)
		defer p.Close()

		res, err := p.Submit(cmd.Context(), pipeline.SubmitRequest{
			UserID:      user,
			QuizID:      args[0],
			Submissions: subs,
			TimeSpent:   timeSpent,
		})
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(res)
		}
		fmt.Println(res.ID)
		return printEvaluation(&quiz.Evaluation{Score: res.Score, Answers: res.Answers}, false)
	},
}

func printEvaluation(eval *quiz.Evaluation, asJSON bool) error {
	if asJSON {
		return writeJSON(eval)
	}
	fmt.Print(render.Evaluation(eval))
	return nil
}

// readJSON decodes path into v; "-" or "" reads stdin.
func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", displayPath(path), err)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func displayPath(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func init() {
	evaluateCmd.Flags().StringP("file", "f", "", "JSON input file (default stdin)")
	evaluateCmd.Flags().Bool("json", false, "Print the evaluation as JSON")

	submitCmd.Flags().StringP("user", "u", "", "Learner id")
	submitCmd.Flags().StringP("file", "f", "", "JSON submissions file, a map or a list (default stdin)")
	submitCmd.Flags().Int("time-spent", 0, "Seconds spent on the attempt")
	submitCmd.Flags().Bool("json", false, "Print the stored result as JSON")
	_ = submitCmd.MarkFlagRequired("user")
}
