package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizlab/internal/generator"
	"github.com/abhisek/quizlab/internal/pipeline"
	"github.com/abhisek/quizlab/internal/quiz"
	"github.com/abhisek/quizlab/internal/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate and store a quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		count, _ := flags.GetInt("count")
		timeLimit, _ := flags.GetInt("time-limit")
		courseRef, _ := flags.GetString("course")
		sourcePath, _ := flags.GetString("source")
		asJSON, _ := flags.GetBool("json")

		diffFlag, _ := flags.GetString("difficulty")
		difficulty, err := quiz.ParseDifficulty(diffFlag)
		if err != nil {
			return err
		}
		formatFlag, _ := flags.GetString("format")
		format, err := quiz.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		req := generator.Request{
			Topic:         args[0],
			Difficulty:    difficulty,
			QuestionCount: count,
			TimeLimit:     timeLimit,
			Format:        format,
			CourseRef:     courseRef,
		}
		if sourcePath != "" {
			b, err := os.ReadFile(sourcePath)
			if err != nil {
				return fmt.Errorf("read source text: %w", err)
			}
			req.SourceText = string(b)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		p := a.pipeline(a.analytics(), nil, pipeline.Config{})
		defer p.Close()

		res, err := p.Generate(cmd.Context(), req)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Quiz)
		}
		fmt.Print(render.Quiz(res.Quiz))
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.IntP("count", "n", 10, "Number of questions")
	f.StringP("difficulty", "d", "medium", "Difficulty: easy, medium or hard")
	f.StringP("format", "f", "mixed", "Exam format: test, classic or mixed")
	f.Int("time-limit", 0, "Time limit in minutes (0 = untimed)")
	f.String("course", "", "Course reference stored with the quiz")
	f.String("source", "", "File with course material to ground the questions in")
	f.Bool("json", false, "Print the quiz, answers included, as JSON")
}
