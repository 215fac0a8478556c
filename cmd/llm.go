package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizlab/internal/llm"
	"github.com/abhisek/quizlab/internal/render"
	"github.com/abhisek/quizlab/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect logged model calls, token usage and cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := store.QueryOpts{}
		opts.Limit, _ = flags.GetInt("limit")
		since, _ := flags.GetDuration("since")
		asJSON, _ := flags.GetBool("json")
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		if p, _ := flags.GetString("purpose"); p != "" {
			purpose, err := llm.ParsePurpose(p)
			if err != nil {
				return err
			}
			opts.Purpose = string(purpose)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		calls, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if asJSON {
			return writeJSON(calls)
		}
		if len(calls) == 0 {
			fmt.Println("No model calls recorded.")
			return nil
		}

		rows := make([][]string, 0, len(calls))
		for _, e := range calls {
			status := "ok"
			if !e.Success {
				status = "failed"
			}
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				e.Timestamp.Local().Format(timeLayout),
				e.Purpose,
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				status,
			})
		}
		fmt.Print(render.Table(
			[]string{"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "Status"},
			rows, false))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the request and response of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		fields := [][]string{
			{"ID", strconv.FormatInt(e.ID, 10)},
			{"Time", e.Timestamp.Local().Format(timeLayout)},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Success", strconv.FormatBool(e.Success)},
		}
		if e.ErrorMessage != "" {
			fields = append(fields, []string{"Error", e.ErrorMessage})
		}
		for _, f := range fields {
			fmt.Printf("%-9s %s\n", f[0]+":", f[1])
		}

		printBody("REQUEST", e.RequestBody)
		printBody("RESPONSE", e.ResponseBody)
		return nil
	},
}

// printBody prints a captured payload, indenting it when it is JSON.
func printBody(title, body string) {
	sep := strings.Repeat("─", 60)
	fmt.Printf("\n%s\n%s\n%s\n", sep, title, sep)
	if body == "" {
		fmt.Println("(not captured)")
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err == nil {
		fmt.Println(buf.String())
		return
	}
	fmt.Println(body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No model usage recorded yet.")
			return nil
		}

		var calls, in, out int
		rows := make([][]string, 0, len(byPurpose)+1)
		for _, u := range byPurpose {
			rows = append(rows, []string{
				u.Purpose,
				strconv.Itoa(u.Calls),
				strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens),
				strconv.FormatInt(u.AvgLatencyMs, 10),
			})
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		rows = append(rows, []string{"TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), ""})
		fmt.Println("Usage by purpose")
		fmt.Print(render.Table([]string{"Purpose", "Calls", "Input", "Output", "Avg ms"}, rows, true))

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		var total float64
		var unpriced []string
		rows = rows[:0]
		for _, u := range byModel {
			cost := "?"
			if price := llm.LookupCost(u.Model); price != nil {
				c := price.Cost(u.InputTokens, u.OutputTokens)
				total += c
				cost = formatCost(c)
			} else {
				unpriced = append(unpriced, u.Model)
			}
			rows = append(rows, []string{
				truncate(u.Model, 32),
				strconv.Itoa(u.Calls),
				strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens),
				cost,
			})
		}
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (partial)"
		}
		rows = append(rows, []string{label, "", "", "", formatCost(total)})

		fmt.Println("\nEstimated cost (USD)")
		fmt.Print(render.Table([]string{"Model", "Calls", "Input", "Output", "Cost"}, rows, true))
		if len(unpriced) > 0 {
			fmt.Printf("Pricing unavailable for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// openStore opens the configured store without building an LLM provider.
func openStore(cmd *cobra.Command) (store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	s, err := store.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show (0 = all)")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose: question-gen, answer-check or coaching")
	llmListCmd.Flags().Duration("since", 0, "Only show calls newer than this, e.g. 24h")
	llmListCmd.Flags().Bool("json", false, "Print as JSON")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
