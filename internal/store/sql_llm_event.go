package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type sqlEventRepo struct{ s *SQLStore }

var llmEventColumns = []string{
	"id", "created_at", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

func (r *sqlEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return err
	}

	ins := r.s.builder().Insert("llm_events").
		Columns(llmEventColumns...).
		Values(seq, time.Now().UnixMilli(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *sqlEventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	b := r.s.builder()
	sel := b.Select(llmEventColumns...).From(b.Table("llm_events")).OrderBy(entsql.Desc("id"))

	var preds []*entsql.Predicate
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("id", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("id", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	return r.scanEvents(ctx, sel)
}

func (r *sqlEventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEventRecord, error) {
	b := r.s.builder()
	sel := b.Select(llmEventColumns...).From(b.Table("llm_events")).Where(entsql.EQ("id", id))

	events, err := r.scanEvents(ctx, sel)
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[0], nil
}

func (r *sqlEventRepo) scanEvents(ctx context.Context, sel *entsql.Selector) ([]LLMEventRecord, error) {
	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEventRecord
	for rows.Next() {
		var (
			e  LLMEventRecord
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
			&e.ErrorMessage, &e.RequestBody, &e.ResponseBody); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *sqlEventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	b := r.s.builder()
	sel := b.Select(
		"purpose",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Sum("latency_ms"), "latency_ms"),
	).From(b.Table("llm_events")).GroupBy("purpose").OrderBy("purpose")

	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var (
			u       PurposeUsage
			latency int64
		)
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &latency); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		if u.Calls > 0 {
			u.AvgLatencyMs = latency / int64(u.Calls)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *sqlEventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	b := r.s.builder()
	sel := b.Select(
		"model",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
	).From(b.Table("llm_events")).GroupBy("model").OrderBy("model")

	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
