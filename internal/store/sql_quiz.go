package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizlab/internal/quiz"
)

type sqlQuizRepo struct{ s *SQLStore }

func (r *sqlQuizRepo) SaveQuiz(ctx context.Context, q *quiz.Quiz) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}

	ins := r.s.builder().Insert("quizzes").
		Columns("id", "topic", "created_at", "payload").
		Values(q.ID, q.Topic, q.CreatedAt.UnixMilli(), string(payload)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("save quiz %s: %w", q.ID, err)
	}
	return nil
}

func (r *sqlQuizRepo) GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error) {
	b := r.s.builder()
	sel := b.Select("payload").From(b.Table("quizzes")).Where(entsql.EQ("id", id))

	payload, err := r.s.scanPayload(ctx, sel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, quiz.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}

	var q quiz.Quiz
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, fmt.Errorf("decode quiz %s: %w", id, err)
	}
	return &q, nil
}

type sqlResultRepo struct{ s *SQLStore }

func (r *sqlResultRepo) AppendResult(ctx context.Context, res *quiz.QuizResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	ins := r.s.builder().Insert("quiz_results").
		Columns("id", "user_id", "quiz_id", "score", "completed_at", "payload").
		Values(res.ID, res.UserID, res.QuizID, res.Score, res.CompletedAt.UnixMilli(), string(payload))
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("append result %s: %w", res.ID, err)
	}
	return nil
}

func (r *sqlResultRepo) ResultsByUser(ctx context.Context, userID string) ([]*quiz.QuizResult, error) {
	b := r.s.builder()
	sel := b.Select("payload").From(b.Table("quiz_results")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Asc("completed_at"), entsql.Asc("id"))

	payloads, err := r.s.scanPayloads(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query results for %s: %w", userID, err)
	}

	out := make([]*quiz.QuizResult, 0, len(payloads))
	for _, p := range payloads {
		var res quiz.QuizResult
		if err := json.Unmarshal(p, &res); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out = append(out, &res)
	}
	return out, nil
}

type sqlReportRepo struct{ s *SQLStore }

func (r *sqlReportRepo) AppendReport(ctx context.Context, rep *quiz.AnalysisReport) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return err
	}

	ins := r.s.builder().Insert("analysis_reports").
		Columns("id", "user_id", "created_at", "payload").
		Values(seq, rep.UserID, rep.CreatedAt.UnixMilli(), string(payload))
	if err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("append report for %s: %w", rep.UserID, err)
	}
	return nil
}

func (r *sqlReportRepo) LatestReport(ctx context.Context, userID string) (*quiz.AnalysisReport, error) {
	reports, err := r.ReportHistory(ctx, userID, 1)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return reports[0], nil
}

func (r *sqlReportRepo) ReportHistory(ctx context.Context, userID string, limit int) ([]*quiz.AnalysisReport, error) {
	b := r.s.builder()
	sel := b.Select("payload").From(b.Table("analysis_reports")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	payloads, err := r.s.scanPayloads(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query reports for %s: %w", userID, err)
	}

	out := make([]*quiz.AnalysisReport, 0, len(payloads))
	for _, p := range payloads {
		var rep quiz.AnalysisReport
		if err := json.Unmarshal(p, &rep); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, &rep)
	}
	return out, nil
}

// scanPayload returns sql.ErrNoRows when sel matches nothing.
func (s *SQLStore) scanPayload(ctx context.Context, sel *entsql.Selector) ([]byte, error) {
	payloads, err := s.scanPayloads(ctx, sel.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, sql.ErrNoRows
	}
	return payloads[0], nil
}

func (s *SQLStore) scanPayloads(ctx context.Context, sel *entsql.Selector) ([][]byte, error) {
	rows, err := s.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, []byte(p))
	}
	return out, rows.Err()
}
