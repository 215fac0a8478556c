package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// schema is portable across SQLite and Postgres. Times are unix
// milliseconds; payload columns hold the JSON document of the row.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		payload TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		quiz_id TEXT NOT NULL,
		score INTEGER NOT NULL,
		completed_at BIGINT NOT NULL,
		payload TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_results_user ON quiz_results (user_id, completed_at)`,
	`CREATE TABLE IF NOT EXISTS analysis_reports (
		id BIGINT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		payload TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_reports_user ON analysis_reports (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id BIGINT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL,
		request_body TEXT NOT NULL,
		response_body TEXT NOT NULL
	)`,
}

// SQLStore is the database/sql backed Store. Queries are built with the
// ent SQL builder so the same code emits SQLite and Postgres placeholders.
type SQLStore struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

// OpenSQLite opens (or creates) the SQLite database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps pragmas and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return newSQLStore(ctx, db, dialect.SQLite)
}

// OpenPostgres connects to Postgres through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, dialect.Postgres)
}

func newSQLStore(ctx context.Context, db *sql.DB, d string) (*SQLStore, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db, dialect: d, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) QuizRepo() QuizRepo     { return &sqlQuizRepo{s} }
func (s *SQLStore) ResultRepo() ResultRepo { return &sqlResultRepo{s} }
func (s *SQLStore) ReportRepo() ReportRepo { return &sqlReportRepo{s} }
func (s *SQLStore) EventRepo() EventRepo   { return &sqlEventRepo{s} }

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

func (s *SQLStore) exec(ctx context.Context, q entsql.Querier) error {
	query, args := q.Query()
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLStore) query(ctx context.Context, q entsql.Querier) (*sql.Rows, error) {
	query, args := q.Query()
	return s.db.QueryContext(ctx, query, args...)
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
