package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizlab/internal/analytics"
	"github.com/abhisek/quizlab/internal/generator"
	"github.com/abhisek/quizlab/internal/grading"
	"github.com/abhisek/quizlab/internal/llm"
	"github.com/abhisek/quizlab/internal/pipeline"
	"github.com/abhisek/quizlab/internal/quiz"
	"github.com/abhisek/quizlab/internal/store"
)

type testEnv struct {
	srv   *Server
	store *store.SQLStore
	pipe  *pipeline.Pipeline
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenSQLite(context.Background(), "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	mock.Fallback = &llm.MockResponse{Text: "Keep practising."}
	reports := analytics.NewService(st.ResultRepo(), st.ReportRepo(), mock, analytics.DefaultConfig(), nil)
	eval := grading.NewEvaluator(grading.DefaultConfig(), nil, nil)
	cfg := pipeline.DefaultConfig()
	cfg.InProcessRefresh = false
	pipe := pipeline.New(pipeline.Deps{
		Quizzes:   st.QuizRepo(),
		Results:   st.ResultRepo(),
		Generator: generator.New(nil, generator.DefaultConfig(), nil),
		Evaluator: eval,
		Analytics: reports,
	}, cfg)
	t.Cleanup(func() { pipe.Close() })

	srv := New(Deps{
		Quizzes:   pipe,
		Evaluator: eval,
		Reports:   reports,
		QuizRepo:  st.QuizRepo(),
		Results:   st.ResultRepo(),
	}, Options{Mode: gin.TestMode, CORSOrigins: []string{"http://localhost:3000"}})
	return &testEnv{srv: srv, store: st, pipe: pipe}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateAndFetchQuiz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/quizzes", map[string]any{
		"topic":         "Tarih",
		"questionCount": 6,
		"timeLimit":     15,
		"examFormat":    "test",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[generateResponse](t, rec)
	assert.Equal(t, 6, got.TotalQuestions)
	assert.Len(t, got.Questions, 6)
	assert.Equal(t, 15, got.TimeLimit)
	assert.Equal(t, quiz.DifficultyMedium, got.Difficulty)
	assert.True(t, got.UsedFallback)
	for _, q := range got.Questions {
		assert.Equal(t, quiz.TypeMultipleChoice, q.Type)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/quizzes/"+got.QuizID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, got.QuizID, decode[quiz.Quiz](t, rec).ID)
}

func TestGenerateValidationError(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/quizzes", map[string]any{"questionCount": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "topic")

	rec = env.do(t, http.MethodPost, "/api/v1/quizzes", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetQuizNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/quizzes/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, quiz.ErrQuizNotFound.Error(), decode[map[string]string](t, rec)["error"])
}

func TestEvaluate(t *testing.T) {
	env := newTestEnv(t)
	body := `{
		"questions": [
			{"id": "q1", "type": "multiple_choice", "options": ["A) Bir", "B) İki"], "correctAnswer": "B) İki"},
			{"id": "q2", "type": "true_false", "correctAnswer": false},
			{"id": "q3", "type": "fill_in_blank", "correctAnswer": ["veritabanı", "database"]},
			{"id": "q4", "type": "open_ended", "correctAnswer": "fotosentez"}
		],
		"submissions": [
			{"questionId": "q1", "userAnswer": "B"},
			{"questionId": "q2", "userAnswer": "false"},
			{"questionId": "q3", "userAnswer": "veri tabanı"}
		]
	}`
	rec := env.do(t, http.MethodPost, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[quiz.Evaluation](t, rec)
	assert.Equal(t, 75, got.Score)
	require.Len(t, got.Answers, 4)
	assert.False(t, got.Answers[3].IsCorrect)
	assert.Contains(t, rec.Body.String(), `"results"`)
}

func TestEvaluateMapSubmissions(t *testing.T) {
	env := newTestEnv(t)
	body := `{"questions": [{"id": "q1", "type": "true_false", "correctAnswer": true}], "submissions": {"q1": true}}`
	rec := env.do(t, http.MethodPost, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, decode[quiz.Evaluation](t, rec).Score)
}

func TestEvaluateRequiresQuestions(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/evaluate", `{"questions": [], "submissions": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitResultsAndAnalysis(t *testing.T) {
	env := newTestEnv(t)
	q := &quiz.Quiz{
		ID: "quiz-1",
		Questions: []quiz.Question{
			{ID: "q1", Type: quiz.TypeTrueFalse, CorrectAnswer: quiz.Bool(true), Topic: "Mantık"},
			{ID: "q2", Type: quiz.TypeTrueFalse, CorrectAnswer: quiz.Bool(false), Topic: "Mantık"},
		},
	}
	require.NoError(t, env.store.QuizRepo().SaveQuiz(context.Background(), q))

	rec := env.do(t, http.MethodPost, "/api/v1/quizzes/quiz-1/submissions", map[string]any{
		"userId":      "u1",
		"submissions": map[string]any{"q1": true, "q2": true},
		"timeSpent":   42,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[quiz.QuizResult](t, rec)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, 42, res.TimeSpent)

	rec = env.do(t, http.MethodGet, "/api/v1/users/u1/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]quiz.QuizResult](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/v1/users/u1/analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[quiz.AnalysisReport](t, rec)
	assert.Equal(t, "Keep practising.", report.Message)
	assert.Equal(t, []quiz.WeakArea{{Topic: "Mantık", ErrorCount: 1}}, report.WeakAreas)

	rec = env.do(t, http.MethodPost, "/api/v1/users/u1/analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history, err := env.store.ReportRepo().ReportHistory(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/quizzes/missing/submissions", map[string]any{
		"userId":      "u1",
		"submissions": map[string]any{},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmptyResultsIsArray(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/users/nobody/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

type failingReports struct{}

func (failingReports) Latest(context.Context, string) (*quiz.AnalysisReport, error) {
	return nil, errors.New("database is locked")
}

func (failingReports) Analyze(context.Context, string) (*quiz.AnalysisReport, error) {
	panic("boom")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(Deps{Reports: failingReports{}}, Options{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/analysis", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "locked")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/u1/analysis", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/evaluate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
