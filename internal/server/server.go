// Package server exposes quiz generation, grading and analysis over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/quizlab/internal/generator"
	"github.com/abhisek/quizlab/internal/pipeline"
	"github.com/abhisek/quizlab/internal/quiz"
	"github.com/abhisek/quizlab/internal/store"
)

// Quizzes generates and grades stored quizzes.
type Quizzes interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
	Submit(ctx context.Context, req pipeline.SubmitRequest) (*quiz.QuizResult, error)
}

// Reports serves learner analysis.
type Reports interface {
	Latest(ctx context.Context, userID string) (*quiz.AnalysisReport, error)
	Analyze(ctx context.Context, userID string) (*quiz.AnalysisReport, error)
}

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Quizzes   Quizzes
	Evaluator pipeline.Evaluator
	Reports   Reports
	QuizRepo  store.QuizRepo
	Results   store.ResultRepo
	Logger    *zap.Logger
}

// Options tune the gin engine.
type Options struct {
	// Mode is a gin mode: "debug", "release" or "test".
	Mode        string
	CORSOrigins []string
}

// Server is the HTTP API.
type Server struct {
	Deps
	engine *gin.Engine
}

// New builds the gin engine with CORS, request logging and recovery.
func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Logger = deps.Logger.Named("http")
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(requestLogger(deps.Logger), recovery(deps.Logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{Deps: deps, engine: r}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api/v1")
	{
		api.POST("/quizzes", s.generateQuiz)
		api.GET("/quizzes/:id", s.getQuiz)
		api.POST("/quizzes/:id/submissions", s.submitQuiz)
		api.POST("/evaluate", s.evaluate)
		api.GET("/users/:id/results", s.userResults)
		api.GET("/users/:id/analysis", s.latestAnalysis)
		api.POST("/users/:id/analysis", s.refreshAnalysis)
	}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
