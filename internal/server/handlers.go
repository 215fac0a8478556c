package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizlab/internal/generator"
	"github.com/abhisek/quizlab/internal/pipeline"
	"github.com/abhisek/quizlab/internal/quiz"
)

type generateResponse struct {
	QuizID         string          `json:"quizId"`
	Questions      []quiz.Question `json:"questions"`
	TotalQuestions int             `json:"totalQuestions"`
	TimeLimit      int             `json:"timeLimit"`
	Difficulty     quiz.Difficulty `json:"difficulty"`
	UsedFallback   bool            `json:"usedFallback"`
}

func (s *Server) generateQuiz(c *gin.Context) {
	var req generator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.Quizzes.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, generateResponse{
		QuizID:         res.Quiz.ID,
		Questions:      res.Quiz.Questions,
		TotalQuestions: len(res.Quiz.Questions),
		TimeLimit:      res.Quiz.TimeLimit,
		Difficulty:     res.Quiz.Difficulty,
		UsedFallback:   res.UsedFallback,
	})
}

func (s *Server) getQuiz(c *gin.Context) {
	q, err := s.QuizRepo.GetQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type submitBody struct {
	UserID      string           `json:"userId"`
	Submissions quiz.Submissions `json:"submissions"`
	TimeSpent   int              `json:"timeSpent"`
}

func (s *Server) submitQuiz(c *gin.Context) {
	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.Quizzes.Submit(c.Request.Context(), pipeline.SubmitRequest{
		UserID:      body.UserID,
		QuizID:      c.Param("id"),
		Submissions: body.Submissions,
		TimeSpent:   body.TimeSpent,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type evaluateBody struct {
	Questions   []quiz.Question  `json:"questions"`
	Submissions quiz.Submissions `json:"submissions"`
}

func (s *Server) evaluate(c *gin.Context) {
	var body evaluateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	eval, err := s.Evaluator.Evaluate(c.Request.Context(), body.Questions, body.Submissions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

func (s *Server) userResults(c *gin.Context) {
	results, err := s.Results.ResultsByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if results == nil {
		results = []*quiz.QuizResult{}
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) latestAnalysis(c *gin.Context) {
	r, err := s.Reports.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) refreshAnalysis(c *gin.Context) {
	r, err := s.Reports.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
