package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizlab/internal/quiz"
)

// writeError maps domain errors to HTTP statuses with an {error} body.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	var ve *quiz.ValidationError
	switch {
	case errors.As(err, &ve):
		status, msg = http.StatusBadRequest, ve.Error()
	case errors.Is(err, quiz.ErrQuizNotFound):
		status, msg = http.StatusNotFound, quiz.ErrQuizNotFound.Error()
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
