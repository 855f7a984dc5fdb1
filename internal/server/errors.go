// file: internal/server/errors.go
// version: 1.0.0
// guid: 5d6e7f8a-9b0c-1d2e-3f4a-5b6c7d8e9f0a

package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/music-tagger/internal/models"
)

// ErrorResponse provides a consistent error response format
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status int    `json:"status"`
}

func respondError(c *gin.Context, status int, message, code string) {
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %s", c.Request.Method, c.Request.URL.Path, message)
	} else {
		log.Printf("[WARN] %s %s: %s", c.Request.Method, c.Request.URL.Path, message)
	}
	c.JSON(status, ErrorResponse{Error: message, Code: code, Status: status})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message, "BAD_REQUEST")
}

func respondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, message, "NOT_FOUND")
}

// respondPipelineError maps the shared sentinel errors onto HTTP
// statuses; anything unclassified is a 500.
func respondPipelineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case models.IsNoResult(err):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, models.ErrProviderUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, models.ErrUnreadableFile):
		status = http.StatusUnprocessableEntity
	}
	respondError(c, status, err.Error(), models.ErrorClass(err))
}
