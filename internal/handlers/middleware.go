package handlers

import (
	"net/http"
	"strings"

	"github.com/darijalingo/practice-engine/internal/backend"
	"github.com/darijalingo/practice-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

const learnerContextKey = "learner_id"

// ForwardBearerToken carries the caller's Authorization token to backend calls.
func ForwardBearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := backend.TokenFromHeader(c.GetHeader("Authorization")); token != "" {
			c.Request = c.Request.WithContext(backend.WithBearerToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// RequireLearner rejects requests without an X-Learner-ID header.
// Authentication happens upstream.
func RequireLearner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(utils.LearnerIDHeader))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Learner not identified",
				Code:    "MISSING_LEARNER",
			})
			return
		}
		c.Set(learnerContextKey, id)
		c.Next()
	}
}

func learnerID(c *gin.Context) string {
	return c.GetString(learnerContextKey)
}
