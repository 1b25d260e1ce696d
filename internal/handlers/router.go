package handlers

import (
	"github.com/darijalingo/practice-engine/internal/services"
	"github.com/darijalingo/practice-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessionHandler  *SessionHandler
	lessonHandler   *LessonHandler
	progressHandler *ProgressHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(serviceManager.Practice(), logger),
		lessonHandler:   NewLessonHandler(serviceManager.Lesson(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(ForwardBearerToken())
	{
		// Practice session routes
		sessions := v1.Group("/sessions", RequireLearner())
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/current", hm.sessionHandler.GetCurrentSession)
			sessions.DELETE("/current", hm.sessionHandler.ResetSession)
			sessions.POST("/current/actions", hm.sessionHandler.Act)
			sessions.POST("/current/results", hm.sessionHandler.SubmitResult)
			sessions.POST("/current/next", hm.sessionHandler.NextGame)
			sessions.POST("/current/end", hm.sessionHandler.EndSession)
		}

		// Lesson routes; reading and checking need no learner
		lessons := v1.Group("/lessons")
		{
			lessons.GET("/:id", hm.lessonHandler.GetLesson)
			lessons.POST("/:id/exercises/:index/check", hm.lessonHandler.CheckAnswer)
			lessons.POST("/:id/complete", RequireLearner(), hm.lessonHandler.CompleteLesson)
		}

		// Progress routes
		progress := v1.Group("/progress", RequireLearner())
		{
			progress.GET("", hm.progressHandler.GetProgress)
			progress.GET("/sessions", hm.progressHandler.ListSessions)
			progress.GET("/sessions/export", hm.progressHandler.ExportSessions)
		}
	}
}
