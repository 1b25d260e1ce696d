package handlers

import (
	"net/http"

	"github.com/darijalingo/practice-engine/internal/services"
	"github.com/darijalingo/practice-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
}

func NewLessonHandler(lessonService services.LessonService, logger utils.Logger) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
	}
}

// checkAnswerBody is the request body of the check endpoint; the exercise index
// comes from the path.
type checkAnswerBody struct {
	Answer string `json:"answer"`
}

// GetLesson returns lesson content with normalized exercises
// @Summary Get lesson
// @Tags lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} services.LessonView
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := parseStringParam(c, "id")
	if id == "" {
		return
	}

	lesson, err := h.lessonService.GetLesson(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// CheckAnswer verifies a free-text answer in either script
// @Summary Check exercise answer
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param index path int true "Exercise index"
// @Success 200 {object} services.CheckAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id}/exercises/{index}/check [post]
func (h *LessonHandler) CheckAnswer(c *gin.Context) {
	id := parseStringParam(c, "id")
	if id == "" {
		return
	}
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	var body checkAnswerBody
	if !h.bindJSON(c, &body) {
		return
	}

	resp, err := h.lessonService.CheckAnswer(c.Request.Context(), id, &services.CheckAnswerRequest{
		ExerciseIndex: index,
		Answer:        body.Answer,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CompleteLesson reports a lesson score and credits the XP the backend awards
// @Summary Complete lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param request body services.CompleteLessonRequest true "Score between 0 and 1"
// @Success 200 {object} SuccessResponse{data=services.CompleteLessonResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /lessons/{id}/complete [post]
func (h *LessonHandler) CompleteLesson(c *gin.Context) {
	id := parseStringParam(c, "id")
	if id == "" {
		return
	}

	var req services.CompleteLessonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Completing lesson", "lesson_id", id, "score", req.Score)

	resp, err := h.lessonService.CompleteLesson(c.Request.Context(), learnerID(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lesson completed", resp)
}
