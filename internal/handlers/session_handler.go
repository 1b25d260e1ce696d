package handlers

import (
	"net/http"

	"github.com/darijalingo/practice-engine/internal/games"
	"github.com/darijalingo/practice-engine/internal/services"
	"github.com/darijalingo/practice-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	practiceService services.PracticeService
}

func NewSessionHandler(practiceService services.PracticeService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:     NewBaseHandler(logger),
		practiceService: practiceService,
	}
}

// StartSession loads a fresh playlist and presents its first game.
// A previous session of the same learner is discarded.
// @Summary Start practice session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body services.StartSessionRequest false "Script preference"
// @Success 201 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Starting practice session", "script", req.Script)

	view, err := h.practiceService.StartSession(c.Request.Context(), learnerID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetCurrentSession returns the learner's live session
// @Summary Get current session
// @Tags sessions
// @Produce json
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Router /sessions/current [get]
func (h *SessionHandler) GetCurrentSession(c *gin.Context) {
	view, err := h.practiceService.CurrentSession(c.Request.Context(), learnerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Act forwards a learner action to the current game
// @Summary Perform game action
// @Tags sessions
// @Accept json
// @Produce json
// @Param action body games.Action true "Game action"
// @Success 200 {object} services.ActionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/current/actions [post]
func (h *SessionHandler) Act(c *gin.Context) {
	var action games.Action
	if !h.bindJSON(c, &action) {
		return
	}

	resp, err := h.practiceService.Act(c.Request.Context(), learnerID(c), action)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitResult records a result computed by the client
// @Summary Submit game result
// @Tags sessions
// @Accept json
// @Produce json
// @Param result body services.SubmitResultRequest true "Game result"
// @Success 200 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/current/results [post]
func (h *SessionHandler) SubmitResult(c *gin.Context) {
	var req services.SubmitResultRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting game result", "game_index", req.GameIndex, "correct", req.Correct)

	view, err := h.practiceService.SubmitResult(c.Request.Context(), learnerID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// NextGame advances past the current game, reported or not
// @Summary Advance to next game
// @Tags sessions
// @Produce json
// @Success 200 {object} services.SessionView
// @Failure 409 {object} ErrorResponse
// @Router /sessions/current/next [post]
func (h *SessionHandler) NextGame(c *gin.Context) {
	view, err := h.practiceService.NextGame(c.Request.Context(), learnerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// EndSession credits XP for a completed session and releases it
// @Summary End practice session
// @Tags sessions
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.SessionSummary}
// @Failure 409 {object} ErrorResponse
// @Router /sessions/current/end [post]
func (h *SessionHandler) EndSession(c *gin.Context) {
	h.LogRequest(c, "Ending practice session")

	summary, err := h.practiceService.EndSession(c.Request.Context(), learnerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session completed", summary)
}

// ResetSession abandons the current session without crediting anything
// @Summary Exit practice session
// @Tags sessions
// @Success 204
// @Router /sessions/current [delete]
func (h *SessionHandler) ResetSession(c *gin.Context) {
	if err := h.practiceService.ResetSession(c.Request.Context(), learnerID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
