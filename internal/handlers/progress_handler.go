package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/darijalingo/practice-engine/internal/repositories"
	"github.com/darijalingo/practice-engine/internal/services"
	"github.com/darijalingo/practice-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetProgress returns the learner's XP level
// @Summary Get learner progress
// @Tags progress
// @Produce json
// @Success 200 {object} models.Progress
// @Router /progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	progress, err := h.progressService.GetProgress(c.Request.Context(), learnerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// ListSessions returns completed sessions, newest first unless sort=asc
// @Summary List completed sessions
// @Tags progress
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param sort query string false "asc or desc"
// @Success 200 {object} services.SessionHistoryResponse
// @Failure 400 {object} ErrorResponse
// @Router /progress/sessions [get]
func (h *ProgressHandler) ListSessions(c *gin.Context) {
	sort := strings.ToLower(c.DefaultQuery("sort", "desc"))
	if sort != "asc" && sort != "desc" {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid sort", nil, "sort must be asc or desc")
		return
	}

	filters := repositories.SessionFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortOrder: sort,
	}

	history, err := h.progressService.ListSessions(c.Request.Context(), learnerID(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// ExportSessions downloads the session history as an XLSX workbook
// @Summary Export session history
// @Tags progress
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /progress/sessions/export [get]
func (h *ProgressHandler) ExportSessions(c *gin.Context) {
	h.LogRequest(c, "Exporting session history")

	var buf bytes.Buffer
	if err := h.progressService.ExportSessions(c.Request.Context(), learnerID(c), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("practice-sessions-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
