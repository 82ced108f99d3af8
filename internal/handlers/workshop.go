package handlers

import (
	"net/http"

	"github.com/GunarsK-portfolio/workshop-planner/internal/metrics"
	"github.com/GunarsK-portfolio/workshop-planner/internal/middleware"
	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/GunarsK-portfolio/workshop-planner/internal/service"
	"github.com/gin-gonic/gin"
)

// WorkshopHandler serves the public schedule and teacher workshop management.
type WorkshopHandler struct {
	workshops service.WorkshopService
	metrics   *metrics.Metrics
}

func NewWorkshopHandler(workshops service.WorkshopService, m *metrics.Metrics) *WorkshopHandler {
	return &WorkshopHandler{workshops: workshops, metrics: m}
}

// List godoc
// @Summary List workshops
// @Description Return the schedule filtered by the optional subject, date and teacher
// @Tags workshops
// @Produce json
// @Param subject query string false "Subject" Enums(Dev, UX, PO, Research, Portfolio, Misc)
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param teacher_id query string false "Teacher ID"
// @Success 200 {object} map[string][]models.Workshop
// @Failure 400 {object} map[string]string
// @Router /workshops [get]
func (h *WorkshopHandler) List(c *gin.Context) {
	filter := models.WorkshopFilter{
		Subject:   models.Subject(c.Query("subject")),
		TeacherID: c.Query("teacher_id"),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := models.ParseDate(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		filter.Date = &date
	}

	workshops, err := h.workshops.List(c.Request.Context(), filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workshops": workshops})
}

// Get godoc
// @Summary Get workshop
// @Tags workshops
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]models.Workshop
// @Failure 404 {object} map[string]string
// @Router /workshops/{id} [get]
func (h *WorkshopHandler) Get(c *gin.Context) {
	workshop, err := h.workshops.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workshop": workshop})
}

// Create godoc
// @Summary Create workshop
// @Description Schedule a workshop taught by the authenticated teacher
// @Tags workshops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-CSRF-Token header string true "CSRF token"
// @Param request body service.CreateWorkshopRequest true "Workshop"
// @Success 201 {object} map[string]models.Workshop
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /workshops [post]
func (h *WorkshopHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req service.CreateWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	workshop, err := h.workshops.Create(c.Request.Context(), actor, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	h.metrics.ObserveWorkshopChange("created")
	c.JSON(http.StatusCreated, gin.H{"workshop": workshop})
}

// Update godoc
// @Summary Update workshop
// @Description Apply a partial update to a workshop the caller owns
// @Tags workshops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-CSRF-Token header string true "CSRF token"
// @Param id path string true "Workshop ID"
// @Param request body service.UpdateWorkshopRequest true "Changed fields"
// @Success 200 {object} map[string]models.Workshop
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /workshops/{id} [put]
func (h *WorkshopHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req service.UpdateWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	workshop, err := h.workshops.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	h.metrics.ObserveWorkshopChange("updated")
	c.JSON(http.StatusOK, gin.H{"workshop": workshop})
}

// Delete godoc
// @Summary Delete workshop
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param X-CSRF-Token header string true "CSRF token"
// @Param id path string true "Workshop ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /workshops/{id} [delete]
func (h *WorkshopHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.workshops.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		RespondServiceError(c, err)
		return
	}

	h.metrics.ObserveWorkshopChange("deleted")
	c.JSON(http.StatusOK, gin.H{"message": "workshop deleted successfully"})
}

func actorFrom(c *gin.Context) (service.Actor, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: claims.UserID, Role: claims.Role}, true
}
