package handlers

import (
	"net/http"

	"timeslice/services/dashboard"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the dashboard overview.
type DashboardHandler struct {
	Service dashboard.DashboardService
}

func NewDashboardHandler(svc dashboard.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: svc}
}

// GET /api/dashboard/users/:userId/overview
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	overview, err := h.Service.GetOverview(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
