package handlers

import (
	"net/http"
	"strconv"

	"timeslice/services/analytics"
	"timeslice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyticsHandler exposes the analytics engine over HTTP.
type AnalyticsHandler struct {
	Service analytics.AnalyticsService
}

func NewAnalyticsHandler(svc analytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: svc}
}

func queryBool(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request parameters", "query parameter "+name+" must be a boolean")
		return false, false
	}
	return v, true
}

// GET /api/analytics/users/:userId
func (h *AnalyticsHandler) GetUserAnalytics(c *gin.Context) {
	detailed, ok := queryBool(c, "detailed")
	if !ok {
		return
	}
	forceRefresh, ok := queryBool(c, "forceRefresh")
	if !ok {
		return
	}

	bundle, err := h.Service.GetUserAnalytics(c.Request.Context(), c.Param("userId"), c.Query("timeRange"), analytics.Options{
		Detailed:     detailed,
		ForceRefresh: forceRefresh,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// GET /api/analytics/users/:userId/insights
func (h *AnalyticsHandler) GetUserInsights(c *gin.Context) {
	insights, err := h.Service.GenerateUserInsights(c.Request.Context(), c.Param("userId"), c.Query("timeRange"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// GET /api/analytics/users/:userId/comparison
func (h *AnalyticsHandler) GetUserComparison(c *gin.Context) {
	metric := c.DefaultQuery("metric", analytics.MetricSuccessRate)
	bundle, err := h.Service.GetUserComparison(c.Request.Context(), c.Param("userId"), c.Query("timeRange"), metric)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// POST /api/analytics/users/:userId/recalculate
func (h *AnalyticsHandler) RecalculateUserAnalytics(c *gin.Context) {
	userID := c.Param("userId")
	bundle, err := h.Service.RecalculateUserAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("analytics recalculated", zap.String("userId", userID))
	c.JSON(http.StatusOK, bundle)
}

// DELETE /api/analytics/users/:userId/cache
func (h *AnalyticsHandler) ClearUserCache(c *gin.Context) {
	removed := h.Service.ClearUserCache(c.Request.Context(), c.Param("userId"))
	c.JSON(http.StatusOK, gin.H{"message": "User cache cleared", "entriesRemoved": removed})
}

// GET /api/analytics/benchmarks
func (h *AnalyticsHandler) GetPlatformBenchmarks(c *gin.Context) {
	bundle, err := h.Service.GetPlatformBenchmarks(c.Request.Context(), c.Query("timeRange"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// DELETE /api/analytics/cache
func (h *AnalyticsHandler) ClearAllCache(c *gin.Context) {
	h.Service.ClearAllCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Analytics cache cleared"})
}
