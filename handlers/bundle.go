// File: timeslice/handlers/bundle.go
package handlers

import (
	"timeslice/services/analytics"
	"timeslice/services/dashboard"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	// Analytics endpoints
	GetUserAnalyticsHandler         gin.HandlerFunc
	GetUserInsightsHandler          gin.HandlerFunc
	GetUserComparisonHandler        gin.HandlerFunc
	RecalculateUserAnalyticsHandler gin.HandlerFunc
	ClearUserCacheHandler           gin.HandlerFunc
	GetPlatformBenchmarksHandler    gin.HandlerFunc
	ClearAllCacheHandler            gin.HandlerFunc

	// Dashboard endpoints
	GetDashboardOverviewHandler gin.HandlerFunc

	// Health
	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handlers to their services.
func NewHandlerBundle(analyticsSvc analytics.AnalyticsService, dashboardSvc dashboard.DashboardService) *HandlerBundle {
	ah := NewAnalyticsHandler(analyticsSvc)
	dh := NewDashboardHandler(dashboardSvc)
	return &HandlerBundle{
		GetUserAnalyticsHandler:         ah.GetUserAnalytics,
		GetUserInsightsHandler:          ah.GetUserInsights,
		GetUserComparisonHandler:        ah.GetUserComparison,
		RecalculateUserAnalyticsHandler: ah.RecalculateUserAnalytics,
		ClearUserCacheHandler:           ah.ClearUserCache,
		GetPlatformBenchmarksHandler:    ah.GetPlatformBenchmarks,
		ClearAllCacheHandler:            ah.ClearAllCache,
		GetDashboardOverviewHandler:     dh.GetOverview,
		HealthHandler:                   HealthHandler,
	}
}
