package routes

import (
	"time"

	"timeslice/handlers"
	"timeslice/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAnalyticsRoutes registers per-user analytics, benchmark and cache endpoints.
func RegisterAnalyticsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/analytics")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.GET("/benchmarks", hb.GetPlatformBenchmarksHandler)
		api.DELETE("/cache", middleware.RequireAdmin(), hb.ClearAllCacheHandler)

		// A user may only read their own analytics unless they are an admin.
		user := api.Group("/users/:userId")
		user.Use(middleware.RequireSelfOrAdmin("userId"))
		user.GET("", hb.GetUserAnalyticsHandler)
		user.GET("/insights", hb.GetUserInsightsHandler)
		user.GET("/comparison", hb.GetUserComparisonHandler)
		user.POST("/recalculate", hb.RecalculateUserAnalyticsHandler)
		user.DELETE("/cache", hb.ClearUserCacheHandler)
	}
}

// RegisterDashboardRoutes registers the dashboard overview endpoint.
func RegisterDashboardRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/dashboard")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/users/:userId/overview", middleware.RequireSelfOrAdmin("userId"), hb.GetDashboardOverviewHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterAnalyticsRoutes(r, hb)
	RegisterDashboardRoutes(r, hb)
}
