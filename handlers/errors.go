package handlers

import (
	"errors"
	"net/http"

	"timeslice/services/analytics"
	"timeslice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps engine errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		rangeErr    *analytics.InvalidRangeError
		notFound    *analytics.NotFoundError
		upstreamErr *analytics.UpstreamFetchError
	)
	switch {
	case errors.As(err, &rangeErr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request parameters", err.Error())
	case errors.As(err, &notFound):
		utils.JSONError(c, http.StatusNotFound, "Resource not found", err.Error())
	case errors.As(err, &upstreamErr):
		getLogger(c).Error("upstream query failed", zap.String("op", upstreamErr.Op), zap.Error(upstreamErr.Err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to compute analytics", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
