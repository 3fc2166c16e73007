// File: utils/constants.go
package utils

import "time"

// Gin context keys set by the authentication middleware.
const (
	ContextUserID  = "userID"
	ContextIsAdmin = "isAdmin"
)

// HealthCheckInterval is how often Mongo and Redis are pinged.
const HealthCheckInterval = 60 * time.Second
